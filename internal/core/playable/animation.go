package playable

import (
	"context"
	"image"
	"time"

	"github.com/yndnr/ledwall-go/internal/codec"
	"github.com/yndnr/ledwall-go/internal/core/domain"
	"github.com/yndnr/ledwall-go/internal/core/frame"
)

// Animation is a frame sequence with per-frame delays.
type Animation struct {
	Frames []*image.RGBA
	Delays []time.Duration
}

// Kind implements Playable.
func (a *Animation) Kind() domain.Kind { return domain.KindAnimation }

func (a *Animation) sealed() {}

// Play pushes each frame in order and sleeps its delay.
// At the end of the sequence it restarts while opts.Loop is set or the
// minimum has not elapsed.
func (a *Animation) Play(ctx context.Context, sink frame.Sink, opts Options) error {
	clk := startClock(opts.Minimum)
	for {
		for i, img := range a.Frames {
			if err := push(ctx, sink, img); err != nil {
				return err
			}
			if err := sleep(ctx, a.delay(i)); err != nil {
				return err
			}
		}
		if !clk.again(opts.Loop) {
			return nil
		}
	}
}

func (a *Animation) delay(i int) time.Duration {
	if i < len(a.Delays) && a.Delays[i] > 0 {
		return a.Delays[i]
	}
	return codec.DefaultFrameDelay
}
