package playable

import (
	"context"
	"image"

	"github.com/yndnr/ledwall-go/internal/core/domain"
	"github.com/yndnr/ledwall-go/internal/core/frame"
)

// Still is a single persistent frame.
type Still struct {
	Frame *image.RGBA
}

// Kind implements Playable.
func (s *Still) Kind() domain.Kind { return domain.KindImage }

func (s *Still) sealed() {}

// Play pushes the frame once and idles until the minimum elapses.
// With Loop set it idles until ctx is cancelled.
func (s *Still) Play(ctx context.Context, sink frame.Sink, opts Options) error {
	clk := startClock(opts.Minimum)
	if err := push(ctx, sink, s.Frame); err != nil {
		return err
	}
	if opts.Loop {
		<-ctx.Done()
		return ctx.Err()
	}
	return sleep(ctx, clk.remaining())
}
