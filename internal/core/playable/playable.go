// Package playable turns slot records into content that streams frames to a
// sink.
//
// Every variant honours the same contract: at least one frame is pushed,
// cancellation is observed within one frame interval, and a positive
// Options.Minimum is a floor on the time Play takes, looping the content as
// needed.
package playable

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/yndnr/ledwall-go/internal/codec"
	"github.com/yndnr/ledwall-go/internal/core/domain"
	"github.com/yndnr/ledwall-go/internal/core/frame"
)

// Options controls one run of a Playable.
type Options struct {
	// Minimum is the display time floor. Zero means no floor.
	Minimum time.Duration
	// Loop restarts the content at its end until ctx is cancelled.
	Loop bool
}

// Playable streams decoded content to a sink.
//
// The set of implementations is closed: Still, Animation and Scroller.
type Playable interface {
	// Play pushes frames to sink until the content ends under opts or ctx
	// is cancelled. It returns ctx.Err() on cancellation and the sink's
	// error if a write fails.
	Play(ctx context.Context, sink frame.Sink, opts Options) error

	// Kind reports the slot kind the content was built from.
	Kind() domain.Kind

	sealed()
}

// New decodes rec with c and returns the matching variant.
// Decode failures are reported as domain.ErrContentCorrupt.
func New(rec domain.Record, c codec.Codec, text TextOptions) (Playable, error) {
	switch rec.Kind {
	case domain.KindImage:
		img, err := c.DecodeImage(rec.Data)
		if err != nil {
			return nil, domain.ErrContentCorrupt.WithCause(err)
		}
		return &Still{Frame: img}, nil

	case domain.KindAnimation:
		anim, err := c.DecodeAnimation(rec.Data)
		if err != nil {
			return nil, domain.ErrContentCorrupt.WithCause(err)
		}
		return &Animation{Frames: anim.Frames, Delays: anim.Delays}, nil

	case domain.KindText:
		strips, err := c.RenderText(rec.Data)
		if err != nil {
			return nil, domain.ErrContentCorrupt.WithCause(err)
		}
		width, height := c.Size()
		return NewScroller(strips, width, height, text), nil

	case domain.KindEmpty:
		return nil, domain.ErrSlotUnavailable.WithDetails("slot is empty")

	default:
		return nil, domain.ErrInvalidKind.WithDetailsf("kind %d", uint8(rec.Kind))
	}
}

// clock tracks the minimum floor for one Play call.
type clock struct {
	start   time.Time
	minimum time.Duration
}

func startClock(minimum time.Duration) clock {
	return clock{start: time.Now(), minimum: minimum}
}

// again reports whether content that reached its end should start over.
func (c clock) again(loop bool) bool {
	if loop {
		return true
	}
	return c.minimum > 0 && time.Since(c.start) < c.minimum
}

// remaining returns the time left until the floor is met.
func (c clock) remaining() time.Duration {
	if c.minimum <= 0 {
		return 0
	}
	return c.minimum - time.Since(c.start)
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// push writes img unless ctx is already done.
func push(ctx context.Context, sink frame.Sink, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return sink.SetFrame(img)
}

// IsCancelled reports whether err only signals that ctx ended.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
