package playable

import (
	"context"
	"image"
	"time"

	"github.com/yndnr/ledwall-go/internal/codec"
	"github.com/yndnr/ledwall-go/internal/core/domain"
	"github.com/yndnr/ledwall-go/internal/core/frame"
)

// TextOptions controls text scrolling.
type TextOptions struct {
	// Speed is the scroll rate in pixels per second.
	Speed float64
	// FPS is the number of frames pushed per second.
	FPS int
}

// DefaultTextOptions scrolls at 50 px/s with 15 frames per second.
func DefaultTextOptions() TextOptions {
	return TextOptions{Speed: 50, FPS: 15}
}

// Scroller scrolls rendered text strips horizontally, one line at a time.
type Scroller struct {
	strips []codec.Strip
	width  int
	height int
	step   float64
	tick   time.Duration
}

// NewScroller creates a Scroller for a width x height matrix.
func NewScroller(strips []codec.Strip, width, height int, opts TextOptions) *Scroller {
	def := DefaultTextOptions()
	if opts.Speed <= 0 {
		opts.Speed = def.Speed
	}
	if opts.FPS <= 0 {
		opts.FPS = def.FPS
	}
	return &Scroller{
		strips: strips,
		width:  width,
		height: height,
		step:   opts.Speed / float64(opts.FPS),
		tick:   time.Second / time.Duration(opts.FPS),
	}
}

// Kind implements Playable.
func (s *Scroller) Kind() domain.Kind { return domain.KindText }

func (s *Scroller) sealed() {}

// Play scrolls every line in turn. Each line enters half a matrix width
// before its left edge and ends when its trailing pad reaches the window.
// After the last line it wraps to the first while opts.Loop is set or the
// minimum has not elapsed.
func (s *Scroller) Play(ctx context.Context, sink frame.Sink, opts Options) error {
	clk := startClock(opts.Minimum)
	pad := float64(s.width / 2)
	for {
		for _, strip := range s.strips {
			end := float64(strip.Width()) - pad
			for offset := -pad; ; offset += s.step {
				if err := push(ctx, sink, s.window(strip, int(offset))); err != nil {
					return err
				}
				if err := sleep(ctx, s.tick); err != nil {
					return err
				}
				if offset+s.step >= end {
					break
				}
			}
		}
		if !clk.again(opts.Loop) {
			return nil
		}
	}
}

// window crops a matrix-sized view of strip starting at offset.
// The view is clamped to the strip so it never shows past either edge.
func (s *Scroller) window(strip codec.Strip, offset int) image.Image {
	maxX := strip.Width() - s.width
	if offset > maxX {
		offset = maxX
	}
	if offset < 0 {
		offset = 0
	}
	return strip.Image.SubImage(image.Rect(offset, 0, offset+s.width, s.height))
}
