// Package codec decodes slot payloads into frames sized for the matrix.
//
// Images and animations are scaled to the configured matrix size. Text is
// rendered line by line into strips as tall as the matrix; strips are at
// least as wide as the matrix so a scroll window always fits.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	_ "image/jpeg" // register JPEG for DecodeImage
	_ "image/png"  // register PNG for DecodeImage
	"time"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// DefaultFrameDelay is used for animation frames that declare no delay.
const DefaultFrameDelay = time.Second / 15

// Decode errors.
var (
	ErrNoFrames = errors.New("codec: payload has no frames")
	ErrNoLines  = errors.New("codec: text has no displayable lines")
)

// Codec decodes slot payloads.
type Codec interface {
	// Size returns the matrix dimensions frames are scaled to.
	Size() (width, height int)
	// DecodeImage decodes a still image.
	DecodeImage(data []byte) (*image.RGBA, error)
	// DecodeAnimation decodes every frame of an animation.
	DecodeAnimation(data []byte) (*Animation, error)
	// RenderText renders each line of a text payload to a strip.
	RenderText(data []byte) ([]Strip, error)
}

// Animation is a decoded frame sequence.
// Frames and Delays have the same length.
type Animation struct {
	Frames []*image.RGBA
	Delays []time.Duration
}

// Config configures the image codec.
type Config struct {
	Width  int
	Height int

	// Foreground and Background are the text colors used until a
	// directive line changes them.
	Foreground color.RGBA
	Background color.RGBA

	// FrameDelay replaces zero GIF delays. Defaults to DefaultFrameDelay.
	FrameDelay time.Duration
}

// DefaultConfig returns the codec configuration for a width x height matrix.
func DefaultConfig(width, height int) Config {
	return Config{
		Width:      width,
		Height:     height,
		Foreground: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Background: color.RGBA{A: 255},
		FrameDelay: DefaultFrameDelay,
	}
}

// ImageCodec is the standard Codec backed by the image packages.
type ImageCodec struct {
	cfg Config
}

// New creates an ImageCodec.
func New(cfg Config) (*ImageCodec, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("codec: invalid matrix size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.FrameDelay <= 0 {
		cfg.FrameDelay = DefaultFrameDelay
	}
	return &ImageCodec{cfg: cfg}, nil
}

// Size implements Codec.
func (c *ImageCodec) Size() (int, int) {
	return c.cfg.Width, c.cfg.Height
}

// DecodeImage implements Codec.
func (c *ImageCodec) DecodeImage(data []byte) (*image.RGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("codec: decode image: %w", err)
	}
	return c.fit(img), nil
}

// DecodeAnimation implements Codec.
// Frames are composited onto a canvas the size of the logical screen so
// partial frames and disposal methods render as a browser would.
func (c *ImageCodec) DecodeAnimation(data []byte) (*Animation, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("codec: decode animation: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, ErrNoFrames
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}
	canvas := image.NewRGBA(bounds)

	anim := &Animation{
		Frames: make([]*image.RGBA, 0, len(g.Image)),
		Delays: make([]time.Duration, 0, len(g.Image)),
	}
	for i, src := range g.Image {
		var restore *image.RGBA
		disposal := byte(gif.DisposalNone)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			restore = image.NewRGBA(bounds)
			draw.Copy(restore, image.Point{}, canvas, bounds, draw.Src, nil)
		}

		draw.Draw(canvas, src.Bounds(), src, src.Bounds().Min, draw.Over)
		anim.Frames = append(anim.Frames, c.fit(canvas))

		delay := c.cfg.FrameDelay
		if i < len(g.Delay) && g.Delay[i] > 0 {
			delay = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		anim.Delays = append(anim.Delays, delay)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, src.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = restore
		}
	}
	return anim, nil
}

// fit scales img to the matrix size and returns a fresh RGBA frame.
func (c *ImageCodec) fit(img image.Image) *image.RGBA {
	b := img.Bounds()
	var scaled image.Image = img
	if b.Dx() != c.cfg.Width || b.Dy() != c.cfg.Height {
		scaled = resize.Resize(uint(c.cfg.Width), uint(c.cfg.Height), img, resize.Bilinear)
	}
	dst := image.NewRGBA(image.Rect(0, 0, c.cfg.Width, c.cfg.Height))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), scaled, scaled.Bounds().Min, draw.Over)
	return dst
}
