// Package frame defines the frame sink the display writes to and the
// in-process sinks shipped with the server.
package frame

import (
	"image"
	"image/color"
	"image/draw"
)

// Sink accepts one decoded frame at a time.
// Implementations must not retain a reference to the frame after SetFrame
// returns unless they own a copy.
type Sink interface {
	SetFrame(img image.Image) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(img image.Image) error

// SetFrame calls f(img).
func (f SinkFunc) SetFrame(img image.Image) error {
	return f(img)
}

// Blank returns a black frame of the given size.
func Blank(width, height int) *image.RGBA {
	return Solid(width, height, color.Black)
}

// Solid returns a frame filled with c.
func Solid(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// Copy returns an RGBA copy of img anchored at the origin.
func Copy(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
