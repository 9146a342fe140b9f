package frame

import (
	"bytes"
	"image"
	"image/png"
	"sync"
	"time"
)

// Preview is a sink that keeps the most recent frame in memory.
// It stands in for a panel driver and backs the HTTP preview endpoint.
type Preview struct {
	mu      sync.RWMutex
	frame   *image.RGBA
	count   uint64
	updated time.Time
	next    Sink
}

// NewPreview creates a preview sink showing a black frame.
// When next is non-nil every frame is forwarded to it after being stored.
func NewPreview(width, height int, next Sink) *Preview {
	return &Preview{
		frame: Blank(width, height),
		next:  next,
	}
}

// SetFrame stores a copy of img.
func (p *Preview) SetFrame(img image.Image) error {
	cp := Copy(img)

	p.mu.Lock()
	p.frame = cp
	p.count++
	p.updated = time.Now()
	p.mu.Unlock()

	if p.next != nil {
		return p.next.SetFrame(cp)
	}
	return nil
}

// Frame returns the latest frame. Callers must not modify it.
func (p *Preview) Frame() image.Image {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.frame
}

// Stats returns the number of frames written and the time of the last write.
func (p *Preview) Stats() (count uint64, updated time.Time) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.count, p.updated
}

// PNG encodes the latest frame.
func (p *Preview) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, p.Frame()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
