package frame

import (
	"image"
	"image/color"
	"sync"
	"time"
)

// Write is one frame observed by a Recorder.
type Write struct {
	At    time.Time
	Frame *image.RGBA
}

// Recorder is a sink that keeps every frame it receives.
type Recorder struct {
	mu     sync.Mutex
	writes []Write
	notify chan struct{}
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{notify: make(chan struct{}, 1)}
}

// SetFrame records a copy of img.
func (r *Recorder) SetFrame(img image.Image) error {
	r.mu.Lock()
	r.writes = append(r.writes, Write{At: time.Now(), Frame: Copy(img)})
	r.mu.Unlock()

	select {
	case r.notify <- struct{}{}:
	default:
	}
	return nil
}

// Writes returns a snapshot of the recorded frames.
func (r *Recorder) Writes() []Write {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Write(nil), r.writes...)
}

// Len returns the number of recorded frames.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.writes)
}

// Last returns the most recent frame, or nil.
func (r *Recorder) Last() *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.writes) == 0 {
		return nil
	}
	return r.writes[len(r.writes)-1].Frame
}

// Reset drops all recorded frames.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.writes = nil
	r.mu.Unlock()
}

// WaitFor blocks until at least n frames were recorded or timeout expires.
func (r *Recorder) WaitFor(n int, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		if r.Len() >= n {
			return true
		}
		select {
		case <-r.notify:
		case <-deadline.C:
			return r.Len() >= n
		}
	}
}

// Colors returns the color at the origin of every recorded frame.
func (r *Recorder) Colors() []color.RGBA {
	writes := r.Writes()
	out := make([]color.RGBA, len(writes))
	for i, w := range writes {
		out[i] = w.Frame.RGBAAt(0, 0)
	}
	return out
}
