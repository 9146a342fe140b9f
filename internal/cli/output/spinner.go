package output

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Spinner animates while a request is in flight.
type Spinner struct {
	w        io.Writer
	message  string
	frames   []string
	interval time.Duration
	done     chan struct{}
	stopped  chan struct{}
	once     sync.Once
}

// NewSpinner creates a new spinner.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:        w,
		message:  message,
		frames:   []string{"|", "/", "-", "\\"},
		interval: 100 * time.Millisecond,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start starts the spinner animation.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(s.w, "\r%s %s", s.frames[i%len(s.frames)], s.message)
			select {
			case <-s.done:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop stops the spinner and prints result on its line. Stop is safe to
// call more than once; only the first call prints.
func (s *Spinner) Stop(result string) {
	s.once.Do(func() {
		close(s.done)
		<-s.stopped
		fmt.Fprintf(s.w, "\r\033[K%s\n", result)
	})
}
