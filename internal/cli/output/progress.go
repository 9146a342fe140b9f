package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// ProgressBar shows how many of a known number of items are done.
type ProgressBar struct {
	mu      sync.Mutex
	w       io.Writer
	title   string
	total   int
	current int
	width   int
}

// NewProgressBar creates a progress bar for total items.
func NewProgressBar(w io.Writer, title string, total int) *ProgressBar {
	return &ProgressBar{w: w, title: title, total: total, width: 30}
}

// Increment marks n more items done.
func (p *ProgressBar) Increment(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += n
	if p.current > p.total {
		p.current = p.total
	}
	p.render()
}

// Finish renders the final state and ends the line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.render()
	fmt.Fprintln(p.w)
}

func (p *ProgressBar) render() {
	if p.total <= 0 {
		fmt.Fprintf(p.w, "\r%s %d", p.title, p.current)
		return
	}
	filled := p.width * p.current / p.total
	bar := strings.Repeat("#", filled) + strings.Repeat(".", p.width-filled)
	fmt.Fprintf(p.w, "\r%s [%s] %d/%d", p.title, bar, p.current, p.total)
}
