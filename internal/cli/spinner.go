package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var progressTickInterval = 120 * time.Millisecond

var progressFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var progressCountStyle = lipgloss.NewStyle().Faint(true)

// progress draws one status line while a dispatch runs: a frame, the label,
// how many backends have answered and the elapsed time. A nil *progress is a
// valid no-op.
type progress struct {
	w        io.Writer
	label    string
	total    int
	finished atomic.Int64
	started  time.Time

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func startProgress(enabled bool, w io.Writer, label string, total int) *progress {
	if !enabled || w == nil {
		return nil
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = "Waiting for backends"
	}

	p := &progress{w: w, label: label, total: total, started: time.Now(), done: make(chan struct{})}
	p.wg.Add(1)
	go p.run()
	return p
}

// Finished records one more backend outcome.
func (p *progress) Finished() {
	if p != nil {
		p.finished.Add(1)
	}
}

// Stop erases the line. It is safe to call more than once.
func (p *progress) Stop() {
	if p == nil {
		return
	}
	p.once.Do(func() {
		close(p.done)
		p.wg.Wait()
	})
}

func (p *progress) run() {
	defer p.wg.Done()
	ticker := time.NewTicker(progressTickInterval)
	defer ticker.Stop()

	width := 0
	for frame := 0; ; frame++ {
		line := p.line(frame)
		width = max(width, lipgloss.Width(line))
		fmt.Fprintf(p.w, "\r%s%s", line, strings.Repeat(" ", width-lipgloss.Width(line)))

		select {
		case <-p.done:
			fmt.Fprintf(p.w, "\r%s\r", strings.Repeat(" ", width))
			return
		case <-ticker.C:
		}
	}
}

func (p *progress) line(frame int) string {
	count := ""
	if p.total > 0 {
		count = " " + progressCountStyle.Render(fmt.Sprintf("%d/%d", p.finished.Load(), p.total))
	}
	return fmt.Sprintf("%s %s%s %.1fs",
		progressFrames[frame%len(progressFrames)], p.label, count, time.Since(p.started).Seconds())
}

func isTerminalWriter(w io.Writer) bool {
	fdw, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(fdw.Fd()))
}
