package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// StatusTracker tallies download outcomes for one run and renders a
// single-line progress bar. It is safe for concurrent use.
type StatusTracker struct {
	mu        sync.Mutex
	expected  int
	succeeded int
	failed    int
	startTime time.Time
	out       io.Writer
}

// NewStatusTracker creates a tracker expecting total items, printing to out.
// A nil out disables printing.
func NewStatusTracker(total int, out io.Writer) *StatusTracker {
	return &StatusTracker{expected: total, startTime: time.Now(), out: out}
}

// Record counts one outcome and redraws the line.
func (st *StatusTracker) Record(ok bool) {
	st.mu.Lock()
	if ok {
		st.succeeded++
	} else {
		st.failed++
	}
	line := st.line()
	st.mu.Unlock()

	if st.out != nil {
		fmt.Fprintf(st.out, "\r%s", line)
	}
}

// Counts returns succeeded and failed totals.
func (st *StatusTracker) Counts() (succeeded, failed int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.succeeded, st.failed
}

// Line renders the current progress.
func (st *StatusTracker) Line() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.line()
}

func (st *StatusTracker) line() string {
	const width = 20
	done := st.succeeded + st.failed
	filled := width
	if st.expected > 0 && done < st.expected {
		filled = done * width / st.expected
	}
	bar := strings.Repeat(ProgressBar, filled) + strings.Repeat(ProgressEmpty, width-filled)

	status := Green(fmt.Sprintf("%d ok", st.succeeded))
	if st.failed > 0 {
		status += " " + Red(fmt.Sprintf("%d failed", st.failed))
	}
	return fmt.Sprintf("%s [%s] %d/%d %s", Magenta("[MEDIA]"), bar, done, st.expected, status)
}

// Finish ends the progress line with the elapsed time.
func (st *StatusTracker) Finish() {
	if st.out == nil {
		return
	}
	fmt.Fprintf(st.out, " %s\n", Dim(time.Since(st.startTime).Round(time.Millisecond).String()))
}
