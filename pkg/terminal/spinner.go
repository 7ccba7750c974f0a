package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner is an indeterminate progress indicator. It has no timeout: it runs
// until Stop is called.
type Spinner struct {
	message  string
	out      io.Writer
	animate  bool
	interval time.Duration
	start    time.Time

	stopOnce sync.Once
	done     chan struct{}
	finished chan struct{}
}

// StartSpinner shows message on stdout and animates it while stdout is a terminal.
func StartSpinner(message string) *Spinner {
	return NewSpinner(os.Stdout, message, IsTerminal()).Start()
}

// NewSpinner builds a spinner writing to out. When animate is false the
// message is printed once and Stop only reports the elapsed time.
func NewSpinner(out io.Writer, message string, animate bool) *Spinner {
	return &Spinner{
		message:  message,
		out:      out,
		animate:  animate,
		interval: 100 * time.Millisecond,
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Start begins rendering. It returns the spinner for chaining.
func (s *Spinner) Start() *Spinner {
	s.start = time.Now()
	if !s.animate {
		fmt.Fprintln(s.out, s.message)
		close(s.finished)
		return s
	}
	go s.run()
	return s
}

func (s *Spinner) run() {
	defer close(s.finished)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	frame := 0
	for {
		fmt.Fprintf(s.out, "\r%s %s", Info(spinnerFrames[frame]), s.message)
		frame = (frame + 1) % len(spinnerFrames)
		select {
		case <-s.done:
			fmt.Fprint(s.out, "\r\033[K")
			return
		case <-ticker.C:
		}
	}
}

// Stop dismisses the spinner. It is safe to call more than once.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		<-s.finished
		if s.animate {
			fmt.Fprintf(s.out, "%s %s\n", s.message, Faint(fmt.Sprintf("(%.1fs)", time.Since(s.start).Seconds())))
		}
	})
}
