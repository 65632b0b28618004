package output

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 100 * time.Millisecond

// Spinner shows progress for long operations. On non-terminal writers it
// degrades to a single message line.
type Spinner struct {
	w        io.Writer
	msg      string
	styles   *Styles
	animated bool
	started  bool
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewSpinner creates a spinner writing to the renderer's error stream.
func (r *Renderer) NewSpinner(msg string) *Spinner {
	return &Spinner{
		w:        r.errOut,
		msg:      msg,
		styles:   r.styles,
		animated: isTerminal(r.errOut),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the animation. Without a terminal it prints the message once.
func (s *Spinner) Start() {
	if !s.animated {
		fmt.Fprintln(s.w, s.msg)
		return
	}
	s.started = true
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-s.stop:
				fmt.Fprint(s.w, "\r\033[K")
				return
			case <-ticker.C:
				fmt.Fprintf(s.w, "\r%s %s", spinnerFrames[i%len(spinnerFrames)], s.msg)
				i++
			}
		}
	}()
}

// Success stops the spinner and prints a confirmation line.
func (s *Spinner) Success(msg string) {
	s.finish(s.styles.StatusSuccess.String(), msg)
}

// Fail stops the spinner and prints a failure line.
func (s *Spinner) Fail(msg string) {
	s.finish(s.styles.StatusFailed.String(), msg)
}

func (s *Spinner) finish(icon, msg string) {
	s.once.Do(func() {
		if s.started {
			close(s.stop)
			<-s.done
		}
		fmt.Fprintf(s.w, "%s %s\n", icon, msg)
	})
}
