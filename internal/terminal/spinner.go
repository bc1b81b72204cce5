package terminal

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const spinnerInterval = 120 * time.Millisecond

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// Spinner shows a single animated status line while work is in flight.
// On a non-TTY writer it prints one line at Start and one at Stop.
type Spinner struct {
	w     io.Writer
	isTTY bool

	mu      sync.Mutex
	label   string
	stop    chan struct{}
	done    chan struct{}
	running bool
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, isTTY bool) *Spinner {
	return &Spinner{w: w, isTTY: isTTY}
}

// Start begins animating label. Starting a running spinner only changes
// its label.
func (s *Spinner) Start(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
	if s.running {
		return
	}
	s.running = true
	if !s.isTTY {
		fmt.Fprintf(s.w, "%s...\n", label)
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.animate(s.stop, s.done)
}

// Stop ends the animation and prints a final line marked as success or
// failure. Stopping an idle spinner does nothing.
func (s *Spinner) Stop(ok bool, message string) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	mark := Paint(Success, "✓")
	if !ok {
		mark = Paint(Failure, "✗")
	}
	prefix := ""
	if s.isTTY {
		prefix = "\r\033[K"
	}
	fmt.Fprintf(s.w, "%s%s %s\n", prefix, mark, message)
}

func (s *Spinner) animate(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	idx := 0
	for {
		s.mu.Lock()
		label := s.label
		s.mu.Unlock()
		frame := string(spinnerFrames[idx%len(spinnerFrames)])
		fmt.Fprintf(s.w, "\r%s %s", Paint(Frame, frame), Paint(Muted, label))
		idx++

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}
