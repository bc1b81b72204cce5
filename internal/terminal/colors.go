// Package terminal draws review progress on stderr and sizes rendered
// markdown to the attached terminal.
package terminal

import (
	"io"
	"os"
	"sync/atomic"

	"golang.org/x/term"
)

// Style is an ANSI SGR sequence used by the status line.
type Style string

const (
	reset Style = "\033[0m"

	Success Style = "\033[32m"
	Failure Style = "\033[31m"
	Frame   Style = "\033[36m"
	Muted   Style = "\033[2m"
)

const defaultWidth = 80

var colorOn atomic.Bool

func init() { colorOn.Store(true) }

// EnableColor switches styling on or off for every Paint call.
func EnableColor(on bool) { colorOn.Store(on) }

// Paint wraps s in style, or returns s unchanged when color is off.
func Paint(style Style, s string) string {
	if !colorOn.Load() || s == "" {
		return s
	}
	return string(style) + s + string(reset)
}

// WantColor reports whether w is a terminal and NO_COLOR is unset.
func WantColor(w io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return IsTerminal(w)
}

// IsTerminal reports whether w is an *os.File attached to a terminal.
// Buffers and pipes used by tests never are.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Width is the column count of the terminal behind w, or 80.
func Width(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			return cols
		}
	}
	return defaultWidth
}
