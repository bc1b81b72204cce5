package output

import (
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/dshills/snapreview/internal/review"
)

const defaultWidth = 80

// TextWriter outputs a human-readable review. With Render set, the Markdown
// body is styled for the terminal; otherwise it is printed as-is.
type TextWriter struct {
	Render bool
	Width  int
}

func (t *TextWriter) Write(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}

	ew.printf("snapreview: %s review (%s/%s)\n", review.LanguageName(report.Language), report.Provider, report.Model)
	if report.Source != "" {
		ew.printf("Source: %s\n", report.Source)
	}
	ew.println(strings.Repeat("─", 60))

	if report.Status == review.StatusError {
		ew.printf("Review failed: %s\n", report.Error)
		return ew.err
	}

	ew.println(strings.TrimRight(t.body(report.Review), "\n"))
	ew.println(strings.Repeat("─", 60))
	if report.FormattingStatus != "" {
		ew.println(report.FormattingStatus)
	}
	ew.printf("Completed in %dms\n", report.ElapsedMs)
	return ew.err
}

// body renders Markdown with glamour, falling back to the raw text.
func (t *TextWriter) body(md string) string {
	if !t.Render {
		return md
	}
	width := t.Width
	if width <= 0 {
		width = defaultWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
