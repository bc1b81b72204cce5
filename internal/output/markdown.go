package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/snapreview/internal/review"
)

// MarkdownWriter outputs the review as a standalone Markdown document.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}
	ew.printf("## %s Code Review\n\n", review.LanguageName(report.Language))
	ew.printf("_Reviewed by %s (%s)_\n\n", report.Provider, report.Model)

	if report.Status == review.StatusError {
		ew.printf("> **Review failed:** %s\n", report.Error)
		return ew.err
	}

	ew.println(strings.TrimRight(report.Review, "\n"))
	if report.FormattingStatus != "" {
		ew.printf("\n---\n\n_%s_\n", report.FormattingStatus)
	}
	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
