package output

import (
	"time"

	"github.com/dshills/snapreview/internal/review"
)

// Report is a finished review ready to be written.
type Report struct {
	Tool             string           `json:"tool"`
	Version          string           `json:"version"`
	Provider         string           `json:"provider"`
	Model            string           `json:"model"`
	Language         string           `json:"language"`
	Source           string           `json:"source,omitempty"`
	Status           review.Status    `json:"status"`
	Review           string           `json:"review,omitempty"`
	Error            string           `json:"error,omitempty"`
	ErrorKind        review.ErrorKind `json:"errorKind,omitempty"`
	FormattingStatus string           `json:"formattingStatus,omitempty"`
	Formatted        bool             `json:"formatted"`
	ElapsedMs        int64            `json:"elapsedMs"`
}

// Meta describes how a review was produced.
type Meta struct {
	Version  string
	Provider string
	Model    string
	Language string
	Source   string
	Elapsed  time.Duration
}

// NewReport combines a final orchestrator snapshot with run metadata.
func NewReport(s review.State, meta Meta) *Report {
	return &Report{
		Tool:             "snapreview",
		Version:          meta.Version,
		Provider:         meta.Provider,
		Model:            meta.Model,
		Language:         meta.Language,
		Source:           meta.Source,
		Status:           s.Status,
		Review:           s.Result,
		Error:            s.Error,
		ErrorKind:        s.Kind,
		FormattingStatus: s.FormattingStatus,
		Formatted:        s.Formatted,
		ElapsedMs:        meta.Elapsed.Milliseconds(),
	}
}
