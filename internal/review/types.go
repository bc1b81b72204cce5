package review

// Status is the lifecycle position of the current review request.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Request is a code snippet submitted for review.
type Request struct {
	Code     string
	Language string
}

// State is an immutable snapshot of the orchestrator.
//
// Error is non-empty exactly when Status is StatusError, and Result is
// non-empty only when Status is StatusSuccess.
type State struct {
	Status           Status
	Result           string
	Error            string
	FormattingStatus string
	// Formatted reports whether Result was rewritten by a formatter.
	Formatted bool
	// Kind classifies Error. It is KindNone unless Status is StatusError.
	Kind ErrorKind
	// Cause is the underlying error for diagnostics.
	Cause error
}

// Loading reports whether a request is in flight.
func (s State) Loading() bool {
	return s.Status == StatusLoading
}
