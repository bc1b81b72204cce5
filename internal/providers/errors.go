package providers

import (
	"errors"
	"strings"
)

type rateLimitError struct {
	cause error
}

func (e *rateLimitError) Error() string {
	if e.cause == nil {
		return "rate limited"
	}
	return "rate limited: " + e.cause.Error()
}

func (e *rateLimitError) Unwrap() error { return e.cause }

type authError struct {
	message string
	cause   error
}

func (e *authError) Error() string {
	return "authentication error: " + e.message
}

func (e *authError) Unwrap() error { return e.cause }

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var ae *authError
	return errors.As(err, &ae)
}

// IsRateLimited checks if an error is a rate-limit or quota error.
func IsRateLimited(err error) bool {
	var re *rateLimitError
	return errors.As(err, &re)
}

// classifyStatus wraps err according to an HTTP status code.
func classifyStatus(status int, err error) error {
	switch status {
	case 401, 403:
		return &authError{message: err.Error(), cause: err}
	case 429:
		return &rateLimitError{cause: err}
	default:
		return err
	}
}

// classifyMessage wraps err by inspecting its text, for SDKs whose error
// types are not stable enough to match on.
func classifyMessage(err error) error {
	s := err.Error()
	switch {
	case strings.Contains(s, "Error 401"),
		strings.Contains(s, "Error 403"),
		strings.Contains(s, "UNAUTHENTICATED"),
		strings.Contains(s, "PERMISSION_DENIED"),
		strings.Contains(s, "API_KEY_INVALID"),
		strings.Contains(s, "API key not valid"):
		return &authError{message: s, cause: err}
	case strings.Contains(s, "Error 429"),
		strings.Contains(s, "RESOURCE_EXHAUSTED"),
		strings.Contains(s, "quota exceeded"):
		return &rateLimitError{cause: err}
	default:
		return err
	}
}
