package review

import (
	"errors"
	"fmt"

	"github.com/dshills/snapreview/internal/credential"
	"github.com/dshills/snapreview/internal/providers"
)

// ErrorKind classifies a failed request.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// KindValidation is an empty or whitespace-only snippet.
	KindValidation
	// KindConfiguration means no credential could be resolved.
	KindConfiguration
	// KindRemote is a failure reported by the review backend.
	KindRemote
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConfiguration:
		return "configuration"
	case KindRemote:
		return "remote"
	default:
		return "none"
	}
}

// MarshalText encodes the kind by name.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// MessageEmptyCode is shown when there is nothing to review.
const MessageEmptyCode = "Please enter some code to review."

var (
	ErrEmptyCode     = errors.New("no code to review")
	ErrNotConfigured = errors.New("api key not configured")
)

// RemoteError wraps a review backend failure. Message is user-facing and
// never contains the credential.
type RemoteError struct {
	Message string
	Err     error
}

func (e *RemoteError) Error() string { return e.Message }

func (e *RemoteError) Unwrap() error { return e.Err }

// ConfigurationMessage explains how to configure a key for provider.
func ConfigurationMessage(provider string) string {
	name := "API"
	if info, ok := providers.Lookup(provider); ok {
		name = info.DisplayName + " API"
	}
	env := credential.EnvNamesFor(provider)[0]
	return fmt.Sprintf("%s key not configured. Run `snapreview key set <key>` or set the %s environment variable.", name, env)
}
