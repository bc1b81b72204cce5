package credential

import (
	"context"
	"strings"

	"github.com/sethvargo/go-envconfig"

	"github.com/dshills/snapreview/internal/kv"
)

// Source identifies where a credential was found.
type Source int

const (
	SourceNone Source = iota
	SourcePersisted
	SourceEnvironment
)

func (s Source) String() string {
	switch s {
	case SourcePersisted:
		return "persisted"
	case SourceEnvironment:
		return "environment"
	default:
		return "none"
	}
}

// Credential is a resolved API key and its origin.
type Credential struct {
	Value  string
	Source Source
}

// Configured reports whether a remote call may use this credential.
func (c Credential) Configured() bool {
	return c.Source != SourceNone
}

// Strategy is one step of the resolution chain.
type Strategy interface {
	Source() Source
	// Lookup returns the key if this strategy has one.
	Lookup(ctx context.Context) (string, bool, error)
}

// KeyFor returns the persisted key name for a provider, e.g. "gemini-api-key".
func KeyFor(provider string) string {
	return canonical(provider) + "-api-key"
}

// EnvNamesFor returns the environment variables consulted for a provider,
// in priority order.
func EnvNamesFor(provider string) []string {
	switch canonical(provider) {
	case "anthropic":
		return []string{"ANTHROPIC_API_KEY"}
	case "openai":
		return []string{"OPENAI_API_KEY"}
	default:
		return []string{"API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"}
	}
}

func canonical(provider string) string {
	switch p := strings.ToLower(strings.TrimSpace(provider)); p {
	case "", "google":
		return "gemini"
	default:
		return p
	}
}

type persisted struct {
	store kv.Store
	key   string
}

// Persisted looks the key up in a key/value store.
func Persisted(store kv.Store, key string) Strategy {
	return &persisted{store: store, key: key}
}

func (p *persisted) Source() Source { return SourcePersisted }

func (p *persisted) Lookup(ctx context.Context) (string, bool, error) {
	v, ok, err := p.store.Get(ctx, p.key)
	if err != nil || !ok {
		return "", false, err
	}
	v = strings.TrimSpace(v)
	return v, v != "", nil
}

type environment struct {
	lookuper envconfig.Lookuper
	names    []string
}

// Environment reads the first non-empty variable among names. A nil
// lookuper reads the process environment.
func Environment(lookuper envconfig.Lookuper, names ...string) Strategy {
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}
	return &environment{lookuper: lookuper, names: names}
}

func (e *environment) Source() Source { return SourceEnvironment }

func (e *environment) Lookup(_ context.Context) (string, bool, error) {
	for _, name := range e.names {
		if v, ok := e.lookuper.Lookup(name); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v, true, nil
			}
		}
	}
	return "", false, nil
}
