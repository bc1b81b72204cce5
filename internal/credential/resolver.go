package credential

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"

	"github.com/dshills/snapreview/internal/kv"
)

// Resolver evaluates its strategies first-match-wins. The persisted
// strategy is always first and is the only one Set and Clear write to.
type Resolver struct {
	store      kv.Store
	key        string
	strategies []Strategy

	mu      sync.Mutex
	current Credential
}

// NewResolver creates a resolver persisting under key, falling back to the
// given strategies in order.
func NewResolver(store kv.Store, key string, fallbacks ...Strategy) *Resolver {
	strategies := make([]Strategy, 0, len(fallbacks)+1)
	strategies = append(strategies, Persisted(store, key))
	strategies = append(strategies, fallbacks...)
	return &Resolver{store: store, key: key, strategies: strategies}
}

// ForProvider builds the standard chain for a provider: the persisted
// "<provider>-api-key" value, then the provider's environment variables.
func ForProvider(store kv.Store, provider string, lookuper envconfig.Lookuper) *Resolver {
	return NewResolver(store, KeyFor(provider), Environment(lookuper, EnvNamesFor(provider)...))
}

// Key returns the persisted key name.
func (r *Resolver) Key() string {
	return r.key
}

// Resolve re-reads every strategy and returns the first match. A strategy
// that fails is logged and skipped.
func (r *Resolver) Resolve(ctx context.Context) Credential {
	log := clog.FromContext(ctx)
	cred := Credential{Source: SourceNone}
	for _, s := range r.strategies {
		v, ok, err := s.Lookup(ctx)
		if err != nil {
			log.With("source", s.Source().String()).Warnf("credential lookup failed: %v", err)
			continue
		}
		if ok {
			cred = Credential{Value: v, Source: s.Source()}
			break
		}
	}
	r.mu.Lock()
	r.current = cred
	r.mu.Unlock()
	return cred
}

// Current returns the most recently resolved credential.
func (r *Resolver) Current() Credential {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// IsConfigured resolves and reports whether any source has a key.
func (r *Resolver) IsConfigured(ctx context.Context) bool {
	return r.Resolve(ctx).Configured()
}

// Set persists value and re-resolves. Blank input is ignored and the
// current credential is returned unchanged.
func (r *Resolver) Set(ctx context.Context, value string) (Credential, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return r.Current(), nil
	}
	if err := r.store.Set(ctx, r.key, value); err != nil {
		return r.Current(), fmt.Errorf("storing credential: %w", err)
	}
	return r.Resolve(ctx), nil
}

// Clear removes the persisted value and re-resolves, falling through to
// the remaining strategies.
func (r *Resolver) Clear(ctx context.Context) (Credential, error) {
	if err := r.store.Remove(ctx, r.key); err != nil {
		return r.Current(), fmt.Errorf("removing credential: %w", err)
	}
	return r.Resolve(ctx), nil
}
