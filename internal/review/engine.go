package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"

	"github.com/dshills/snapreview/internal/cache"
	"github.com/dshills/snapreview/internal/credential"
	"github.com/dshills/snapreview/internal/providers"
	"github.com/dshills/snapreview/internal/redact"
)

// Client generates a review for a snippet using a resolved credential.
type Client interface {
	Generate(ctx context.Context, code, language string, cred credential.Credential) (string, error)
}

// ReviewerFactory builds a provider for one request.
type ReviewerFactory func(ctx context.Context, provider, model, apiKey string, opts providers.Options) (providers.Reviewer, error)

// ProviderClient is the Client backed by an LLM provider. The provider is
// built per request because the credential may change between requests.
type ProviderClient struct {
	Provider      string
	Model         string
	MaxTokens     int
	Temperature   float64
	RedactSecrets bool
	// Cache is optional.
	Cache   *cache.Cache
	Options providers.Options
	// NewReviewer defaults to providers.New.
	NewReviewer ReviewerFactory
}

func (c *ProviderClient) Generate(ctx context.Context, code, language string, cred credential.Credential) (string, error) {
	model := c.Model
	if model == "" {
		if info, ok := providers.Lookup(c.Provider); ok {
			model = info.DefaultModel
		}
	}
	log := clog.FromContext(ctx).With("provider", c.Provider).With("model", model).With("language", language)

	if c.RedactSecrets {
		var kinds []string
		if code, kinds = redact.Snippet(code); len(kinds) > 0 {
			log.With("kinds", strings.Join(kinds, ",")).Info("masked secrets in snippet")
		}
	}

	key := cache.BuildCacheKey(providers.Canonical(c.Provider), model, language, code)
	if c.Cache != nil {
		if cached, ok := c.Cache.Get(key); ok {
			log.Debug("review served from cache")
			return cached, nil
		}
	}

	newReviewer := c.NewReviewer
	if newReviewer == nil {
		newReviewer = providers.New
	}
	reviewer, err := newReviewer(ctx, c.Provider, model, cred.Value, c.Options)
	if err != nil {
		return "", fmt.Errorf("creating provider: %w", err)
	}

	start := time.Now()
	resp, err := reviewer.Review(ctx, providers.ReviewRequest{
		SystemPrompt: SystemPrompt(language),
		UserPrompt:   BuildUserPrompt(code, language),
		MaxTokens:    c.MaxTokens,
		Temperature:  c.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", reviewer.Name(), err)
	}
	log.With("tokens", resp.TokensUsed).With("elapsed", time.Since(start).String()).Info("review generated")

	if c.Cache != nil {
		if err := c.Cache.Put(key, resp.Content); err != nil {
			log.Warnf("caching review: %v", err)
		}
	}
	return resp.Content, nil
}
