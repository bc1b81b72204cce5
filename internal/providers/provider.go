package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ReviewRequest contains the data sent to an LLM for review.
type ReviewRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// ReviewResponse contains the raw response from an LLM.
type ReviewResponse struct {
	Content    string
	TokensUsed int
}

// Reviewer is the provider abstraction interface.
type Reviewer interface {
	Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error)
	Name() string
}

// Options overrides transport details. Zero values use the SDK defaults.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
}

const defaultMaxTokens = 4096

// Info describes a provider and the models it is known to serve.
type Info struct {
	Name         string
	DisplayName  string
	DefaultModel string
	Models       []string
}

// Known lists the supported providers. The first entry is the default.
var Known = []Info{
	{
		Name:         "gemini",
		DisplayName:  "Gemini",
		DefaultModel: "gemini-2.5-flash",
		Models:       []string{"gemini-2.5-flash", "gemini-2.5-pro", "gemini-2.0-flash"},
	},
	{
		Name:         "anthropic",
		DisplayName:  "Anthropic",
		DefaultModel: "claude-sonnet-4-20250514",
		Models:       []string{"claude-sonnet-4-20250514", "claude-opus-4-20250514", "claude-3-5-haiku-latest"},
	},
	{
		Name:         "openai",
		DisplayName:  "OpenAI",
		DefaultModel: "gpt-4.1-mini",
		Models:       []string{"gpt-4.1-mini", "gpt-4.1", "gpt-4o", "o3-mini"},
	},
}

// Canonical maps provider aliases to their canonical name.
func Canonical(provider string) string {
	switch p := strings.ToLower(strings.TrimSpace(provider)); p {
	case "", "google":
		return "gemini"
	default:
		return p
	}
}

// Lookup returns the Info for a provider name or alias.
func Lookup(provider string) (Info, bool) {
	name := Canonical(provider)
	for _, info := range Known {
		if info.Name == name {
			return info, true
		}
	}
	return Info{}, false
}

// New creates a provider by name. An empty model selects the provider's
// default.
func New(ctx context.Context, provider, model, apiKey string, opts Options) (Reviewer, error) {
	info, ok := Lookup(provider)
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
	if model == "" {
		model = info.DefaultModel
	}
	switch info.Name {
	case "anthropic":
		return NewAnthropic(model, apiKey, opts)
	case "openai":
		return NewOpenAI(model, apiKey, opts)
	default:
		return NewGemini(ctx, model, apiKey, opts)
	}
}

func maxTokens(n int) int {
	if n <= 0 {
		return defaultMaxTokens
	}
	return n
}
