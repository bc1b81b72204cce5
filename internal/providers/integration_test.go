//go:build integration

package providers

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

type providerSpec struct {
	name   string
	envVar string
}

var providerSpecs = []providerSpec{
	{"gemini", "GEMINI_API_KEY"},
	{"anthropic", "ANTHROPIC_API_KEY"},
	{"openai", "OPENAI_API_KEY"},
}

func TestIntegration_Provider_BasicReview(t *testing.T) {
	for _, spec := range providerSpecs {
		t.Run(spec.name, func(t *testing.T) {
			key := os.Getenv(spec.envVar)
			if key == "" {
				t.Skipf("skipping: %s not set", spec.envVar)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			p, err := New(ctx, spec.name, "", key, Options{})
			if err != nil {
				t.Fatalf("New error: %v", err)
			}
			resp, err := p.Review(ctx, ReviewRequest{
				SystemPrompt: "You are an expert code reviewer.",
				UserPrompt:   "Review this javascript:\n```javascript\nconst x = 1;\n```",
				MaxTokens:    512,
			})
			if err != nil {
				t.Fatalf("Review error: %v", err)
			}
			if strings.TrimSpace(resp.Content) == "" {
				t.Error("empty review")
			}
		})
	}
}
