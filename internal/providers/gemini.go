package providers

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Gemini implements the Reviewer interface for Google's Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini provider using the Gemini Developer API backend.
func NewGemini(ctx context.Context, model, apiKey string, opts Options) (*Gemini, error) {
	if apiKey == "" {
		return nil, &authError{message: "Gemini API key is empty"}
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens(req.MaxTokens)),
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(req.Temperature))
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.UserPrompt), config)
	if err != nil {
		return ReviewResponse{}, classifyMessage(err)
	}
	if len(resp.Candidates) == 0 {
		return ReviewResponse{}, errors.New("no content in response")
	}
	content := resp.Text()
	if content == "" {
		return ReviewResponse{}, errors.New("no content in response")
	}

	var tokens int
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return ReviewResponse{Content: content, TokensUsed: tokens}, nil
}
