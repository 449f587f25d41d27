// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"scenario-ai-service/internal/domain/ports/adapter"
)

var _ adapter.ScenarioStreamer = (*GeminiAdapter)(nil)

// GeminiAdapter streams through the official SDK. The wire is delta-only:
// each iteration yields a response whose parts carry the next fragment, with
// usage metadata attached to the trailing responses.
type GeminiAdapter struct {
	client       *genai.Client
	defaultModel string
	maxOut       int
}

func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, defaultModel string, maxOut int) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, defaultModel: defaultModel, maxOut: maxOut}, nil
}

func (g *GeminiAdapter) Variant() string { return "gemini" }

func (g *GeminiAdapter) Stream(ctx context.Context, req adapter.Request, fn adapter.StreamFunc) error {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.maxOut),
	}
	if req.Instructions != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.Instructions}},
		}
	}

	var usage *adapter.Usage
	model := modelOrDefault(req.Model, g.defaultModel)
	for resp, err := range g.client.Models.GenerateContentStream(ctx, model, genai.Text(req.Prompt), cfg) {
		if err != nil {
			return fmt.Errorf("gemini stream: %w", err)
		}
		if resp == nil {
			continue
		}
		if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
			for _, part := range resp.Candidates[0].Content.Parts {
				if part == nil || part.Text == "" {
					continue
				}
				if err := fn(adapter.Event{Delta: part.Text}); err != nil {
					return err
				}
			}
		}
		if resp.UsageMetadata != nil {
			usage = &adapter.Usage{
				PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
				CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
				TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
			}
		}
	}
	return fn(adapter.Event{Final: true, Usage: usage})
}

func modelOrDefault(model, def string) string {
	if strings.TrimSpace(model) != "" {
		return model
	}
	return def
}
