package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"scenario-ai-service/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.ScenarioStreamer = (*ChatStreamAdapter)(nil)

// ChatStreamAdapter decodes the delta-only Chat Completions stream through
// the official SDK: every chunk directly carries an incremental fragment,
// usage arrives on the last chunk when requested.
type ChatStreamAdapter struct {
	client openai.Client
	model  string
}

func NewChatStreamAdapter(apiKey, model string) (*ChatStreamAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &ChatStreamAdapter{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (a *ChatStreamAdapter) Variant() string { return "chat" }

func (a *ChatStreamAdapter) Stream(ctx context.Context, req adapter.Request, fn adapter.StreamFunc) error {
	model := req.Model
	if model == "" {
		model = a.model
	}

	stream := a.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.Instructions),
			openai.UserMessage(req.Prompt),
		},
		StreamOptions: openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		},
	})
	defer stream.Close()

	var usage *adapter.Usage
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) > 0 {
			if delta := chunk.Choices[0].Delta.Content; delta != "" {
				if err := fn(adapter.Event{Delta: delta}); err != nil {
					return err
				}
			}
		}
		if chunk.Usage.TotalTokens > 0 {
			usage = &adapter.Usage{
				PromptTokens:     int(chunk.Usage.PromptTokens),
				CompletionTokens: int(chunk.Usage.CompletionTokens),
				TotalTokens:      int(chunk.Usage.TotalTokens),
			}
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("chat stream: %w", err)
	}
	return fn(adapter.Event{Final: true, Usage: usage})
}
