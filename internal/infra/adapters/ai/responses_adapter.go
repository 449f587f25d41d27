package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"scenario-ai-service/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.ScenarioStreamer = (*ResponsesAdapter)(nil)

// ResponsesAdapter decodes the discriminated event stream of the Responses
// API: item-level delta events carry {type, delta:{type,text}}, item
// completion events carry an array of content blocks, and the terminal event
// carries the final output blocks plus token usage.
type ResponsesAdapter struct {
	apiKey string
	base   string // e.g., https://api.openai.com/v1
	model  string
	maxOut int
	client *http.Client
}

func NewResponsesAdapter(apiKey, model string, maxOut int) (*ResponsesAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("responses api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &ResponsesAdapter{
		apiKey: apiKey,
		base:   "https://api.openai.com/v1",
		model:  model,
		maxOut: maxOut,
		client: &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

func (a *ResponsesAdapter) Variant() string { return "responses" }

// wire shapes

type respContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type respStreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Item struct {
		Content []respContentBlock `json:"content"`
	} `json:"item"`
	Response struct {
		Output []struct {
			Content []respContentBlock `json:"content"`
		} `json:"output"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
			TotalTokens  int `json:"total_tokens"`
		} `json:"usage"`
	} `json:"response"`
}

func (a *ResponsesAdapter) Stream(ctx context.Context, req adapter.Request, fn adapter.StreamFunc) error {
	model := req.Model
	if model == "" {
		model = a.model
	}

	reqBody := struct {
		Model           string `json:"model"`
		Instructions    string `json:"instructions,omitempty"`
		Input           string `json:"input"`
		Stream          bool   `json:"stream"`
		MaxOutputTokens int    `json:"max_output_tokens,omitempty"`
	}{Model: model, Instructions: req.Instructions, Input: req.Prompt, Stream: true, MaxOutputTokens: a.maxOut}

	b, _ := json.Marshal(reqBody)
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/responses", bytes.NewReader(b))
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("responses request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("responses http %d", resp.StatusCode)
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		data, ok := strings.CutPrefix(sc.Text(), "data: ")
		if !ok {
			continue
		}
		var ev respStreamEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			// a single malformed event never fails the stream
			continue
		}

		switch ev.Type {
		case "response.output_text.delta":
			if ev.Delta.Text == "" {
				continue
			}
			if err := fn(adapter.Event{Delta: ev.Delta.Text}); err != nil {
				return err
			}
		case "response.output_item.done":
			if text := joinBlocks(ev.Item.Content); text != "" {
				if err := fn(adapter.Event{Text: text}); err != nil {
					return err
				}
			}
		case "response.completed":
			var parts []string
			for _, out := range ev.Response.Output {
				if t := joinBlocks(out.Content); t != "" {
					parts = append(parts, t)
				}
			}
			final := adapter.Event{Text: strings.Join(parts, "\n"), Final: true}
			if u := ev.Response.Usage; u.TotalTokens > 0 {
				final.Usage = &adapter.Usage{
					PromptTokens:     u.InputTokens,
					CompletionTokens: u.OutputTokens,
					TotalTokens:      u.TotalTokens,
				}
			}
			return fn(final)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("responses stream: %w", err)
	}
	// transport closed without a terminal event
	return fn(adapter.Event{Final: true})
}

func joinBlocks(blocks []respContentBlock) string {
	var parts []string
	for _, blk := range blocks {
		if blk.Type == "output_text" && blk.Text != "" {
			parts = append(parts, blk.Text)
		}
	}
	return strings.Join(parts, "")
}
