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
var _ adapter.ScenarioStreamer = (*CompatAdapter)(nil)

// CompatAdapter decodes the raw line-oriented stream of OpenAI-compatible
// gateways: "data:" prefixed lines, a "[DONE]" sentinel, and whatever field
// shape the gateway happens to emit. Malformed lines are skipped; only a
// transport-level failure fails the stream.
type CompatAdapter struct {
	apiKey string
	base   string // e.g., https://api.metisai.ir/openai/v1
	model  string
	client *http.Client
}

func NewCompatAdapter(apiKey, model, base string) (*CompatAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("compat api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if base == "" {
		base = "https://api.metisai.ir/openai/v1"
	}
	return &CompatAdapter{
		apiKey: apiKey,
		base:   strings.TrimRight(base, "/"),
		model:  model,
		client: &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

func (a *CompatAdapter) Variant() string { return "compat" }

func (a *CompatAdapter) Stream(ctx context.Context, req adapter.Request, fn adapter.StreamFunc) error {
	model := req.Model
	if model == "" {
		model = a.model
	}

	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	reqBody := struct {
		Model    string    `json:"model"`
		Messages []message `json:"messages"`
		Stream   bool      `json:"stream"`
	}{
		Model: model,
		Messages: []message{
			{Role: "system", Content: req.Instructions},
			{Role: "user", Content: req.Prompt},
		},
		Stream: true,
	}

	b, _ := json.Marshal(reqBody)
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/chat/completions", bytes.NewReader(b))
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("compat request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("compat http %d", resp.StatusCode)
	}

	var usage *adapter.Usage
	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		// gateways disagree on whether a space follows the field name
		data, ok := strings.CutPrefix(strings.TrimSpace(sc.Text()), "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			return fn(adapter.Event{Final: true, Usage: usage})
		}

		delta, text, u := extractLine([]byte(data))
		if u != nil {
			usage = u
		}
		if delta != "" {
			if err := fn(adapter.Event{Delta: delta}); err != nil {
				return err
			}
		}
		if text != "" {
			if err := fn(adapter.Event{Text: text}); err != nil {
				return err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("compat stream: %w", err)
	}
	return fn(adapter.Event{Final: true, Usage: usage})
}

// extractLine pulls an incremental fragment or a full-text revision out of a
// single event payload. Gateways disagree on shape: some send delta.text,
// some a flat output_text, some a content array of typed blocks. Unparseable
// lines yield nothing.
func extractLine(data []byte) (delta, text string, usage *adapter.Usage) {
	var payload struct {
		Delta struct {
			Text string `json:"text"`
		} `json:"delta"`
		OutputText string `json:"output_text"`
		Content    []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Usage *struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", "", nil
	}

	if payload.Usage != nil && payload.Usage.TotalTokens > 0 {
		usage = &adapter.Usage{
			PromptTokens:     payload.Usage.PromptTokens,
			CompletionTokens: payload.Usage.CompletionTokens,
			TotalTokens:      payload.Usage.TotalTokens,
		}
	}

	if payload.Delta.Text != "" {
		return payload.Delta.Text, "", usage
	}
	if payload.OutputText != "" {
		return "", payload.OutputText, usage
	}
	if len(payload.Content) > 0 {
		var parts []string
		for _, blk := range payload.Content {
			if (blk.Type == "text" || blk.Type == "output_text") && blk.Text != "" {
				parts = append(parts, blk.Text)
			}
		}
		return "", strings.Join(parts, ""), usage
	}
	return "", "", usage
}
