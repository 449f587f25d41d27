package ai

import (
	"context"
	"time"

	"scenario-ai-service/internal/domain/ports/adapter"
)

var _ adapter.ScenarioStreamer = (*NoopAdapter)(nil)

// NoopAdapter emits a short canned stream for local/dev runs so the whole
// lifecycle can be exercised without an upstream credential.
type NoopAdapter struct {
	Deltas []string
}

func NewNoopAdapter() *NoopAdapter {
	return &NoopAdapter{Deltas: []string{
		"This is a locally generated ",
		"scenario used for development. ",
		"No upstream provider was called.",
	}}
}

func (a *NoopAdapter) Variant() string { return "noop" }

func (a *NoopAdapter) Stream(ctx context.Context, req adapter.Request, fn adapter.StreamFunc) error {
	for _, d := range a.Deltas {
		select {
		case <-time.After(50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
		if err := fn(adapter.Event{Delta: d}); err != nil {
			return err
		}
	}
	return fn(adapter.Event{Final: true, Usage: &adapter.Usage{PromptTokens: 12, CompletionTokens: 18, TotalTokens: 30}})
}
