package adapter

import "context"

// Usage for a single upstream stream, as reported by the provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Request carries everything a provider needs for one generation stream.
// Instructions is the opaque mode-selected blob; Prompt the assembled
// scenario description.
type Request struct {
	Instructions string
	Prompt       string
	Model        string
}

// Event is the canonical notification every decoder variant reduces to.
// Delta carries an incremental fragment. Text carries a full-buffer revision
// of the output observed so far; consumers reconcile revisions with a
// longest-wins rule and never shrink the buffer. Usage is set at most once,
// usually on the final event.
type Event struct {
	Delta string
	Text  string
	Final bool
	Usage *Usage
}

// StreamFunc receives events in stream order. Returning an error aborts the
// stream and surfaces that error from Stream.
type StreamFunc func(Event) error

// ScenarioStreamer is the port for upstream text generation. Each
// implementation decodes one wire protocol variant into Events so the job
// lifecycle stays transport-agnostic.
type ScenarioStreamer interface {
	// Stream runs one generation call, invoking fn for every decoded event.
	// A nil return means the stream terminated normally (fn has seen a
	// Final event or the transport closed cleanly).
	Stream(ctx context.Context, req Request, fn StreamFunc) error

	// Variant names the decoder for logs and metrics.
	Variant() string
}
