package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"scenario-ai-service/internal/domain/ports/adapter"
)

func collectEvents(t *testing.T, s adapter.ScenarioStreamer, req adapter.Request) []adapter.Event {
	t.Helper()
	var events []adapter.Event
	if err := s.Stream(context.Background(), req, func(ev adapter.Event) error {
		events = append(events, ev)
		return nil
	}); err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}
	return events
}

func TestResponsesAdapter_DecodesDiscriminatedEvents(t *testing.T) {
	t.Parallel()

	body := "" +
		"event: response.created\n" +
		"data: {\"type\":\"response.created\"}\n\n" +
		"data: {\"type\":\"response.output_text.delta\",\"delta\":{\"type\":\"output_text_delta\",\"text\":\"Hello \"}}\n\n" +
		"data: {\"type\":\"response.output_text.delta\",\"delta\":{\"type\":\"output_text_delta\",\"text\":\"world\"}}\n\n" +
		"data: {\"type\":\"response.output_item.done\",\"item\":{\"content\":[{\"type\":\"output_text\",\"text\":\"Hello world\"}]}}\n\n" +
		"data: {\"type\":\"response.completed\",\"response\":{\"output\":[{\"content\":[{\"type\":\"output_text\",\"text\":\"Hello world!\"}]}],\"usage\":{\"input_tokens\":10,\"output_tokens\":3,\"total_tokens\":13}}}\n\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/responses" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing bearer auth, got %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	a, err := NewResponsesAdapter("test-key", "gpt-4o-mini", 0)
	if err != nil {
		t.Fatalf("NewResponsesAdapter: %v", err)
	}
	a.base = srv.URL

	events := collectEvents(t, a, adapter.Request{Prompt: "hi"})

	var deltas, revisions int
	var final *adapter.Event
	for i := range events {
		ev := events[i]
		if ev.Delta != "" {
			deltas++
		}
		if ev.Text != "" && !ev.Final {
			revisions++
		}
		if ev.Final {
			final = &events[i]
		}
	}
	if deltas != 2 {
		t.Fatalf("expected 2 delta events, got %d", deltas)
	}
	if revisions != 1 {
		t.Fatalf("expected 1 revision event, got %d", revisions)
	}
	if final == nil {
		t.Fatalf("no terminal event")
	}
	if final.Text != "Hello world!" {
		t.Fatalf("final text = %q", final.Text)
	}
	if final.Usage == nil || final.Usage.TotalTokens != 13 {
		t.Fatalf("usage not decoded: %+v", final.Usage)
	}
}

func TestResponsesAdapter_Non2xxFailsStream(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a, _ := NewResponsesAdapter("test-key", "", 0)
	a.base = srv.URL

	err := a.Stream(context.Background(), adapter.Request{Prompt: "hi"}, func(adapter.Event) error { return nil })
	if err == nil {
		t.Fatalf("expected error on upstream 503")
	}
}

func TestCompatAdapter_RawLineProtocol(t *testing.T) {
	t.Parallel()

	body := "" +
		": keep-alive comment\n" +
		"data: {\"delta\":{\"text\":\"The \"}}\n" +
		"data: this line is not json and must be skipped\n" +
		"data:{\"delta\":{\"text\":\"plan \"}}\n" +
		"data: {\"output_text\":\"The plan holds.\"}\n" +
		"data: {\"content\":[{\"type\":\"text\",\"text\":\"The plan holds. Final.\"}],\"usage\":{\"prompt_tokens\":7,\"completion_tokens\":5,\"total_tokens\":12}}\n" +
		"data: [DONE]\n" +
		"data: {\"delta\":{\"text\":\"after sentinel, never seen\"}}\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	a, err := NewCompatAdapter("test-key", "gpt-4o-mini", srv.URL)
	if err != nil {
		t.Fatalf("NewCompatAdapter: %v", err)
	}

	events := collectEvents(t, a, adapter.Request{Prompt: "hi"})

	var gotDeltas []string
	var gotTexts []string
	var final *adapter.Event
	for i := range events {
		ev := events[i]
		if ev.Final {
			final = &events[i]
			continue
		}
		if ev.Delta != "" {
			gotDeltas = append(gotDeltas, ev.Delta)
		}
		if ev.Text != "" {
			gotTexts = append(gotTexts, ev.Text)
		}
	}

	if len(gotDeltas) != 2 || gotDeltas[0] != "The " || gotDeltas[1] != "plan " {
		t.Fatalf("deltas = %q", gotDeltas)
	}
	if len(gotTexts) != 2 || gotTexts[1] != "The plan holds. Final." {
		t.Fatalf("revisions = %q", gotTexts)
	}
	if final == nil {
		t.Fatalf("sentinel did not terminate the stream")
	}
	if final.Usage == nil || final.Usage.TotalTokens != 12 {
		t.Fatalf("usage not carried to terminal event: %+v", final.Usage)
	}
}

func TestNoopAdapter_EmitsDeltasThenFinal(t *testing.T) {
	t.Parallel()

	events := collectEvents(t, NewNoopAdapter(), adapter.Request{Prompt: "hi"})
	if len(events) != 4 {
		t.Fatalf("expected 3 deltas + final, got %d events", len(events))
	}
	if !events[len(events)-1].Final {
		t.Fatalf("last event not final")
	}
}
