//go:build !integration

package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"scenario-ai-service/internal/domain"
)

func newRunner(cap int) *Runner {
	logger := zerolog.Nop()
	return NewRunner(cap, &logger)
}

func TestRunner_RejectsWhenSaturated(t *testing.T) {
	t.Parallel()

	r := newRunner(2)
	release := make(chan struct{})

	for i := 0; i < 2; i++ {
		if err := r.Launch(context.Background(), "blocker", func(context.Context) { <-release }); err != nil {
			t.Fatalf("Launch %d: %v", i, err)
		}
	}
	if got := r.InFlight(); got != 2 {
		t.Fatalf("InFlight = %d, want 2", got)
	}

	err := r.Launch(context.Background(), "overflow", func(context.Context) {})
	if !errors.Is(err, domain.ErrCapacity) {
		t.Fatalf("Launch over capacity = %v, want ErrCapacity", err)
	}

	close(release)
	r.Wait()

	// slots free up after tasks return
	if err := r.Launch(context.Background(), "after", func(context.Context) {}); err != nil {
		t.Fatalf("Launch after drain: %v", err)
	}
	r.Wait()
}

func TestRunner_RecoversPanickingTask(t *testing.T) {
	t.Parallel()

	r := newRunner(1)
	if err := r.Launch(context.Background(), "boom", func(context.Context) { panic("boom") }); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	r.Wait()

	// the slot must be released even after a panic
	if got := r.InFlight(); got != 0 {
		t.Fatalf("InFlight after panic = %d, want 0", got)
	}
	if err := r.Launch(context.Background(), "next", func(context.Context) {}); err != nil {
		t.Fatalf("Launch after panic: %v", err)
	}
	r.Wait()
}

func TestRunner_NilTask(t *testing.T) {
	t.Parallel()

	r := newRunner(1)
	if err := r.Launch(context.Background(), "nil", nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("Launch(nil) = %v, want ErrInvalidArgument", err)
	}
}

func TestRunner_WaitBlocksUntilDone(t *testing.T) {
	t.Parallel()

	r := newRunner(4)
	var done atomic.Int32
	for i := 0; i < 4; i++ {
		if err := r.Launch(context.Background(), "sleeper", func(context.Context) {
			time.Sleep(20 * time.Millisecond)
			done.Add(1)
		}); err != nil {
			t.Fatalf("Launch %d: %v", i, err)
		}
	}
	r.Wait()
	if got := done.Load(); got != 4 {
		t.Fatalf("done = %d, want 4", got)
	}
}
