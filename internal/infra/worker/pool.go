// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"

	"scenario-ai-service/internal/domain"
)

// A small supervised task runner with a hard cap on simultaneous tasks.
// Tasks start immediately or are rejected; nothing queues, so saturation
// surfaces as a capacity error at submission time.

type Task func(ctx context.Context)

type Runner struct {
	wg    sync.WaitGroup
	slots chan struct{}
	log   *zerolog.Logger
}

func NewRunner(maxConcurrent int, logger *zerolog.Logger) *Runner {
	if maxConcurrent <= 0 {
		maxConcurrent = 16
	}
	l := logger.With().Str("component", "Runner").Logger()
	return &Runner{slots: make(chan struct{}, maxConcurrent), log: &l}
}

// Launch starts task in its own goroutine. domain.ErrCapacity when every
// slot is taken. A panicking task is recovered and logged, never fatal.
func (r *Runner) Launch(ctx context.Context, name string, task Task) error {
	if task == nil {
		return domain.ErrInvalidArgument
	}
	select {
	case r.slots <- struct{}{}:
	default:
		return domain.ErrCapacity
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() { <-r.slots }()
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error().
					Str("task", name).
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("task panicked")
			}
		}()
		task(ctx)
	}()
	return nil
}

// InFlight reports how many tasks currently hold a slot.
func (r *Runner) InFlight() int { return len(r.slots) }

// Wait blocks until every launched task has returned.
func (r *Runner) Wait() { r.wg.Wait() }
