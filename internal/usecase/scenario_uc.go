// File: internal/usecase/scenario_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"scenario-ai-service/internal/domain"
	"scenario-ai-service/internal/domain/model"
	"scenario-ai-service/internal/domain/ports/adapter"
	"scenario-ai-service/internal/domain/ports/repository"
	"scenario-ai-service/internal/infra/logging"
	"scenario-ai-service/internal/infra/metrics"
	"scenario-ai-service/internal/infra/worker"
	"scenario-ai-service/internal/prompt"
)

// Compile-time check
var _ ScenarioUseCase = (*scenarioUC)(nil)

// errJobGone aborts a stream whose job record was reaped mid-flight. The
// late result is discarded; the record is never recreated.
var errJobGone = errors.New("job no longer exists")

type CreateRequest struct {
	Country       string
	Sector        string
	Description   string
	Latitude      *float64
	Longitude     *float64
	LocationLabel string
	Trends        map[string]any
	AnalysisFocus string
}

type ScenarioUseCase interface {
	// Create validates the request, registers a queued job and launches its
	// background task. It returns the job id before the upstream call runs.
	Create(ctx context.Context, req CreateRequest) (string, error)

	// Status returns a snapshot of the job record.
	Status(id string) (model.Job, bool)

	// ActiveJobs reports how many job records are currently live.
	ActiveJobs() int
}

// TokenEstimator counts prompt tokens locally when upstream reports no usage.
type TokenEstimator func(model, instructions, userPrompt string) int

type Options struct {
	Model        string
	MaxWallClock time.Duration // per-job execution budget
	ChunkSize    int           // simulated delivery window, characters
	ChunkDelay   time.Duration // simulated delivery interval
	Estimate     TokenEstimator
}

type scenarioUC struct {
	store    repository.JobStore
	streamer adapter.ScenarioStreamer
	runner   *worker.Runner
	opts     Options
	log      *zerolog.Logger
}

func NewScenarioUseCase(
	store repository.JobStore,
	streamer adapter.ScenarioStreamer,
	runner *worker.Runner,
	opts Options,
	logger *zerolog.Logger,
) *scenarioUC {
	if opts.MaxWallClock <= 0 {
		opts.MaxWallClock = 3 * time.Minute
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 150
	}
	if opts.ChunkDelay <= 0 {
		opts.ChunkDelay = 300 * time.Millisecond
	}
	l := logger.With().Str("component", "ScenarioUC").Logger()
	return &scenarioUC{store: store, streamer: streamer, runner: runner, opts: opts, log: &l}
}

func (u *scenarioUC) Create(ctx context.Context, req CreateRequest) (string, error) {
	defer logging.TraceDuration(u.log, "ScenarioUC.Create")()

	if err := validate(req); err != nil {
		return "", err
	}

	in := prompt.Input{
		Country:       strings.TrimSpace(req.Country),
		Sector:        strings.TrimSpace(req.Sector),
		Description:   strings.TrimSpace(req.Description),
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		LocationLabel: strings.TrimSpace(req.LocationLabel),
		Trends:        prompt.NormalizeTrends(req.Trends),
		Mode:          prompt.Mode(req.AnalysisFocus),
	}

	id := ulid.Make().String()
	if err := u.store.Create(id, model.NewJob(id)); err != nil {
		return "", err
	}

	// The task outlives the originating request, so it runs on a detached
	// context; its lifetime is bounded by the wall-clock budget instead.
	metrics.IncJobsInFlight()
	if err := u.runner.Launch(context.Background(), "scenario-job", func(ctx context.Context) {
		u.run(ctx, id, in)
	}); err != nil {
		u.store.Delete(id)
		metrics.DecJobsInFlight()
		return "", err
	}

	metrics.IncJobCreated()
	u.log.Info().Str("job_id", id).Str("mode", req.AnalysisFocus).Msg("scenario job queued")
	return id, nil
}

func (u *scenarioUC) Status(id string) (model.Job, bool) {
	return u.store.Get(id)
}

func (u *scenarioUC) ActiveJobs() int {
	return u.store.Count()
}

func validate(req CreateRequest) error {
	if strings.TrimSpace(req.Country) == "" {
		return fmt.Errorf("%w: country is required", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(req.Sector) == "" {
		return fmt.Errorf("%w: sector is required", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(req.Description) == "" {
		return fmt.Errorf("%w: description is required", domain.ErrInvalidArgument)
	}
	if !prompt.ValidMode(req.AnalysisFocus) {
		return fmt.Errorf("%w: analysisFocus must be %q or %q",
			domain.ErrInvalidArgument, prompt.ModeProject, prompt.ModeAuthorizationFramework)
	}
	return nil
}

// run drives one job through queued -> in_progress -> completed|failed. It is
// the only writer for its id; every mutation goes through the store's atomic
// merge update and becomes a no-op once the reaper has evicted the record.
func (u *scenarioUC) run(parent context.Context, id string, in prompt.Input) {
	ctx, cancel := context.WithTimeout(logging.WithJobID(parent, id), u.opts.MaxWallClock)
	defer cancel()
	defer metrics.DecJobsInFlight()

	log := logging.With(ctx, u.log)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("scenario job panicked")
			u.fail(id, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	startedAt := time.Now()
	if ok := u.store.Update(id, func(j *model.Job) {
		j.Status = model.JobStatusInProgress
		j.StartedAt = &startedAt
	}); !ok {
		return // reaped before the task started
	}

	upReq := adapter.Request{
		Instructions: prompt.Instructions(in.Mode),
		Prompt:       prompt.Build(in),
		Model:        u.opts.Model,
	}
	variant := u.streamer.Variant()
	log.Info().Str("variant", variant).Msg("calling upstream")

	var (
		buffer    string
		finalText string
		usage     *adapter.Usage
		sawDelta  bool
	)
	streamErr := u.streamer.Stream(ctx, upReq, func(ev adapter.Event) error {
		if ev.Delta != "" {
			sawDelta = true
			buffer += ev.Delta
			metrics.IncStreamEvent(variant, "delta")
			revision := buffer
			if !u.store.Update(id, func(j *model.Job) { j.MergeText(revision) }) {
				return errJobGone
			}
		}
		if ev.Text != "" {
			metrics.IncStreamEvent(variant, "revision")
			if len(ev.Text) > len(buffer) {
				buffer = ev.Text
			}
			// A full-text revision is only persisted once a delta has shown
			// the transport delivers incrementally. Storing it on a
			// final-only stream would defeat the chunked fallback: the
			// record's text never shrinks, so every window would be a no-op.
			if sawDelta {
				revision := buffer
				if !u.store.Update(id, func(j *model.Job) { j.MergeText(revision) }) {
					return errJobGone
				}
			}
		}
		if ev.Usage != nil {
			usage = ev.Usage
		}
		if ev.Final {
			metrics.IncStreamEvent(variant, "final")
			if len(ev.Text) > len(finalText) {
				finalText = ev.Text
			}
		}
		return nil
	})
	latency := time.Since(startedAt)

	if errors.Is(streamErr, errJobGone) {
		log.Debug().Msg("job reaped mid-stream, result discarded")
		return
	}
	if streamErr != nil {
		msg := fmt.Sprintf("upstream stream failed: %v", streamErr)
		if errors.Is(streamErr, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			msg = fmt.Sprintf("job timed out after %s", u.opts.MaxWallClock)
		}
		metrics.ObserveStreamLatency(variant, int(latency/time.Millisecond), false)
		u.fail(id, msg)
		log.Error().Err(streamErr).Dur("duration", latency).Msg("scenario job failed")
		return
	}
	metrics.ObserveStreamLatency(variant, int(latency/time.Millisecond), true)

	// Reconcile: the longest text observed across all sources wins.
	if len(finalText) > len(buffer) {
		buffer = finalText
	}

	// Some transports deliver nothing incrementally and only a final body.
	// Replay it as growing prefix windows so polling clients still observe
	// progressive output.
	if !sawDelta && buffer != "" {
		metrics.IncSimulatedFallback()
		log.Debug().Int("chars", len(buffer)).Msg("no native deltas, simulating chunked delivery")
		if !u.simulateDelivery(ctx, id, buffer) {
			return
		}
	}

	tokens := 0
	if usage != nil {
		tokens = usage.TotalTokens
		metrics.ObserveStreamUsage(variant, usage.PromptTokens, usage.CompletionTokens)
	} else if u.opts.Estimate != nil {
		tokens = u.opts.Estimate(u.opts.Model, upReq.Instructions, upReq.Prompt)
	}

	completedAt := time.Now()
	if ok := u.store.Update(id, func(j *model.Job) {
		j.MergeText(buffer)
		j.SetTokensUsed(tokens)
		j.CompletedAt = &completedAt
		j.Status = model.JobStatusCompleted
	}); !ok {
		return
	}
	metrics.IncJobFinished(string(model.JobStatusCompleted))
	log.Info().Dur("duration", latency).Int("chars", len(buffer)).Int("tokens", tokens).
		Msg("scenario job completed")
}

// fail records the terminal failure. Only the failure fields are touched;
// partial text accumulated before the error stays on the record.
func (u *scenarioUC) fail(id, msg string) {
	completedAt := time.Now()
	applied := false
	u.store.Update(id, func(j *model.Job) {
		if j.Terminal() {
			return
		}
		j.Status = model.JobStatusFailed
		j.Error = msg
		j.CompletedAt = &completedAt
		applied = true
	})
	if applied {
		metrics.IncJobFinished(string(model.JobStatusFailed))
	}
}

// simulateDelivery writes full as fixed-size prefix windows on a fixed
// interval. Each window strictly extends the previous one; the last equals
// the full text. Returns false when the record vanished underneath.
func (u *scenarioUC) simulateDelivery(ctx context.Context, id, full string) bool {
	for end := u.opts.ChunkSize; ; end += u.opts.ChunkSize {
		if end > len(full) {
			end = len(full)
		}
		window := full[:end]
		if !u.store.Update(id, func(j *model.Job) { j.MergeText(window) }) {
			return false
		}
		if end == len(full) {
			return true
		}
		select {
		case <-time.After(u.opts.ChunkDelay):
		case <-ctx.Done():
			// budget exhausted; keep what was delivered and finalize
			return true
		}
	}
}
