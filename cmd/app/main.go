// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scenario-ai-service/internal/config"
	"scenario-ai-service/internal/domain/ports/adapter"
	aiAdapters "scenario-ai-service/internal/infra/adapters/ai"
	"scenario-ai-service/internal/infra/logging"
	"scenario-ai-service/internal/infra/metrics"
	"scenario-ai-service/internal/infra/sched"
	"scenario-ai-service/internal/infra/store"
	"scenario-ai-service/internal/infra/web"
	"scenario-ai-service/internal/infra/worker"
	"scenario-ai-service/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, noop upstream allowed)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Job store ----
	jobStore := store.NewMemoryJobStore()

	// ---- Upstream streamer (responses -> chat -> compat -> gemini) ----
	var streamer adapter.ScenarioStreamer
	switch {
	case cfg.AI.OpenAIKey != "" && cfg.AI.Transport == "chat":
		streamer, err = aiAdapters.NewChatStreamAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel)
	case cfg.AI.OpenAIKey != "":
		streamer, err = aiAdapters.NewResponsesAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel, cfg.AI.MaxOutputTokens)
	case cfg.AI.CompatKey != "":
		streamer, err = aiAdapters.NewCompatAdapter(cfg.AI.CompatKey, cfg.AI.DefaultModel, cfg.AI.CompatBaseURL)
	case cfg.AI.GeminiKey != "":
		streamer, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, "", cfg.AI.DefaultModel, cfg.AI.MaxOutputTokens)
	case cfg.Runtime.Dev:
		streamer = aiAdapters.NewNoopAdapter()
	default:
		log.Fatalf("no upstream provider configured: set OPENAI_API_KEY, COMPAT_API_KEY or GEMINI_API_KEY")
	}
	if err != nil {
		log.Fatalf("upstream adapter: %v", err)
	}
	logger.Info().Str("variant", streamer.Variant()).Str("model", cfg.AI.DefaultModel).Msg("upstream streamer ready")

	// ---- Lifecycle manager ----
	runner := worker.NewRunner(cfg.AI.ConcurrentLimit, logger)
	scenarioUC := usecase.NewScenarioUseCase(jobStore, streamer, runner, usecase.Options{
		Model:        cfg.AI.DefaultModel,
		MaxWallClock: cfg.Jobs.MaxWallClock,
		ChunkSize:    cfg.Jobs.ChunkSize,
		ChunkDelay:   cfg.Jobs.ChunkDelay,
		Estimate:     aiAdapters.EstimatePromptTokens,
	}, logger)

	// ---- Reaper ----
	reaper := sched.NewReaper(cfg.Jobs.ReapInterval, cfg.Jobs.TTL, jobStore, logger)
	go func() { _ = reaper.Run(ctx) }()

	// ---- HTTP ----
	srv := web.NewServer(scenarioUC, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	runner.Wait()
}
