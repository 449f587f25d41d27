package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"scenario-ai-service/internal/infra/logging"
	"scenario-ai-service/internal/usecase"
)

// Server exposes the create/status polling API. It is deliberately thin:
// validation and lifecycle live in the use case, the server only translates
// HTTP to and from it.
type Server struct {
	scenarioUC usecase.ScenarioUseCase
	log        *zerolog.Logger
}

func NewServer(scenarioUC usecase.ScenarioUseCase, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "web").Logger()
	return &Server{scenarioUC: scenarioUC, log: &l}
}

// Router builds the chi router with all routes attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/", s.handleHealth)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/api/create", s.handleCreate)
	r.Get("/api/status/{jobID}", s.handleStatus)

	return r
}

// requestLogger tags every request with a trace id and logs its outcome.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.WithTraceID(r.Context(), uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
		logging.With(ctx, s.log).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}
