package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scenario-ai-service/internal/domain"
	"scenario-ai-service/internal/domain/model"
	"scenario-ai-service/internal/usecase"
)

// Request/response envelopes for the polling API.

type createRequest struct {
	Country       string         `json:"country"`
	Sector        string         `json:"sector"`
	Description   string         `json:"description"`
	Latitude      *float64       `json:"latitude,omitempty"`
	Longitude     *float64       `json:"longitude,omitempty"`
	LocationLabel string         `json:"locationLabel,omitempty"`
	Trends        map[string]any `json:"trends,omitempty"`
	AnalysisFocus string         `json:"analysisFocus"`
}

type createResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"jobId"`
	Status  string `json:"status"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type progressInfo struct {
	CharacterCount      int `json:"characterCount"`
	EstimatedCompletion int `json:"estimatedCompletion"`
}

type statusResponse struct {
	Success    bool         `json:"success"`
	Status     string       `json:"status"`
	Scenario   string       `json:"scenario"`
	Error      *string      `json:"error"`
	TokensUsed int          `json:"tokensUsed"`
	Progress   progressInfo `json:"progress"`
}

type healthResponse struct {
	Status     string `json:"status"`
	ActiveJobs int    `json:"activeJobs"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.scenarioUC.Create(r.Context(), usecase.CreateRequest{
		Country:       req.Country,
		Sector:        req.Sector,
		Description:   req.Description,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		LocationLabel: req.LocationLabel,
		Trends:        req.Trends,
		AnalysisFocus: req.AnalysisFocus,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrCapacity):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			s.log.Error().Err(err).Msg("create dispatch failed")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, createResponse{
		Success: true,
		JobID:   id,
		Status:  string(model.JobStatusQueued),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")

	job, ok := s.scenarioUC.Status(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}

	var errMsg *string
	if job.Status == model.JobStatusFailed {
		errMsg = &job.Error
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Success:    true,
		Status:     string(job.Status),
		Scenario:   job.Text,
		Error:      errMsg,
		TokensUsed: job.TokensUsed,
		Progress: progressInfo{
			CharacterCount:      len(job.Text),
			EstimatedCompletion: estimateCompletion(job.Status, len(job.Text)),
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		ActiveJobs: s.scenarioUC.ActiveJobs(),
	})
}

// estimateCompletion maps text length to a rough percentage: 0 while queued,
// capped at 95 until the job actually completes, 100 once it has.
func estimateCompletion(status model.JobStatus, chars int) int {
	switch status {
	case model.JobStatusQueued:
		return 0
	case model.JobStatusCompleted:
		return 100
	default:
		pct := chars * 100 / 3000
		if pct > 95 {
			pct = 95
		}
		return pct
	}
}
