// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/predictwell/riskcore/internal/app"
	"github.com/predictwell/riskcore/internal/domain/assessment"
	"github.com/predictwell/riskcore/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Assess runs one raw assessment through the risk pipeline.
	Assess(ctx context.Context, raw assessment.Raw) (*types.RiskPrediction, error)

	// AssessBatch runs many assessments, preserving input order.
	AssessBatch(ctx context.Context, raws []assessment.Raw) ([]service.BatchItem, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	assessHandler *AssessHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		assessHandler: NewAssessHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/v1/assess/batch", MetricsMiddleware(s.assessHandler.HandleAssessBatch, "assess_batch"))
	mux.HandleFunc("/v1/assess", MetricsMiddleware(s.assessHandler.HandleAssess, "assess"))
}

// predictionResponse is the success envelope for POST /v1/assess.
type predictionResponse struct {
	Success    bool                  `json:"success"`
	Prediction *types.RiskPrediction `json:"prediction"`
	Timestamp  string                `json:"timestamp"`
}

// validationResponse carries every field violation at once.
type validationResponse struct {
	Success bool                    `json:"success"`
	Errors  []assessment.FieldError `json:"errors"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// batchResponse is the envelope for POST /v1/assess/batch. Results keep
// the input order; each carries its own success flag.
type batchResponse struct {
	Success   bool              `json:"success"`
	Results   []batchItemResult `json:"results"`
	Timestamp string            `json:"timestamp"`
}

type batchItemResult struct {
	Success    bool                    `json:"success"`
	Prediction *types.RiskPrediction   `json:"prediction,omitempty"`
	Errors     []assessment.FieldError `json:"errors,omitempty"`
	Error      string                  `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, errorResponse{Success: false, Error: code})
}
