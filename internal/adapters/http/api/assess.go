// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	service "github.com/predictwell/riskcore/internal/app"
	"github.com/predictwell/riskcore/internal/domain/assessment"
	"github.com/predictwell/riskcore/internal/pipeline"
)

// AssessHandler handles risk assessment requests.
type AssessHandler struct {
	deps Dependencies
}

// NewAssessHandler creates a new assessment handler.
func NewAssessHandler(deps Dependencies) *AssessHandler {
	return &AssessHandler{deps: deps}
}

// HandleAssess handles POST /v1/assess requests. Validation failures
// return 422 with every field error; model failures return 503 so
// clients can retry without touching their payload.
func (h *AssessHandler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var raw assessment.Raw
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request")
		return
	}

	pred, err := h.deps.Assess(r.Context(), raw)
	if err != nil {
		writeAssessError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, predictionResponse{
		Success:    true,
		Prediction: pred,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

// batchRequest mirrors the POST /v1/assess/batch payload.
type batchRequest struct {
	Assessments []assessment.Raw `json:"assessments"`
}

// HandleAssessBatch handles POST /v1/assess/batch requests. Items are
// assessed independently; one invalid item does not fail the batch.
func (h *AssessHandler) HandleAssessBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request")
		return
	}

	items, err := h.deps.AssessBatch(r.Context(), req.Assessments)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyBatch):
			writeError(w, http.StatusBadRequest, "empty_batch")
		case errors.Is(err, service.ErrBatchTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "batch_too_large")
		default:
			writeError(w, http.StatusInternalServerError, "internal_error")
		}
		return
	}

	results := make([]batchItemResult, len(items))
	for i, it := range items {
		results[i] = toBatchResult(it)
	}
	writeJSON(w, http.StatusOK, batchResponse{
		Success:   true,
		Results:   results,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func toBatchResult(it service.BatchItem) batchItemResult {
	if it.Err == nil {
		return batchItemResult{Success: true, Prediction: it.Prediction}
	}
	var verrs assessment.ValidationErrors
	if errors.As(it.Err, &verrs) {
		return batchItemResult{Success: false, Errors: verrs}
	}
	if errors.Is(it.Err, pipeline.ErrModelUnavailable) {
		return batchItemResult{Success: false, Error: "model_unavailable"}
	}
	return batchItemResult{Success: false, Error: "internal_error"}
}

func writeAssessError(w http.ResponseWriter, err error) {
	var verrs assessment.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Success: false, Errors: verrs})
	case errors.Is(err, pipeline.ErrModelUnavailable):
		writeError(w, http.StatusServiceUnavailable, "model_unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}
