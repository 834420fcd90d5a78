// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/predictwell/riskcore/internal/domain/assessment"
	"github.com/predictwell/riskcore/internal/domain/types"
	"github.com/predictwell/riskcore/internal/pipeline"
	"github.com/predictwell/riskcore/pkg/logger"
	"github.com/predictwell/riskcore/pkg/metrics"
)

// Batch errors.
var (
	ErrBatchTooLarge = errors.New("batch too large")
	ErrEmptyBatch    = errors.New("empty batch")
)

// BatchItem is the outcome for one assessment in a batch. Exactly one
// of Prediction and Err is set.
type BatchItem struct {
	Prediction *types.RiskPrediction
	Err        error
}

// Service runs assessments through the risk pipeline and records
// operational metrics. It is safe for concurrent use.
type Service struct {
	pipe *pipeline.Pipeline

	// Configuration
	batchConcurrency int
	maxBatchSize     int

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithBatchConcurrency bounds how many batch items run in parallel.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

// WithMaxBatchSize caps the number of items accepted per batch.
func WithMaxBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New creates a Service around a constructed pipeline.
func New(pipe *pipeline.Pipeline, opts ...Option) *Service {
	s := &Service{
		pipe:             pipe,
		batchConcurrency: runtime.NumCPU(),
		maxBatchSize:     500,
		logger:           logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assess runs one raw assessment through the pipeline. Validation
// failures come back as assessment.ValidationErrors; model failures
// wrap pipeline.ErrModelUnavailable.
func (s *Service) Assess(ctx context.Context, raw assessment.Raw) (*types.RiskPrediction, error) {
	start := time.Now()
	metrics.RecordAssessment()

	pred, err := s.pipe.Run(ctx, raw)
	if err != nil {
		var verrs assessment.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			metrics.RecordValidationFailure()
			s.logger.Debug(ctx, "assessment rejected",
				logger.Int("violations", len(verrs)))
		case errors.Is(err, pipeline.ErrModelUnavailable):
			metrics.RecordModelFailure()
			s.logger.Error(ctx, "assessment failed", logger.Error(err))
		default:
			s.logger.Error(ctx, "assessment failed", logger.Error(err))
		}
		return nil, err
	}

	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0
	metrics.RecordPrediction(latencyMs, pred.Confidence, len(pred.Recommendations))
	for _, d := range types.Diseases {
		metrics.RecordRiskScore(string(d), pred.Score(d))
	}

	s.logger.Debug(ctx, "assessment complete",
		logger.Float64("confidence", pred.Confidence),
		logger.Int("recommendations", len(pred.Recommendations)),
		logger.Float64("latency_ms", latencyMs))
	return pred, nil
}

// AssessBatch runs every item through the pipeline with bounded
// concurrency and returns outcomes in input order. A validation failure
// on one item never affects the others; only a batch-level problem
// (size, cancellation) returns an error.
func (s *Service) AssessBatch(ctx context.Context, raws []assessment.Raw) ([]BatchItem, error) {
	if len(raws) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(raws) > s.maxBatchSize {
		return nil, fmt.Errorf("%w: %d items, limit %d", ErrBatchTooLarge, len(raws), s.maxBatchSize)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := make([]BatchItem, len(raws))
	sem := make(chan struct{}, s.batchConcurrency)
	var wg sync.WaitGroup

	for i, raw := range raws {
		wg.Add(1)
		go func(i int, raw assessment.Raw) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				items[i] = BatchItem{Err: err}
				return
			}
			pred, err := s.Assess(ctx, raw)
			items[i] = BatchItem{Prediction: pred, Err: err}
		}(i, raw)
	}
	wg.Wait()

	return items, nil
}
