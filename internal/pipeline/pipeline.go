// Package pipeline composes validation, feature engineering, model
// inference, confidence estimation and recommendation generation into
// one synchronous call. A Pipeline is a pure function of its input plus
// the loaded model: it holds no mutable cross-call state and is safe to
// invoke concurrently.
package pipeline

import (
	"context"
	"fmt"

	"github.com/predictwell/riskcore/internal/domain/assessment"
	"github.com/predictwell/riskcore/internal/domain/confidence"
	"github.com/predictwell/riskcore/internal/domain/feature"
	"github.com/predictwell/riskcore/internal/domain/model"
	"github.com/predictwell/riskcore/internal/domain/recommend"
	"github.com/predictwell/riskcore/internal/domain/types"
	"github.com/predictwell/riskcore/pkg/logger"
)

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.logger = log
		}
	}
}

// Pipeline owns the result contract and error propagation for the risk
// inference flow.
type Pipeline struct {
	engineer    *feature.Engineer
	model       model.Model
	estimator   *confidence.Estimator
	recommender *recommend.Engine
	thresholds  types.ThresholdSet
	logger      logger.Logger
}

// New wires the pipeline components. The feature schema is negotiated
// against the model contract here: a version or length mismatch is a
// configuration error that must abort startup, never surface at
// request time.
func New(
	eng *feature.Engineer,
	m model.Model,
	est *confidence.Estimator,
	rec *recommend.Engine,
	thresholds types.ThresholdSet,
	opts ...Option,
) (*Pipeline, error) {
	if eng.Schema().Version != m.SchemaVersion() {
		return nil, fmt.Errorf("%w: feature schema %s, model schema %s",
			ErrSchemaMismatch, eng.Schema().Version, m.SchemaVersion())
	}
	if eng.Size() != m.InputSize() {
		return nil, fmt.Errorf("%w: feature vector length %d, model input %d",
			ErrSchemaMismatch, eng.Size(), m.InputSize())
	}
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		engineer:    eng,
		model:       m,
		estimator:   est,
		recommender: rec,
		thresholds:  thresholds,
		logger:      logger.Get().Named("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run executes the full flow for one raw assessment. On validation
// failure it returns assessment.ValidationErrors carrying every
// violation and runs nothing downstream; any model failure is wrapped
// in ErrModelUnavailable so callers can tell "fix your input" from
// "try again later".
func (p *Pipeline) Run(ctx context.Context, raw assessment.Raw) (*types.RiskPrediction, error) {
	validated, err := assessment.Validate(raw)
	if err != nil {
		return nil, err
	}

	vec, err := p.engineer.Build(validated)
	if err != nil {
		// Build can only fail on a schema/registry defect, which New
		// should have caught; treat it as a model-side failure.
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}

	out, err := p.model.Predict(vec)
	if err != nil {
		p.logger.Error(ctx, "risk model inference failed", logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}

	pred := &types.RiskPrediction{
		Tiers:        make(map[types.Disease]types.Tier, types.NumDiseases),
		ModelVersion: p.model.Version(),
	}
	for i, d := range types.Diseases {
		score := out.Probabilities[i] * 100
		pred.SetScore(d, score)
		pred.Tiers[d] = p.thresholds[d].Tier(score)
	}

	pred.Confidence = p.estimator.Estimate(out, validated.Completeness())
	pred.Recommendations = p.recommender.Recommend(pred, validated)

	return pred, nil
}
