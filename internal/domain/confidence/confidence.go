// Package confidence derives a scalar confidence in [0,1] for one
// prediction from the model's uncertainty signal and the fraction of
// input fields that did not need imputation.
package confidence

import (
	"math"

	"github.com/predictwell/riskcore/internal/domain/model"
	"github.com/predictwell/riskcore/internal/domain/types"
)

// Default blend weights.
const (
	defaultModelWeight        = 0.6
	defaultCompletenessWeight = 0.4

	// Ensemble spread saturates the certainty penalty at this value; the
	// standard deviation of values in [0,1] cannot exceed 0.5.
	spreadScale = 0.25
)

// Option applies a configuration option to the Estimator.
type Option func(*Estimator)

// WithWeights sets the blend weights. Both must be positive; the
// completeness weight staying positive is what keeps confidence
// strictly decreasing as more fields are imputed.
func WithWeights(modelWeight, completenessWeight float64) Option {
	return func(e *Estimator) {
		if modelWeight > 0 && completenessWeight > 0 {
			e.modelWeight = modelWeight
			e.completenessWeight = completenessWeight
		}
	}
}

// Estimator combines model certainty with input completeness. It is
// stateless apart from its weights and safe for concurrent use.
type Estimator struct {
	modelWeight        float64
	completenessWeight float64
}

// New creates an Estimator with the default 0.6/0.4 blend.
func New(opts ...Option) *Estimator {
	e := &Estimator{
		modelWeight:        defaultModelWeight,
		completenessWeight: defaultCompletenessWeight,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate returns the confidence for one prediction. Model certainty
// is one minus the mean normalized binary entropy of the output
// probabilities, reduced by the normalized ensemble spread; the result
// is blended with the input completeness ratio.
func (e *Estimator) Estimate(out model.Outputs, completeness float64) float64 {
	var entropySum, spreadSum float64
	for i := 0; i < types.NumDiseases; i++ {
		entropySum += binaryEntropy(out.Probabilities[i])
		spreadSum += out.Spread[i]
	}
	meanEntropy := entropySum / types.NumDiseases
	spreadPenalty := math.Min(1, (spreadSum/types.NumDiseases)/spreadScale)

	certainty := clamp01(1 - meanEntropy - spreadPenalty)
	blended := e.modelWeight*certainty + e.completenessWeight*clamp01(completeness)
	return clamp01(blended / (e.modelWeight + e.completenessWeight))
}

// binaryEntropy returns -(p log2 p + q log2 q), normalized to [0,1].
// By convention 0 log 0 = 0.
func binaryEntropy(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	q := 1 - p
	return -(p*math.Log2(p) + q*math.Log2(q))
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
