// Package model wraps trained risk models behind a fixed inference
// contract: a schema-versioned input vector in, four probabilities plus
// an uncertainty signal out. Backends are loaded once at process start
// and are safe for concurrent Predict calls.
package model

import (
	"errors"

	"github.com/predictwell/riskcore/internal/domain/types"
)

// Sentinel kinds for model errors.
var (
	ErrArtifact  = errors.New("model artifact invalid")
	ErrInputSize = errors.New("input vector size mismatch")
	ErrBadOutput = errors.New("model produced non-finite output")
)

// Outputs is one raw prediction: per-disease probabilities in [0,1], in
// types.Diseases order, plus the per-output ensemble spread (standard
// deviation across ensemble members; all zeros for single-network
// backends).
type Outputs struct {
	Probabilities [types.NumDiseases]float64
	Spread        [types.NumDiseases]float64
}

// Model is the inference contract. Implementations guarantee outputs
// clamped to [0,1] and reject NaN/Inf as ErrBadOutput rather than
// propagating them.
type Model interface {
	// Predict runs inference on one feature vector.
	Predict(vec []float64) (Outputs, error)

	// InputSize is the expected feature vector length.
	InputSize() int

	// SchemaVersion is the feature schema the model was trained against.
	SchemaVersion() string

	// Version identifies the loaded artifact.
	Version() string

	// Close releases backend resources.
	Close() error
}
