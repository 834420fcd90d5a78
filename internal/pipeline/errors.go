package pipeline

import "errors"

// Sentinel kinds for pipeline errors. Validation failures are returned
// as assessment.ValidationErrors and are caller-fixable; these are not.
var (
	// ErrModelUnavailable wraps any risk-model failure at inference time.
	// The pipeline never substitutes a default prediction: a fabricated
	// risk value presented as real would be clinically unsafe.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrSchemaMismatch means the feature engineer and the loaded model
	// disagree on schema version or vector length. Detected when the
	// pipeline is constructed, so the process refuses to start rather
	// than serving with a mismatched contract.
	ErrSchemaMismatch = errors.New("feature schema mismatch")
)
