// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
// - Configuration is read once at process start and immutable after.
package config

import (
	"runtime"

	"github.com/predictwell/riskcore/internal/domain/types"
)

// Model backends.
const (
	BackendNative = "native"
	BackendONNX   = "onnx"
)

// TierBounds mirrors types.Thresholds for koanf unmarshalling.
type TierBounds struct {
	Low      float64 `koanf:"low"`
	Moderate float64 `koanf:"moderate"`
	High     float64 `koanf:"high"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ModelBackend selects the inference backend: native or onnx.
	ModelBackend string `koanf:"model_backend"`

	// ModelPath points at the model artifact file.
	ModelPath string `koanf:"model_path"`

	// OnnxLibraryPath locates the ONNX Runtime shared library; only
	// used with the onnx backend.
	OnnxLibraryPath string `koanf:"onnx_library_path"`

	// SchemaVersion is the feature schema the model artifact was built
	// against. The onnx backend has no embedded metadata, so this is
	// authoritative there; the native backend must agree with it.
	SchemaVersion string `koanf:"schema_version"`

	// ModelVersion labels the onnx artifact (native artifacts carry
	// their own version).
	ModelVersion string `koanf:"model_version"`

	// Thresholds maps disease names to tier boundaries.
	Thresholds map[string]TierBounds `koanf:"thresholds"`

	// ModelWeight and CompletenessWeight blend the two confidence
	// components.
	ModelWeight        float64 `koanf:"model_weight"`
	CompletenessWeight float64 `koanf:"completeness_weight"`

	// BatchConcurrency bounds parallel items in one batch request.
	BatchConcurrency int `koanf:"batch_concurrency"`

	// MaxBatchSize caps items per batch request.
	MaxBatchSize int `koanf:"max_batch_size"`
}

// New creates a Config with defaults.
func New() *Config {
	c := &Config{
		LogLevel:           "info",
		Addr:               ":9090",
		ModelBackend:       BackendNative,
		ModelPath:          "models/risk_model.json",
		OnnxLibraryPath:    "models/libonnxruntime.so",
		SchemaVersion:      "v1",
		ModelVersion:       "1.0.0",
		Thresholds:         defaultTierBounds(),
		ModelWeight:        0.6,
		CompletenessWeight: 0.4,
		BatchConcurrency:   runtime.NumCPU(),
		MaxBatchSize:       500,
	}
	return c
}

func defaultTierBounds() map[string]TierBounds {
	out := make(map[string]TierBounds, types.NumDiseases)
	for d, th := range types.DefaultThresholds() {
		out[string(d)] = TierBounds{Low: th.Low, Moderate: th.Moderate, High: th.High}
	}
	return out
}

// ThresholdSet converts the configured boundaries to the domain type.
func (c *Config) ThresholdSet() types.ThresholdSet {
	set := make(types.ThresholdSet, len(c.Thresholds))
	for name, tb := range c.Thresholds {
		set[types.Disease(name)] = types.Thresholds{Low: tb.Low, Moderate: tb.Moderate, High: tb.High}
	}
	return set
}
