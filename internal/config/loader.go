package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if RISKCORE_CONFIG is set
//  3. env (prefix RISKCORE_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("RISKCORE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: RISKCORE_ADDR, RISKCORE_MODEL_PATH, ...
	// Map env keys like RISKCORE_MODEL_PATH -> model_path (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("RISKCORE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "riskcore_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.ModelBackend != BackendNative && cfg.ModelBackend != BackendONNX {
		return fmt.Errorf("%w: unknown model backend %q", ErrInvalidConfig, cfg.ModelBackend)
	}
	if cfg.ModelPath == "" {
		return fmt.Errorf("%w: model_path must not be empty", ErrInvalidConfig)
	}
	if cfg.ModelBackend == BackendONNX && cfg.OnnxLibraryPath == "" {
		return fmt.Errorf("%w: onnx_library_path required for onnx backend", ErrInvalidConfig)
	}
	if cfg.ModelWeight <= 0 || cfg.CompletenessWeight <= 0 {
		return fmt.Errorf("%w: confidence weights must be positive", ErrInvalidConfig)
	}
	if cfg.BatchConcurrency < 1 {
		return fmt.Errorf("%w: batch_concurrency must be at least 1", ErrInvalidConfig)
	}
	if cfg.MaxBatchSize < 1 {
		return fmt.Errorf("%w: max_batch_size must be at least 1", ErrInvalidConfig)
	}
	if err := cfg.ThresholdSet().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
