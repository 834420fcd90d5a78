package testassess

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/predictwell/riskcore/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete assessment test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting assessment test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("assessments", config.NumTotal),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate payloads
	payloads := generatePayloads(ctx, config, stats)

	// Step 3: Submit payloads concurrently
	if err := submitPayloads(ctx, config, payloads, stats); err != nil {
		return fmt.Errorf("assessment submission failed: %w", err)
	}

	// Step 4: Save payloads to file
	if err := savePayloadsToFile(ctx, config, payloads); err != nil {
		logger.Get().Warn(ctx, "failed to save payloads to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != statusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// savePayloadsToFile saves the generated payloads to a JSON file.
func savePayloadsToFile(ctx context.Context, config *Config, payloads []Payload) error {
	if len(payloads) == 0 {
		return fmt.Errorf("no payloads to save")
	}

	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_assessments_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(payloads, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal payloads: %w", err)
	}
	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "payloads saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, perSecond, avgConfidence float64

	if stats.Submitted > 0 {
		successRate = float64(stats.Successful) / float64(stats.Submitted) * 100
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	if stats.Successful > 0 {
		avgConfidence = stats.SumConfidence / float64(stats.Successful)
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("rejected", stats.Rejected),
		logger.Int("unavailable", stats.Unavailable),
		logger.Int("failed", stats.Failed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("assessmentsPerSecond", perSecond),
		logger.Float64("avgConfidence", avgConfidence))
}
