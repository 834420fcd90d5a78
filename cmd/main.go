package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/predictwell/riskcore/internal/adapters/http/api"
	service "github.com/predictwell/riskcore/internal/app"
	"github.com/predictwell/riskcore/internal/config"
	"github.com/predictwell/riskcore/internal/domain/confidence"
	"github.com/predictwell/riskcore/internal/domain/feature"
	"github.com/predictwell/riskcore/internal/domain/model"
	"github.com/predictwell/riskcore/internal/domain/recommend"
	"github.com/predictwell/riskcore/internal/pipeline"
	"github.com/predictwell/riskcore/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	// Disable default Go metrics collection to avoid duplicate metrics
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Load the model artifact. A broken artifact must stop the process
	// here; there is no degraded mode for risk predictions.
	eng := feature.NewEngineer()
	mdl, err := loadModel(cfg, eng)
	if err != nil {
		log.Fatal(ctx, "failed to load risk model", logger.String("backend", cfg.ModelBackend), logger.String("path", cfg.ModelPath), logger.Error(err))
		return
	}
	defer func() {
		if err := mdl.Close(); err != nil {
			log.Error(ctx, "failed to close model", logger.Error(err))
		}
	}()

	thresholds := cfg.ThresholdSet()
	pipe, err := pipeline.New(
		eng,
		mdl,
		confidence.New(confidence.WithWeights(cfg.ModelWeight, cfg.CompletenessWeight)),
		recommend.New(thresholds),
		thresholds,
	)
	if err != nil {
		if errors.Is(err, pipeline.ErrSchemaMismatch) {
			log.Fatal(ctx, "model does not match feature schema", logger.String("schema", eng.Schema().Version), logger.Error(err))
		}
		log.Fatal(ctx, "failed to build pipeline", logger.Error(err))
		return
	}

	svc := service.New(pipe,
		service.WithLogger(log),
		service.WithBatchConcurrency(cfg.BatchConcurrency),
		service.WithMaxBatchSize(cfg.MaxBatchSize),
	)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("model_backend", cfg.ModelBackend),
			logger.String("model_version", mdl.Version()),
			logger.String("schema_version", mdl.SchemaVersion()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// loadModel selects the inference backend from configuration.
func loadModel(cfg *config.Config, eng *feature.Engineer) (model.Model, error) {
	switch cfg.ModelBackend {
	case config.BackendONNX:
		return model.LoadONNX(cfg.ModelPath, cfg.OnnxLibraryPath, cfg.SchemaVersion, cfg.ModelVersion, eng.Size())
	default:
		return model.LoadNative(cfg.ModelPath)
	}
}
