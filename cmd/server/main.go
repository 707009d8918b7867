// Package main provides the entry point for the metadata service HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openshelf/metadata-service/internal/aggregate"
	"github.com/openshelf/metadata-service/internal/confidence"
	"github.com/openshelf/metadata-service/internal/config"
	"github.com/openshelf/metadata-service/internal/conflict"
	"github.com/openshelf/metadata-service/internal/observability"
	"github.com/openshelf/metadata-service/internal/providers"
	"github.com/openshelf/metadata-service/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("metadata-service server starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	// Build the provider registry from linked adapters. An enabled provider
	// with no adapter compiled in is a warning, not a fatal: deployments
	// choose their adapter set at build time.
	registry := providers.NewRegistry()
	for name, pc := range enabledProviders(cfg) {
		p, err := providers.Build(providers.Settings{
			Name:       name,
			BaseURL:    pc.BaseURL,
			APIKey:     pc.APIKey,
			Priority:   pc.Priority,
			MaxResults: pc.MaxResults,
			RateLimit: providers.RateLimitConfig{
				MaxRequests: int(pc.RateLimit),
				Window:      time.Second,
			},
			Timeout: providers.TimeoutConfig{
				RequestTimeout:   pc.RequestTimeout,
				OperationTimeout: pc.OperationTimeout,
			},
		}, observability.WithProviderContext(logger, name))
		if err != nil {
			logger.Warn().Err(err).Str("provider", name).Msg("skipping provider")
			continue
		}
		registry.Register(p)
		logger.Info().Str("provider", name).Msg("provider registered")
	}

	engine := confidence.NewEngine(confidence.DefaultTuning())
	aggregator, err := aggregate.New(registry, engine, aggregate.Options{
		MinProviders:     cfg.Aggregation.MinProviders,
		DisableDedup:     !cfg.Aggregation.DedupEnabled,
		DisableConsensus: !cfg.Aggregation.ConsensusEnabled,
		GlobalTimeout:    cfg.Aggregation.GlobalTimeout,
		TitleSimilarity:  cfg.Aggregation.TitleSimilarity,
	}, logger, metrics)
	if err != nil {
		return fmt.Errorf("create aggregator: %w", err)
	}

	detector := conflict.NewDetector(logger, metrics)

	httpSrv := server.NewServer(server.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     2 * cfg.Server.ReadTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MetricsEnabled:  cfg.Metrics.Enabled,
		MetricsPath:     cfg.Metrics.Path,
	}, aggregator, detector, logger)

	// Channel to collect server errors.
	errCh := make(chan error, 1)

	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info().
		Str("http_address", cfg.Server.HTTPAddress()).
		Int("providers", registry.Len()).
		Msg("metadata-service is ready")

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	// Graceful shutdown.
	logger.Info().Msg("shutting down metadata-service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logger.Info().Msg("metadata-service shutdown complete")
	return nil
}

// enabledProviders maps provider names to their enabled config blocks.
func enabledProviders(cfg *config.Config) map[string]config.ProviderConfig {
	all := map[string]config.ProviderConfig{
		"open_library":        cfg.Providers.OpenLibrary,
		"google_books":        cfg.Providers.GoogleBooks,
		"wikidata":            cfg.Providers.WikiData,
		"isbndb":              cfg.Providers.ISBNdb,
		"library_of_congress": cfg.Providers.LibraryOfCongress,
	}
	enabled := make(map[string]config.ProviderConfig, len(all))
	for name, pc := range all {
		if pc.Enabled {
			enabled[name] = pc
		}
	}
	return enabled
}
