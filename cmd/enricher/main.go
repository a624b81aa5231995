package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/sakura-phenology-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/sakura-phenology-service/internal/adapter/kafka"
	"github.com/couchcryptid/sakura-phenology-service/internal/adapter/mapbox"
	"github.com/couchcryptid/sakura-phenology-service/internal/config"
	"github.com/couchcryptid/sakura-phenology-service/internal/domain"
	"github.com/couchcryptid/sakura-phenology-service/internal/observability"
	"github.com/couchcryptid/sakura-phenology-service/internal/phenology"
	"github.com/couchcryptid/sakura-phenology-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	engine, err := loadEngine(cfg, logger, metrics)
	if err != nil {
		logger.Error("failed to load reference data", "error", err)
		os.Exit(1)
	}

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(engine, geocoder, logger)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, engine, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// loadEngine reads both reference tables. Skipped rows are logged and counted;
// only an unreadable file or header is fatal.
func loadEngine(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*phenology.Engine, error) {
	spots, err := os.Open(cfg.SpotsPath)
	if err != nil {
		return nil, fmt.Errorf("open spots: %w", err)
	}
	defer spots.Close() //nolint:errcheck // read-only

	offsets, err := os.Open(cfg.OffsetsPath)
	if err != nil {
		return nil, fmt.Errorf("open offsets: %w", err)
	}
	defer offsets.Close() //nolint:errcheck // read-only

	engine, report, err := phenology.Load(spots, offsets, cfg.Location)
	if err != nil {
		return nil, err
	}

	for _, s := range report.SpotSkips {
		logger.Warn("skipped spot row", "file", cfg.SpotsPath, "line", s.Line, "spot_id", s.Key, "reason", s.Reason)
	}
	for _, s := range report.OffsetSkips {
		logger.Warn("skipped offset row", "file", cfg.OffsetsPath, "line", s.Line, "prefecture_code", s.Key, "reason", s.Reason)
	}

	metrics.ReferenceRowsLoaded.WithLabelValues("spots").Set(float64(report.Spots))
	metrics.ReferenceRowsLoaded.WithLabelValues("offsets").Set(float64(report.Offsets))
	metrics.ReferenceRowsSkipped.WithLabelValues("spots").Add(float64(len(report.SpotSkips)))
	metrics.ReferenceRowsSkipped.WithLabelValues("offsets").Add(float64(len(report.OffsetSkips)))

	if report.Spots == 0 {
		logger.Warn("no spots loaded; every assessment will be indeterminate")
	}
	logger.Info("reference data loaded",
		"spots", report.Spots,
		"offsets", report.Offsets,
		"timezone", engine.Location().String(),
	)
	return engine, nil
}
