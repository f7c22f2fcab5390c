package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/DavidKimmel/DC-Traffic2/internal/adapter/chart"
	"github.com/DavidKimmel/DC-Traffic2/internal/adapter/geo"
	httpadapter "github.com/DavidKimmel/DC-Traffic2/internal/adapter/http"
	kafkaadapter "github.com/DavidKimmel/DC-Traffic2/internal/adapter/kafka"
	"github.com/DavidKimmel/DC-Traffic2/internal/adapter/source"
	"github.com/DavidKimmel/DC-Traffic2/internal/adapter/xlsx"
	"github.com/DavidKimmel/DC-Traffic2/internal/config"
	"github.com/DavidKimmel/DC-Traffic2/internal/observability"
	"github.com/DavidKimmel/DC-Traffic2/internal/pipeline"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

const mapFile = "map.geojson"

func main() {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	fetcher := source.NewFetcher(cfg.LoadTimeout, logger)
	loader := pipeline.NewLoader(source.NewCSVReader(fetcher, cfg.CrashDataLocation), cfg.ExcludedYears, clock, logger, metrics)

	var renderers pipeline.Renderers

	// File renderers (feature-flagged via CHART_OUTPUT_DIR).
	if cfg.ChartOutputDir != "" {
		if err := os.MkdirAll(cfg.ChartOutputDir, 0o755); err != nil {
			logger.Error("failed to create chart output dir", "error", err, "dir", cfg.ChartOutputDir)
			os.Exit(1)
		}
		charts := chart.NewFileRenderer(cfg.ChartOutputDir)
		renderers.Severity = append(renderers.Severity, charts)
		renderers.Trend = append(renderers.Trend, charts)
		renderers.Points = append(renderers.Points, geo.NewFileRenderer(filepath.Join(cfg.ChartOutputDir, mapFile)))
		logger.Info("file renderers enabled", "dir", cfg.ChartOutputDir)
	}

	// Snapshot publisher (feature-flagged via KAFKA_BROKERS).
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, clock, logger)
		renderers.KPIs = append(renderers.KPIs, publisher)
		renderers.Severity = append(renderers.Severity, publisher)
		renderers.Trend = append(renderers.Trend, publisher)
		logger.Info("kafka snapshots enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaViewsTopic)
	} else {
		logger.Info("kafka snapshots disabled")
	}

	coord := pipeline.New(loader, renderers, logger, metrics, clock)
	boundaries := geo.NewBoundaryStore(fetcher, cfg.WardBoundariesLocation, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, coord, boundaries, xlsx.NewExporter(), metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// One-shot dataset loads. Failures are logged by the loaders and leave
	// the service running with empty data.
	go func() {
		loadCtx, cancel := context.WithTimeout(ctx, cfg.LoadTimeout)
		defer cancel()
		_ = coord.Load(loadCtx, cfg.DefaultYear)
	}()
	if cfg.WardBoundariesLocation != "" {
		go func() {
			loadCtx, cancel := context.WithTimeout(ctx, cfg.LoadTimeout)
			defer cancel()
			_ = boundaries.Load(loadCtx)
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
