package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/couchcryptid/incident-analytics-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/incident-analytics-service/internal/adapter/kafka"
	"github.com/couchcryptid/incident-analytics-service/internal/adapter/mapbox"
	"github.com/couchcryptid/incident-analytics-service/internal/analytics"
	"github.com/couchcryptid/incident-analytics-service/internal/config"
	"github.com/couchcryptid/incident-analytics-service/internal/domain"
	"github.com/couchcryptid/incident-analytics-service/internal/observability"
	"github.com/couchcryptid/incident-analytics-service/internal/pipeline"
	"github.com/couchcryptid/incident-analytics-service/internal/source"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

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

	var closers []io.Closer
	loader := newLoader(cfg, metrics, logger)
	if c, ok := loader.(io.Closer); ok {
		closers = append(closers, c)
	}
	fallback := source.NewDemoLoader(cfg.DemoSeed, cfg.DemoSize)

	p := pipeline.New(loader, fallback, pipeline.Settings{
		Views: analytics.ViewOptions{
			TopN:             cfg.TopN,
			Entity:           cfg.ScoreEntity,
			AnomalyThreshold: cfg.AnomalyThreshold,
			ForecastHorizon:  cfg.ForecastHorizon,
			ForecastMethod:   cfg.ForecastMethod,
			RiskMinScore:     cfg.RiskMinScore,
		},
		Debounce:    cfg.RefilterDebounce,
		LoadTimeout: cfg.DatasetTimeout,
		Geocoder:    geocoder,
	}, logger, metrics)
	defer p.Close()

	hub := httpadapter.NewHub(p.Dashboard, cfg.CORSOrigins, logger)
	p.Subscribe(hub)

	if cfg.KafkaPublishEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		p.Subscribe(writer)
		closers = append(closers, writer)
		logger.Info("publishing dashboards to kafka", "topic", cfg.KafkaSinkTopic)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, hub, cfg.CORSOrigins, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Load the dataset in the background; the API reports "loading" until done.
	go func() {
		if err := p.Load(ctx); err != nil {
			logger.Error("dataset unavailable", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Error("close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// newLoader selects the dataset source named by DATA_SOURCE.
func newLoader(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) source.Loader {
	switch cfg.DataSource {
	case config.SourceHTTP:
		return source.NewHTTPLoader(cfg.DatasetURL, cfg.DatasetTimeout)
	case config.SourceKafka:
		return kafkaadapter.NewReader(cfg, metrics, logger)
	case config.SourceDemo:
		return source.NewDemoLoader(cfg.DemoSeed, cfg.DemoSize)
	default:
		return source.NewFileLoader(cfg.DatasetPath)
	}
}
