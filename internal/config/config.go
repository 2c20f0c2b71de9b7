package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/incident-analytics-service/internal/analytics"
)

// Data sources.
const (
	SourceFile  = "file"
	SourceHTTP  = "http"
	SourceKafka = "kafka"
	SourceDemo  = "demo"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataSource     string
	DatasetPath    string
	DatasetURL     string
	DatasetTimeout time.Duration
	DemoSeed       uint64
	DemoSize       int

	HTTPAddr        string
	CORSOrigins     []string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	RefilterDebounce time.Duration
	AnomalyThreshold float64
	ForecastHorizon  int
	ForecastMethod   analytics.ForecastMethod
	TopN             int
	RiskMinScore     float64
	ScoreEntity      string

	KafkaBrokers        []string
	KafkaSourceTopic    string
	KafkaSinkTopic      string
	KafkaGroupID        string
	KafkaPublishEnabled bool
	KafkaIdleTimeout    time.Duration
	BatchSize           int
	BatchFlushInterval  time.Duration

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataSource:  sharedcfg.EnvOrDefault("DATA_SOURCE", SourceFile),
		DatasetPath: sharedcfg.EnvOrDefault("DATASET_PATH", "data/incidents.json"),
		DatasetURL:  os.Getenv("DATASET_URL"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		CORSOrigins:     splitList(sharedcfg.EnvOrDefault("CORS_ORIGINS", "*")),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:        sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:    sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-incidents"),
		KafkaSinkTopic:      sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "incident-dashboards"),
		KafkaGroupID:        sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "incident-analytics"),
		KafkaPublishEnabled: os.Getenv("KAFKA_PUBLISH_ENABLED") == "true",
		BatchSize:           batchSize,
		BatchFlushInterval:  flushInterval,

		MapboxToken: os.Getenv("MAPBOX_TOKEN"),
	}

	if cfg.DatasetTimeout, err = parseDuration("DATASET_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.RefilterDebounce, err = parseDuration("REFILTER_DEBOUNCE", "250ms"); err != nil {
		return nil, err
	}
	if cfg.KafkaIdleTimeout, err = parseDuration("KAFKA_IDLE_TIMEOUT", "3s"); err != nil {
		return nil, err
	}
	if cfg.MapboxTimeout, err = parseDuration("MAPBOX_TIMEOUT", "5s"); err != nil {
		return nil, err
	}

	seed, err := strconv.ParseUint(sharedcfg.EnvOrDefault("DEMO_SEED", "1908"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid DEMO_SEED")
	}
	cfg.DemoSeed = seed
	if cfg.DemoSize, err = parsePositiveInt("DEMO_SIZE", "500"); err != nil {
		return nil, err
	}
	if cfg.ForecastHorizon, err = parsePositiveInt("FORECAST_HORIZON", "5"); err != nil {
		return nil, err
	}
	if cfg.TopN, err = parsePositiveInt("TOP_N", "15"); err != nil {
		return nil, err
	}
	if cfg.AnomalyThreshold, err = parseFloat("ANOMALY_THRESHOLD", "2"); err != nil {
		return nil, err
	}
	if cfg.AnomalyThreshold <= 0 {
		return nil, errors.New("invalid ANOMALY_THRESHOLD")
	}
	if cfg.RiskMinScore, err = parseFloat("RISK_MIN_SCORE", "0"); err != nil {
		return nil, err
	}
	if cfg.ForecastMethod, err = analytics.ParseForecastMethod(os.Getenv("FORECAST_METHOD")); err != nil {
		return nil, fmt.Errorf("invalid FORECAST_METHOD: %w", err)
	}
	if cfg.ScoreEntity, err = analytics.ParseEntity(os.Getenv("SCORE_ENTITY")); err != nil {
		return nil, fmt.Errorf("invalid SCORE_ENTITY: %w", err)
	}

	cfg.MapboxCacheSize = parseMapboxCacheSize()
	cfg.MapboxEnabled = cfg.MapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		cfg.MapboxEnabled = v == "true"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DataSource {
	case SourceFile:
		if c.DatasetPath == "" {
			return errors.New("DATASET_PATH is required when DATA_SOURCE=file")
		}
	case SourceHTTP:
		if c.DatasetURL == "" {
			return errors.New("DATASET_URL is required when DATA_SOURCE=http")
		}
	case SourceKafka:
		if c.KafkaSourceTopic == "" {
			return errors.New("KAFKA_SOURCE_TOPIC is required when DATA_SOURCE=kafka")
		}
	case SourceDemo:
	default:
		return fmt.Errorf("invalid DATA_SOURCE %q", c.DataSource)
	}

	if (c.DataSource == SourceKafka || c.KafkaPublishEnabled) && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if c.KafkaPublishEnabled && c.KafkaSinkTopic == "" {
		return errors.New("KAFKA_SINK_TOPIC is required")
	}
	if c.MapboxEnabled && c.MapboxToken == "" {
		return errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	return nil
}

func parseDuration(name, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(name, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return d, nil
}

func parsePositiveInt(name, def string) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(name, def))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return n, nil
}

func parseFloat(name, def string) (float64, error) {
	f, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(name, def), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
