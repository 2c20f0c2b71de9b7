package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/incident-analytics-service/internal/config"
	"github.com/couchcryptid/incident-analytics-service/internal/domain"
	"github.com/couchcryptid/incident-analytics-service/internal/observability"
	"github.com/couchcryptid/incident-analytics-service/internal/source"
)

// messageFetcher is the subset of *kafkago.Reader the source needs.
type messageFetcher interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Reader drains raw incident messages from the source topic.
// It implements source.Loader.
type Reader struct {
	fetcher   messageFetcher
	topic     string
	idle      time.Duration
	batchSize int
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewReader creates a consumer-group reader for the configured source topic.
func NewReader(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.KafkaBrokers,
		GroupID:     cfg.KafkaGroupID,
		Topic:       cfg.KafkaSourceTopic,
		StartOffset: kafkago.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     cfg.BatchFlushInterval,
	})
	return &Reader{
		fetcher:   r,
		topic:     cfg.KafkaSourceTopic,
		idle:      cfg.KafkaIdleTimeout,
		batchSize: cfg.BatchSize,
		metrics:   metrics,
		logger:    logger,
	}
}

// Name implements source.Loader.
func (r *Reader) Name() string { return "kafka:" + r.topic }

// Load reads until no message arrives for the idle timeout. Each message holds
// one raw incident object or an array of them; undecodable messages are
// logged and skipped. Offsets are committed every batchSize messages.
func (r *Reader) Load(ctx context.Context) ([]domain.RawIncident, error) {
	var (
		out     []domain.RawIncident
		pending []kafkago.Message
	)
	commit := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := r.fetcher.CommitMessages(ctx, pending...); err != nil {
			return fmt.Errorf("commit offsets: %w", err)
		}
		pending = pending[:0]
		return nil
	}

	for {
		fetchCtx, cancel := context.WithTimeout(ctx, r.idle)
		msg, err := r.fetcher.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				break
			}
			return nil, fmt.Errorf("fetch message: %w", err)
		}
		r.metrics.SourceMessages.Inc()

		raws, err := decodeMessage(msg.Value)
		if err != nil {
			r.logger.Warn("skipping undecodable message",
				"error", err,
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
			)
		}
		out = append(out, raws...)

		pending = append(pending, msg)
		if len(pending) >= max(r.batchSize, 1) {
			if err := commit(); err != nil {
				return nil, err
			}
		}
	}

	if err := commit(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, source.ErrNoRecords
	}
	r.logger.Info("kafka source drained", "topic", r.topic, "records", len(out))
	return out, nil
}

// Close closes the underlying consumer.
func (r *Reader) Close() error {
	return r.fetcher.Close()
}

// decodeMessage accepts a single JSON object or a JSON array of objects.
func decodeMessage(value []byte) ([]domain.RawIncident, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var raws []domain.RawIncident
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("decode incident array: %w", err)
		}
		return raws, nil
	}
	var raw domain.RawIncident
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("decode incident: %w", err)
	}
	return []domain.RawIncident{raw}, nil
}
