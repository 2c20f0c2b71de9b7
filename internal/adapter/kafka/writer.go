package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/incident-analytics-service/internal/config"
	"github.com/couchcryptid/incident-analytics-service/internal/pipeline"
)

const publishMaxElapsed = 10 * time.Second

// messageWriter is the subset of *kafkago.Writer the sink needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes dashboard snapshots to the sink topic.
// It implements pipeline.Sink.
type Writer struct {
	writer     messageWriter
	logger     *slog.Logger
	maxElapsed time.Duration
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: cfg.BatchFlushInterval,
	}
	return &Writer{writer: w, logger: logger, maxElapsed: publishMaxElapsed}
}

// Publish serializes and writes one snapshot, retrying transient failures
// with exponential backoff until the context ends.
func (w *Writer) Publish(ctx context.Context, snap pipeline.Snapshot) error {
	msg, err := serializeToMessage(snap)
	if err != nil {
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = w.maxElapsed
	attempt := 0
	op := func() error {
		attempt++
		if err := w.writer.WriteMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			w.logger.Warn("snapshot write failed, retrying", "snapshot_id", snap.ID, "attempt", attempt, "error", err)
			return err
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return fmt.Errorf("publish snapshot %s: %w", snap.ID, err)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a snapshot into a Kafka message keyed by its ID.
func serializeToMessage(snap pipeline.Snapshot) (kafkago.Message, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(snap.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "generated_at", Value: []byte(snap.GeneratedAt.Format(time.RFC3339))},
			{Key: "records", Value: []byte(strconv.Itoa(snap.Records))},
		},
	}, nil
}
