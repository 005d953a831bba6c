package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/dwd-warncodes/internal/config"
	"github.com/couchcryptid/dwd-warncodes/internal/domain"
)

// Writer produces catalog entries to a Kafka topic.
// It implements publish.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured catalog topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes catalog entries in a single
// WriteMessages call. Keys are stable per category and code, so a compacted
// topic keeps exactly the latest snapshot.
func (w *Writer) LoadBatch(ctx context.Context, entries []domain.WarningEntry) error {
	if len(entries) == 0 {
		return nil
	}
	now := domain.Clock().Now()
	msgs := make([]kafkago.Message, len(entries))
	for i := range entries {
		msg, err := serializeToMessage(entries[i], now)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write catalog batch: %w", err)
	}
	w.logger.Debug("catalog batch written", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// MessageKey is the Kafka key of a catalog entry.
func MessageKey(e domain.WarningEntry) string {
	return string(e.Category) + "/" + e.Code
}

// serializeToMessage marshals a WarningEntry into a Kafka message.
func serializeToMessage(e domain.WarningEntry, publishedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize warning entry: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(MessageKey(e)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "category", Value: []byte(e.Category)},
			{Key: "published_at", Value: []byte(publishedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
