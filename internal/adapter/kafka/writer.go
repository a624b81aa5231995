package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/sakura-phenology-service/internal/config"
	"github.com/couchcryptid/sakura-phenology-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces bloom assessments to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic. Messages
// are keyed by tree id so every assessment of a tree lands on one partition.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		// WriteMessages blocks until its batch is flushed.
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes assessments in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, assessments []domain.BloomAssessment) error {
	if len(assessments) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(assessments))
	for i := range assessments {
		msg, err := serializeToMessage(assessments[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d assessments: %w", len(msgs), err)
	}
	w.logger.Debug("assessments written", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a BloomAssessment into a Kafka message.
func serializeToMessage(a domain.BloomAssessment) (kafkago.Message, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize bloom assessment: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(a.TreeID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "bloom_status", Value: []byte(a.StatusKey())},
			{Key: "processed_at", Value: []byte(a.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
