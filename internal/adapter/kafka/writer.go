package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rotisserie/eris"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/covid-choropleth/internal/config"
	"github.com/couchcryptid/covid-choropleth/internal/domain"
	"github.com/couchcryptid/covid-choropleth/internal/observability"
)

// Writer produces region style messages to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates a Kafka producer for the configured style topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics}
}

// LoadBatch publishes every style in the batch in a single WriteMessages
// call, keyed by region so updates for a region land on one partition.
func (w *Writer) LoadBatch(ctx context.Context, batch domain.StyleBatch) error {
	if len(batch.Styles) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(batch.Styles))
	for i := range batch.Styles {
		msg, err := serializeToMessage(batch, batch.Styles[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return eris.Wrapf(err, "publish %d region styles", len(msgs))
	}
	w.metrics.StylesPublished.Add(float64(len(msgs)))
	w.logger.Info("published region styles", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a RegionStyle into a Kafka message.
func serializeToMessage(batch domain.StyleBatch, style domain.RegionStyle) (kafkago.Message, error) {
	data, err := json.Marshal(style)
	if err != nil {
		return kafkago.Message{}, eris.Wrap(err, "serialize region style")
	}
	return kafkago.Message{
		Key:   []byte(style.Key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "mode", Value: []byte(batch.Mode.String())},
			{Key: "counter", Value: []byte(batch.Counter.String())},
			{Key: "generated_at", Value: []byte(batch.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
