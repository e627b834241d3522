package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/climate-snapshot-service/internal/config"
	"github.com/couchcryptid/climate-snapshot-service/internal/domain"
	"github.com/couchcryptid/climate-snapshot-service/internal/pipeline"
)

// Message kinds, carried in the "kind" header.
const (
	KindYearSummary = "year_summary"
	KindCrossing    = "crossing"
)

// messageWriter is the subset of *kafkago.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes load reports to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes one message per year summary and one per crossing in a
// single WriteMessages call. Keys are stable so a compacted topic keeps the
// latest state of each year and region.
func (w *Writer) Publish(ctx context.Context, report pipeline.LoadReport) error {
	msgs, err := reportMessages(report)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write load report: %w", err)
	}
	w.logger.Debug("load report published", "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func reportMessages(report pipeline.LoadReport) ([]kafkago.Message, error) {
	published := []byte(report.PublishedAt.Format(time.RFC3339))
	msgs := make([]kafkago.Message, 0, len(report.Years)+len(report.Crossings))
	for _, y := range report.Years {
		msg, err := yearMessage(y, published)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	for _, c := range report.Crossings {
		msg, err := crossingMessage(c, published)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func yearMessage(y pipeline.YearSummary, published []byte) (kafkago.Message, error) {
	data, err := json.Marshal(y)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize year %d summary: %w", y.Year, err)
	}
	return kafkago.Message{
		Key:   []byte("year-" + strconv.Itoa(y.Year)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(KindYearSummary)},
			{Key: "outcome", Value: []byte(y.Outcome)},
			{Key: "published_at", Value: published},
		},
	}, nil
}

func crossingMessage(c domain.Crossing, published []byte) (kafkago.Message, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize crossing for region %d: %w", c.Region, err)
	}
	return kafkago.Message{
		Key:   []byte("crossing-" + strconv.Itoa(c.Region)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(KindCrossing)},
			{Key: "published_at", Value: published},
		},
	}, nil
}
