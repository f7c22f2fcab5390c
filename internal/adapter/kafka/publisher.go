// Package kafka publishes dashboard view snapshots to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/DavidKimmel/DC-Traffic2/internal/config"
	"github.com/DavidKimmel/DC-Traffic2/internal/domain"
	"github.com/DavidKimmel/DC-Traffic2/internal/pipeline"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
)

// Header keys set on every snapshot message.
const (
	HeaderView        = "view"
	HeaderGeneratedAt = "generated_at"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Snapshot is the JSON value of a published message.
type Snapshot struct {
	View        string           `json:"view"`
	Selection   domain.Selection `json:"selection"`
	GeneratedAt time.Time        `json:"generated_at"`
	Data        any              `json:"data"`
}

// Publisher writes one message per recomputed view.
// It implements pipeline.KPIRenderer, pipeline.SeverityRenderer and
// pipeline.TrendRenderer.
type Publisher struct {
	writer messageWriter
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured views topic.
func NewPublisher(cfg *config.Config, clock clockwork.Clock, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaViewsTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newPublisher(w, clock, logger)
}

func newPublisher(w messageWriter, clock clockwork.Clock, logger *slog.Logger) *Publisher {
	return &Publisher{writer: w, clock: clock, logger: logger}
}

// RenderKPIs publishes the KPI cards.
func (p *Publisher) RenderKPIs(ctx context.Context, sel domain.Selection, kpis domain.KPISet) error {
	return p.publish(ctx, pipeline.ViewKPIs, sel, kpis)
}

// RenderSeverityHistogram publishes the severity donut counts.
func (p *Publisher) RenderSeverityHistogram(ctx context.Context, sel domain.Selection, h domain.SeverityHistogram) error {
	return p.publish(ctx, pipeline.ViewSeverity, sel, h.Categories())
}

// RenderYearlyTrend publishes the per-year bar series.
func (p *Publisher) RenderYearlyTrend(ctx context.Context, sel domain.Selection, trend []domain.YearCount) error {
	return p.publish(ctx, pipeline.ViewTrend, sel, trend)
}

func (p *Publisher) publish(ctx context.Context, view string, sel domain.Selection, data any) error {
	msg, err := serializeToMessage(Snapshot{
		View:        view,
		Selection:   sel,
		GeneratedAt: p.clock.Now().UTC(),
		Data:        data,
	})
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s snapshot: %w", view, err)
	}
	p.logger.Debug("view snapshot published", "view", view, "key", string(msg.Key))
	return nil
}

// Close flushes pending messages and closes the producer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a snapshot into a Kafka message keyed by its
// selection.
func serializeToMessage(s Snapshot) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s snapshot: %w", s.View, err)
	}
	return kafkago.Message{
		Key:   []byte(s.Selection.Key()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: HeaderView, Value: []byte(s.View)},
			{Key: HeaderGeneratedAt, Value: []byte(s.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
