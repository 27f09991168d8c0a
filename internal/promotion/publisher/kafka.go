package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-cart-service/internal/promotion"
	"github.com/fekuna/omnipos-cart-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Config struct {
	Brokers []string
	Topic   string
}

func NewKafkaWriter(cfg *Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
	}
}

// KafkaPublisher forwards promotion events to a topic, keyed by product id.
type KafkaPublisher struct {
	writer MessageWriter
	logger logger.ZapLogger
}

func NewKafkaPublisher(writer MessageWriter, log logger.ZapLogger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: writer,
		logger: log,
	}
}

type promotionMessage struct {
	EventType string          `json:"event_type"`
	Payload   promotion.Event `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

func (p *KafkaPublisher) OnPromotion(ctx context.Context, ev promotion.Event) {
	value, err := json.Marshal(promotionMessage{
		EventType: "PromotionApplied",
		Payload:   ev,
		Timestamp: ev.OccurredAt,
	})
	if err != nil {
		p.logger.Error("Failed to marshal promotion event", zap.Error(err))
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.ProductID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(ev.Kind)},
		},
	})
	if err != nil {
		p.logger.Error("Failed to publish promotion event",
			zap.String("event_id", ev.ID),
			zap.String("product_id", ev.ProductID),
			zap.Error(err),
		)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
