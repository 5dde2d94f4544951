package repository

import (
	"context"

	"FinChart/internal/domain/models"
)

type eventProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaRenderPublisher announces computed scenes on a Kafka topic, keyed by
// symbol so one symbol's events stay ordered.
type KafkaRenderPublisher struct {
	producer eventProducer
	topic    string
}

func NewKafkaRenderPublisher(producer eventProducer, topic string) *KafkaRenderPublisher {
	return &KafkaRenderPublisher{producer: producer, topic: topic}
}

func (p *KafkaRenderPublisher) PublishRender(ctx context.Context, ev *models.RenderEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.Symbol), ev)
}

func (p *KafkaRenderPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopRenderPublisher drops events when Kafka is disabled.
type NoopRenderPublisher struct{}

func (NoopRenderPublisher) PublishRender(context.Context, *models.RenderEvent) error { return nil }
