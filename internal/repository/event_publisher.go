package repository

import (
	"context"
	"fmt"

	"IndexScope/internal/domain/models"
	domrepo "IndexScope/internal/domain/repository"
	"IndexScope/pkg/kafka"
)

// KafkaPublisher sends domain events to a Kafka topic, keyed by symbol.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaPublisher(p *kafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic}
}

func (p *KafkaPublisher) PublishProjection(ctx context.Context, evt *models.ProjectionComputed) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(evt.Symbol), evt); err != nil {
		return fmt.Errorf("publish projection event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.producer.Close() }

// NoopPublisher drops events. Used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishProjection(context.Context, *models.ProjectionComputed) error { return nil }
func (NoopPublisher) Close() error { return nil }

var (
	_ domrepo.Publisher = (*KafkaPublisher)(nil)
	_ domrepo.Publisher = NoopPublisher{}
)
