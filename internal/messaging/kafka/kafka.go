package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"auction-storefront/internal/messaging"

	kafkaGo "github.com/segmentio/kafka-go"
)

type kafkaPublisher struct {
	prefix string
	writer *kafkaGo.Writer
}

// NewKafkaPublisher creates a publisher writing to brokers. Topics are
// namespaced as "<prefix>.<topic>" when prefix is set.
func NewKafkaPublisher(brokers []string, prefix string) messaging.Publisher {
	return &kafkaPublisher{
		prefix: prefix,
		writer: &kafkaGo.Writer{
			Addr:                   kafkaGo.TCP(brokers...),
			Balancer:               &kafkaGo.LeastBytes{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           50 * time.Millisecond,
		},
	}
}

func (k *kafkaPublisher) topic(name string) string {
	if k.prefix == "" {
		return name
	}
	return k.prefix + "." + name
}

func (k *kafkaPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return k.writer.WriteMessages(ctx, kafkaGo.Message{
		Topic: k.topic(topic),
		Key:   []byte(key),
		Value: payload,
	})
}

func (k *kafkaPublisher) Close() error {
	return k.writer.Close()
}
