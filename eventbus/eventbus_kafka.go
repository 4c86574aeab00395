package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"podforge/logger"
)

// KafkaPublisher is the confluent-kafka-go backed Publisher implementation.
type KafkaPublisher struct {
	producer *kafka.Producer
	brokers  string
}

// NewKafkaPublisher initializes a Kafka producer against the given brokers.
func NewKafkaPublisher(brokers string) (*KafkaPublisher, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
		"retries":           5,
	})
	if err != nil {
		return nil, fmt.Errorf("eventbus: create kafka producer: %w", err)
	}

	// Drain delivery reports so failed deliveries surface in the logs.
	go func() {
		for e := range p.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					logger.Log.Errorf("event delivery failed %v: %v", ev.TopicPartition, ev.TopicPartition.Error)
				}
			case kafka.Error:
				logger.Log.Errorf("kafka error: %v", ev)
			}
		}
	}()

	return &KafkaPublisher{producer: p, brokers: brokers}, nil
}

// Close flushes pending messages and shuts the producer down.
func (k *KafkaPublisher) Close() {
	if k.producer != nil {
		if remaining := k.producer.Flush(5000); remaining > 0 {
			logger.Log.Warnf("%d events still unflushed at shutdown", remaining)
		}
		k.producer.Close()
		logger.Log.Info("kafka producer closed")
	}
}

// Publish sends the event to the given topic and waits for the delivery
// report.
func (k *KafkaPublisher) Publish(ctx context.Context, topic string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("eventbus: marshal event: %w", err)
	}

	// Buffered and never closed: on context cancellation Publish returns
	// while the producer still owes the delivery report, and a send on a
	// closed channel would panic the delivery goroutine. The abandoned
	// channel is collected once the report lands.
	deliveryChan := make(chan kafka.Event, 1)

	err = k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          data,
		Key:            []byte(event.ID),
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("eventbus: produce: %w", err)
	}

	return awaitDelivery(ctx, deliveryChan)
}

// awaitDelivery waits for the delivery report or the caller giving up.
func awaitDelivery(ctx context.Context, deliveryChan chan kafka.Event) error {
	select {
	case ev := <-deliveryChan:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("eventbus: unexpected delivery event: %v", ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("eventbus: delivery failed: %w", m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
