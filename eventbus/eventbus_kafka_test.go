package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deliveryMessage(topic string, deliveryErr error) *kafka.Message {
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Error: deliveryErr},
	}
}

func TestAwaitDeliverySuccess(t *testing.T) {
	deliveryChan := make(chan kafka.Event, 1)
	deliveryChan <- deliveryMessage("podforge.podcast.events", nil)

	err := awaitDelivery(context.Background(), deliveryChan)
	assert.NoError(t, err)
}

func TestAwaitDeliveryReportsBrokerError(t *testing.T) {
	deliveryChan := make(chan kafka.Event, 1)
	deliveryChan <- deliveryMessage("podforge.podcast.events", errors.New("leader not available"))

	err := awaitDelivery(context.Background(), deliveryChan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delivery failed")
}

func TestAwaitDeliveryContextCancelled(t *testing.T) {
	// The request context ends before the broker answers; this happens on
	// every client disconnect since events publish on the request context.
	deliveryChan := make(chan kafka.Event, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := awaitDelivery(ctx, deliveryChan)
	assert.ErrorIs(t, err, context.Canceled)

	// The producer still owes the delivery report. A late send must land in
	// the buffer instead of panicking on a closed channel.
	deliveryChan <- deliveryMessage("podforge.podcast.events", nil)
}
