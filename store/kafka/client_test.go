package kafka

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	c, err := New(&Config{})
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, []string{"localhost:9092"}, c.config.Brokers)
	assert.Equal(t, BalancerHash, c.config.Balancer)
	assert.IsType(t, &kafka.Hash{}, c.config.balancer())
	assert.Equal(t, time.Second, c.config.BatchTimeout)
}

func TestNewInvalid(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(&Config{Brokers: []string{}})
	assert.ErrorIs(t, err, ErrEmptyBrokers)
}

func TestProducerCaching(t *testing.T) {
	c, err := New(&Config{Brokers: []string{"127.0.0.1:1"}})
	require.NoError(t, err)

	p1, err := c.Producer("audit")
	require.NoError(t, err)
	p2, err := c.Producer("audit")
	require.NoError(t, err)
	assert.Same(t, p1, p2)
	assert.False(t, p1.Async)

	a, err := c.AsyncProducer("audit")
	require.NoError(t, err)
	assert.NotSame(t, p1, a)
	assert.True(t, a.Async)
	assert.NotNil(t, a.Completion)

	require.NoError(t, c.Close())
	_, err = c.Producer("audit")
	assert.ErrorIs(t, err, ErrClientClosed)
	assert.NoError(t, c.Close())
}

func TestBalancer(t *testing.T) {
	assert.IsType(t, &kafka.LeastBytes{}, (&Config{Balancer: BalancerLeastBytes}).balancer())
	assert.IsType(t, &kafka.RoundRobin{}, (&Config{Balancer: BalancerRoundRobin}).balancer())
}

func TestProduce(t *testing.T) {
	broker := os.Getenv("KAFKA_BROKER")
	if broker == "" {
		t.Skip("Skipping test (KAFKA_BROKER not set)")
	}

	c, err := New(&Config{Brokers: []string{broker}, AllowAutoTopicCreation: true})
	require.NoError(t, err)
	defer c.Close()

	p, err := c.Producer("passport-test")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, p.WriteMessages(ctx, kafka.Message{Key: []byte("k"), Value: []byte("v")}))
}
