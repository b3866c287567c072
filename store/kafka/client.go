package kafka

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"golang.org/x/sync/errgroup"

	"github.com/kochabx/passport/log"
)

// Client 按主题缓存 kafka.Writer
type Client struct {
	config    *Config
	transport kafka.RoundTripper
	logger    *log.Logger

	mu             sync.RWMutex
	closed         bool
	syncProducers  map[string]*kafka.Writer
	asyncProducers map[string]*kafka.Writer
}

// New 创建客户端，不建立连接
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	if len(cfg.Brokers) == 0 {
		return nil, ErrEmptyBrokers
	}

	o := applyOptions(opts)
	c := &Client{
		config:         cfg,
		transport:      o.transport,
		logger:         o.logger,
		syncProducers:  make(map[string]*kafka.Writer),
		asyncProducers: make(map[string]*kafka.Writer),
	}
	if c.logger == nil {
		c.logger = log.G
	}
	if c.transport == nil {
		t := &kafka.Transport{}
		if cfg.Username != "" && cfg.Password != "" {
			t.SASL = plain.Mechanism{Username: cfg.Username, Password: cfg.Password}
		}
		c.transport = t
	}
	return c, nil
}

func (c *Client) newWriter(topic string, async bool) *kafka.Writer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(c.config.Brokers...),
		Topic:                  topic,
		Balancer:               c.config.balancer(),
		Transport:              c.transport,
		AllowAutoTopicCreation: c.config.AllowAutoTopicCreation,
		BatchSize:              c.config.BatchSize,
		BatchTimeout:           c.config.BatchTimeout,
		WriteTimeout:           c.config.WriteTimeout,
		RequiredAcks:           kafka.RequireOne,
		Async:                  async,
	}
	if async {
		logger := c.logger
		w.Completion = func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error().Str("topic", topic).Int("messages", len(messages)).Err(err).Msg("kafka async write failed")
			}
		}
	}
	return w
}

func (c *Client) writer(m map[string]*kafka.Writer, topic string, async bool) (*kafka.Writer, error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil, ErrClientClosed
	}
	if w, ok := m[topic]; ok {
		c.mu.RUnlock()
		return w, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClientClosed
	}
	if w, ok := m[topic]; ok {
		return w, nil
	}
	w := c.newWriter(topic, async)
	m[topic] = w
	return w, nil
}

// Producer 主题的同步生产者，WriteMessages 等待 broker 确认
func (c *Client) Producer(topic string) (*kafka.Writer, error) {
	return c.writer(c.syncProducers, topic, false)
}

// AsyncProducer 主题的异步生产者，写入失败只记录日志
func (c *Client) AsyncProducer(topic string) (*kafka.Writer, error) {
	return c.writer(c.asyncProducers, topic, true)
}

// Close 刷新并关闭所有生产者
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	writers := make([]*kafka.Writer, 0, len(c.syncProducers)+len(c.asyncProducers))
	for _, w := range c.syncProducers {
		writers = append(writers, w)
	}
	for _, w := range c.asyncProducers {
		writers = append(writers, w)
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.config.CloseTimeout)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)
	for _, w := range writers {
		eg.Go(func() error {
			done := make(chan error, 1)
			go func() { done <- w.Close() }()
			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}
	return eg.Wait()
}
