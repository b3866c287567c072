package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/kochabx/passport/core/tag"
)

// Balancer 分区策略
type Balancer string

const (
	BalancerLeastBytes Balancer = "leastBytes"
	BalancerHash       Balancer = "hash"
	BalancerRoundRobin Balancer = "roundRobin"
)

// Config Kafka 生产者配置
type Config struct {
	Brokers  []string `json:"brokers" default:"localhost:9092"`
	Username string   `json:"username"`
	Password string   `json:"password"`

	// 相同 key 的消息需要落在同一分区时使用 hash
	Balancer               Balancer `json:"balancer" default:"hash" validate:"oneof=leastBytes hash roundRobin"`
	AllowAutoTopicCreation bool     `json:"allowAutoTopicCreation"`

	BatchSize    int           `json:"batchSize" default:"100"`
	BatchTimeout time.Duration `json:"batchTimeout" default:"1s"`
	WriteTimeout time.Duration `json:"writeTimeout" default:"10s"`
	CloseTimeout time.Duration `json:"closeTimeout" default:"5s"`
}

func (c *Config) ApplyDefaults() error {
	return tag.ApplyDefaults(c)
}

func (c *Config) balancer() kafka.Balancer {
	switch c.Balancer {
	case BalancerHash:
		return &kafka.Hash{}
	case BalancerRoundRobin:
		return &kafka.RoundRobin{}
	default:
		return &kafka.LeastBytes{}
	}
}
