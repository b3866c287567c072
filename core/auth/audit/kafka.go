package audit

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/kochabx/passport/log"
)

// MessageWriter *kafka.Writer 满足此接口
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaSink 以 JSON 写入 Kafka，key 为 uid，同一用户的事件落在同一分区
type KafkaSink struct {
	writer MessageWriter
	logger *log.Logger
}

func NewKafkaSink(w MessageWriter, logger *log.Logger) *KafkaSink {
	if logger == nil {
		logger = log.G
	}
	return &KafkaSink{writer: w, logger: logger}
}

func (s *KafkaSink) Emit(ctx context.Context, e Event) {
	value, err := json.Marshal(e)
	if err != nil {
		s.logger.Error().Err(err).Str("type", e.Type).Msg("audit event marshal failed")
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(e.UID, 10)),
		Value: value,
		Time:  e.Time,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		s.logger.Warn().Err(err).Str("type", e.Type).Msg("audit event write failed")
	}
}
