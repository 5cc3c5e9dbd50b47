package stream

import (
	"context"
	"encoding/json"
	"time"

	"openbook/internal/pkg/config"
	"openbook/internal/pkg/errs"
	"openbook/internal/usecase/shared"

	"github.com/segmentio/kafka-go"
)

// KafkaAuditPublisher mirrors committed audit rows onto a Kafka topic.
// Messages are keyed by booking id so every event for one booking lands
// on the same partition, in order.
type KafkaAuditPublisher struct {
	writer *kafka.Writer
}

func NewKafkaAuditPublisher(cfg config.KafkaConfig) *KafkaAuditPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.AuditTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaAuditPublisher{writer: writer}
}

var _ shared.AuditPublisher = (*KafkaAuditPublisher)(nil)

func (p *KafkaAuditPublisher) Publish(ctx context.Context, events ...shared.AuditEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return errs.Wrap(err, "failed to encode audit event")
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(ev.BookingID.String()),
			Value: payload,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return errs.Wrap(err, "failed to write audit events")
	}
	return nil
}

func (p *KafkaAuditPublisher) Close() error {
	return p.writer.Close()
}
