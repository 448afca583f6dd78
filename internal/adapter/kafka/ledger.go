package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
	wrap "github.com/Temutjin2k/rideshare-ledger/pkg/logger/wrapper"
	"github.com/Temutjin2k/rideshare-ledger/pkg/metrics"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// LedgerPublisher streams ledger events keyed by the receiving identity,
// so every event for one wallet lands on the same partition.
type LedgerPublisher struct {
	writer MessageWriter
	topic  string
}

func NewLedgerPublisher(brokers []string, topic string) *LedgerPublisher {
	return NewLedgerPublisherWithWriter(&kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}, topic)
}

func NewLedgerPublisherWithWriter(w MessageWriter, topic string) *LedgerPublisher {
	return &LedgerPublisher{writer: w, topic: topic}
}

func (p *LedgerPublisher) PublishLedgerEvent(ctx context.Context, event models.LedgerEvent) error {
	const op = "LedgerPublisher.PublishLedgerEvent"
	ctx = wrap.WithAction(ctx, types.ActionKafkaPublishLedgerEvent)

	value, err := json.Marshal(event)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: failed to marshal event: %w", op, err))
	}

	msg := kafkago.Message{
		Key:   []byte(event.To),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if rid := wrap.GetRequestID(ctx); rid != "" {
		msg.Headers = append(msg.Headers, kafkago.Header{Key: "request_id", Value: []byte(rid)})
	}

	err = p.writer.WriteMessages(ctx, msg)
	metrics.RecordKafkaPublish(p.topic, err)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: failed to write message: %w", op, err))
	}

	return nil
}

func (p *LedgerPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
