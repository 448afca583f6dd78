package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
	wrap "github.com/Temutjin2k/rideshare-ledger/pkg/logger/wrapper"
	"github.com/Temutjin2k/rideshare-ledger/pkg/metrics"
	"github.com/Temutjin2k/rideshare-ledger/pkg/rabbit"
)

const (
	NotificationExchange = "notification_topic"

	notificationKeyPattern = "notification.*"
)

func NotificationKey(userID string) string {
	return "notification." + userID
}

type NotificationBroker struct {
	client   *rabbit.RabbitMQ
	exchange string

	l logger.Logger
}

func NewNotificationBroker(client *rabbit.RabbitMQ, log logger.Logger) (*NotificationBroker, error) {
	if err := client.DeclareTopicExchange(NotificationExchange); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", NotificationExchange, err)
	}

	return &NotificationBroker{
		client:   client,
		exchange: NotificationExchange,
		l:        log,
	}, nil
}

// Notify публикует уведомление в exchange 'notification_topic' с ключом 'notification.{user_id}'.
func (b *NotificationBroker) Notify(ctx context.Context, n models.Notification) error {
	const op = "NotificationBroker.Notify"
	ctx = wrap.WithAction(ctx, types.ActionRabbitPublishNotification)

	// Проверяем и восстанавливаем соединение
	if err := b.client.EnsureConnection(ctx); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: ensure connection: %w", op, err))
	}

	body, err := json.Marshal(n)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: failed to marshal message: %w", op, err))
	}

	err = retry(ctx, 3, 500*time.Millisecond, func() error {
		return b.client.Publish(ctx, b.exchange, NotificationKey(n.UserID), amqp091.Publishing{
			ContentType:   "application/json",
			CorrelationId: wrap.GetRequestID(ctx),
			Body:          body,
			Timestamp:     time.Now(),
		})
	})
	metrics.RecordRabbitMQPublish(b.exchange, err)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: failed to publish with context: %w", op, err))
	}

	return nil
}

// NotificationHandler receives every notification published by any instance.
type NotificationHandler func(ctx context.Context, n models.Notification) error

// ConsumeNotifications reads the exchange through an exclusive queue until ctx is done.
func (b *NotificationBroker) ConsumeNotifications(ctx context.Context, handler NotificationHandler) error {
	ctx = wrap.WithAction(ctx, types.ActionRabbitConsumeNotifications)

	// Основной цикл потребителя
	for {
		if ctx.Err() != nil {
			b.l.Debug(ctx, "consume notifications stopped by context")
			return nil
		}

		// Проверяем и восстанавливаем соединение
		if err := b.client.EnsureConnection(ctx); err != nil {
			b.l.Error(ctx, "ensure connection failed", err)
			if !sleepCtx(ctx, 2*time.Second) {
				return nil
			}
			continue
		}

		msgs, err := b.client.ConsumeTopic(b.exchange, notificationKeyPattern)
		if err != nil {
			b.l.Error(ctx, "consume failed", err)
			if !sleepCtx(ctx, 2*time.Second) {
				return nil
			}
			continue
		}

		b.l.Info(ctx, "start consuming notifications", "exchange", b.exchange)

	consumeLoop:
		for {
			select {
			case <-ctx.Done():
				b.l.Info(ctx, "notification consumer shutting down")
				return nil

			case msg, ok := <-msgs:
				if !ok {
					b.l.Warn(ctx, "message channel closed, reconnecting...")
					break consumeLoop
				}

				var n models.Notification
				if err := json.Unmarshal(msg.Body, &n); err != nil {
					b.l.Error(ctx, "failed to unmarshal notification", err)
					_ = msg.Nack(false, false)
					continue
				}

				ctxx := wrap.WithLogCtx(ctx, wrap.LogCtx{UserID: n.UserID, RequestID: msg.CorrelationId})
				if err := handler(ctxx, n); err != nil {
					b.l.Warn(wrap.ErrorCtx(ctxx, err), "failed to handle notification", "error", err.Error())
				}

				// live delivery is best effort: the log stays authoritative
				if err := msg.Ack(false); err != nil {
					b.l.Error(ctx, "failed to ack message", err)
				}
			}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
