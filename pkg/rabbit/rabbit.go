package rabbit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
	wrap "github.com/Temutjin2k/rideshare-ledger/pkg/logger/wrapper"
	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrClosed = errors.New("rabbitmq connection is closed")

type RabbitMQ struct {
	Conn     *amqp.Connection
	Channel  *amqp.Channel
	isClosed bool
	mu       sync.RWMutex
	dsn      string

	log logger.Logger
}

// New creates rabbitMQ client
func New(ctx context.Context, dsn string, log logger.Logger) (*RabbitMQ, error) {
	r := &RabbitMQ{
		dsn: dsn,
		log: log,
	}

	if err := r.connect(ctx); err != nil {
		return nil, err
	}

	log.Info(wrap.WithAction(ctx, types.ActionRabbitMQConnected), "connected to rabbitMQ")

	return r, nil
}

// connect dials, opens a channel and starts the close monitor. Caller holds mu or owns r exclusively.
func (r *RabbitMQ) connect(ctx context.Context) error {
	conn, err := amqp.DialConfig(r.dsn, amqp.Config{
		Heartbeat: 10 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	// Create a channel
	channel, err := conn.Channel()
	if err != nil {
		conn.Close() // Close connection if channel creation fails
		return fmt.Errorf("failed to open a channel: %w", err)
	}

	connCloseChan := conn.NotifyClose(make(chan *amqp.Error, 1))
	chCloseChan := channel.NotifyClose(make(chan *amqp.Error, 1))

	r.Conn = conn
	r.Channel = channel
	r.isClosed = false

	go r.monitorConnection(ctx, conn, connCloseChan, chCloseChan)

	return nil
}

// monitorConnection marks the client closed once either the connection or the channel goes away
func (r *RabbitMQ) monitorConnection(ctx context.Context, conn *amqp.Connection, connClose, chClose <-chan *amqp.Error) {
	var closeErr *amqp.Error
	select {
	case closeErr = <-connClose:
	case closeErr = <-chClose:
	}

	r.mu.Lock()
	// a reconnect may already have replaced the connection
	if r.Conn == conn {
		r.isClosed = true
	}
	r.mu.Unlock()

	ctx = wrap.WithAction(context.WithoutCancel(ctx), types.ActionRabbitConnectionClosed)

	if closeErr != nil {
		r.log.Error(ctx, "RabbitMQ connection closed with error", closeErr)
	} else {
		r.log.Debug(ctx, "RabbitMQ connection closed gracefully")
	}
}

// IsConnectionClosed checks if the connection is closed
func (r *RabbitMQ) IsConnectionClosed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.Conn == nil || r.Channel == nil {
		return true
	}
	return r.isClosed || r.Conn.IsClosed() || r.Channel.IsClosed()
}

// Publish sends a message through the shared channel
func (r *RabbitMQ) Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.Channel == nil {
		return ErrClosed
	}
	return r.Channel.PublishWithContext(ctx, exchange, key, false, false, msg)
}

// DeclareTopicExchange declares a durable topic exchange
func (r *RabbitMQ) DeclareTopicExchange(name string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.Channel == nil {
		return ErrClosed
	}
	return r.Channel.ExchangeDeclare(name, amqp.ExchangeTopic, true, false, false, false, nil)
}

// ConsumeTopic binds a server-named exclusive queue to exchange with pattern and starts consuming
func (r *RabbitMQ) ConsumeTopic(exchange, pattern string) (<-chan amqp.Delivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.Channel == nil {
		return nil, ErrClosed
	}

	q, err := r.Channel.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := r.Channel.QueueBind(q.Name, pattern, exchange, false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	return r.Channel.Consume(q.Name, "", false, true, false, false, nil)
}

// Close closes rabbit connection
func (r *RabbitMQ) Close(ctx context.Context) error {
	ctx = wrap.WithAction(ctx, types.ActionRabbitConnectionClosing)

	r.log.Debug(ctx, "closing channel")

	// quick check under lock
	r.mu.Lock()
	if r.Conn == nil {
		r.mu.Unlock()
		return nil
	}
	// mark closed early to avoid races with concurrent Close calls
	r.isClosed = true
	ch := r.Channel
	conn := r.Conn
	// Clear references so other goroutines know it's closed
	r.Channel = nil
	r.Conn = nil
	r.dsn = ""
	r.mu.Unlock()

	// Close channel first (if any)
	if ch != nil {
		if err := closeWithCtxFunc(ctx, ch.Close); err != nil {
			// If context cancelled, log it; if Close itself failed, log and continue to try closing conn
			if ctx.Err() != nil {
				r.log.Debug(ctx, "context cancelled while closing channel")
			} else {
				r.log.Error(ctx, "error closing channel", err)
			}
		}
	}

	r.log.Debug(ctx, "closing RabbitMQ connection")

	if err := closeWithCtxFunc(ctx, conn.Close); err != nil {
		if ctx.Err() != nil {
			r.log.Debug(ctx, "context cancelled while closing connection")
			// prefer to return context error
			return ctx.Err()
		}
		if !errors.Is(err, amqp.ErrClosed) {
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}

	r.log.Info(wrap.WithAction(ctx, types.ActionRabbitConnectionClosed), "rabbitMQ closed")

	return nil
}

// helper to close a resource with context cancellation safely
func closeWithCtxFunc(ctx context.Context, fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		// Return context error; goroutine can still write into the buffered channel and exit.
		return ctx.Err()
	}
}

func (r *RabbitMQ) Reconnect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dsn == "" {
		return fmt.Errorf("dsn is empty: can't reconnect")
	}

	if !r.isClosed && r.Conn != nil && !r.Conn.IsClosed() && r.Channel != nil && !r.Channel.IsClosed() {
		return nil
	}

	var err error
	for i := range 5 {
		if err = r.connect(ctx); err == nil {
			break
		}

		wait := time.Duration(i+1) * 2 * time.Second
		r.log.Debug(ctx, fmt.Sprintf("reconnect attempt %d failed, retrying in %v", i+1, wait))

		select {
		case <-ctx.Done():
			r.log.Debug(ctx, "graceful shutdown, stopping reconnect attempts")
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	if err != nil {
		return fmt.Errorf("failed to reconnect to RabbitMQ: %w", err)
	}

	r.log.Info(wrap.WithAction(ctx, types.ActionRabbitReconnected), "RabbitMQ reconnected successfully")

	return nil
}

func (r *RabbitMQ) EnsureConnection(ctx context.Context) error {
	if r.IsConnectionClosed() {
		r.log.Warn(ctx, "rabbit connection closed, reconnecting...")
		if err := r.Reconnect(ctx); err != nil {
			return fmt.Errorf("failed to reconnect to RabbitMQ: %w", err)
		}
	}
	return nil
}
