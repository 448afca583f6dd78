package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var ErrConnClosed = errors.New("connection closed")

const writeWait = 3 * time.Second

// Conn serializes writes to a single websocket. gorilla allows one concurrent writer.
type Conn struct {
	conn     *websocket.Conn
	entityID string
	doneCtx  context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
}

func NewConn(ctx context.Context, entityID string, conn *websocket.Conn) *Conn {
	ctx, cancel := context.WithCancel(ctx)

	return &Conn{
		conn:     conn,
		entityID: entityID,
		doneCtx:  ctx,
		cancel:   cancel,
	}
}

func (c *Conn) EntityID() string {
	return c.entityID
}

// Done is closed once the connection is closed.
func (c *Conn) Done() <-chan struct{} {
	return c.doneCtx.Done()
}

// Health pings the peer.
func (c *Conn) Health() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pingLocked()
}

func (c *Conn) pingLocked() error {
	if c.conn == nil {
		return errors.New("connection is nil")
	}

	select {
	case <-c.doneCtx.Done():
		return ErrConnClosed
	default:
	}

	if err := c.conn.WriteControl(
		websocket.PingMessage,
		[]byte("ping"),
		time.Now().Add(writeWait),
	); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	return nil
}

func (c *Conn) Send(msg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.doneCtx.Done():
		return ErrConnClosed
	default:
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	return c.conn.WriteJSON(msg)
}

// Listen reads frames until the peer goes away or the connection is closed.
// Only one goroutine may call Listen.
func (c *Conn) Listen(handler func(msg map[string]any) error) error {
	for {
		select {
		case <-c.doneCtx.Done():
			return ErrConnClosed
		default:
		}

		var msg map[string]any
		if err := c.conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("read failed: %w", err)
		}
		if handler == nil {
			continue
		}
		if err := handler(msg); err != nil {
			return fmt.Errorf("handler failed: %w", err)
		}
	}
}

// KeepAlive pings the peer every interval until the connection is closed or a ping fails.
func (c *Conn) KeepAlive(interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.doneCtx.Done():
			return
		case <-ticker.C:
			if err := c.Health(); err != nil {
				_ = c.Close()
				return
			}
		}
	}
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.doneCtx.Done():
		return nil
	default:
	}

	c.cancel()

	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
