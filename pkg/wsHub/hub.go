package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
	wrap "github.com/Temutjin2k/rideshare-ledger/pkg/logger/wrapper"
)

var (
	ErrEmptyConn      = errors.New("connection is empty")
	ErrConnIsNotFound = errors.New("connection not found")
)

// ConnectionHub хранит и управляет всеми активными WebSocket соединениями.
// У одного пользователя может быть несколько соединений (вкладки, устройства).
type ConnectionHub struct {
	clients map[string]map[*Conn]struct{}
	l       logger.Logger
	mu      sync.RWMutex
	// OnChange, если задан, получает текущее число соединений после Add/Delete
	OnChange func(total int)
}

func NewConnHub(l logger.Logger) *ConnectionHub {
	return &ConnectionHub{
		clients: make(map[string]map[*Conn]struct{}),
		l:       l,
	}
}

// Add добавляет новое соединение в хаб.
func (h *ConnectionHub) Add(newConn *Conn) error {
	if newConn == nil {
		return ErrEmptyConn
	}

	h.mu.Lock()
	set, ok := h.clients[newConn.entityID]
	if !ok {
		set = make(map[*Conn]struct{})
		h.clients[newConn.entityID] = set
	}
	set[newConn] = struct{}{}
	total := h.countLocked()
	h.mu.Unlock()

	h.changed(total)
	return nil
}

// Delete удаляет и закрывает соединение
func (h *ConnectionHub) Delete(conn *Conn) error {
	if conn == nil {
		return ErrEmptyConn
	}

	ctx := wrap.WithAction(context.Background(), "ws_connection_delete")

	h.mu.Lock()
	set, ok := h.clients[conn.entityID]
	if ok {
		_, ok = set[conn]
	}
	if !ok {
		h.mu.Unlock()
		return ErrConnIsNotFound
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(h.clients, conn.entityID)
	}
	total := h.countLocked()
	h.mu.Unlock()

	// закрываем вне локов
	if err := conn.Close(); err != nil {
		h.l.Warn(ctx,
			"failed to close conn",
			"entity_ID", conn.entityID,
			"err", err.Error(),
		)
	}

	h.changed(total)
	return nil
}

// SendTo отправляет сообщение во все соединения клиента.
// Возвращает ErrConnIsNotFound, если у клиента нет соединений,
// и ошибку отправки, только если ни одно соединение не приняло сообщение.
func (h *ConnectionHub) SendTo(id string, msg any) error {
	conns := h.conns(id)
	if len(conns) == 0 {
		return ErrConnIsNotFound
	}

	var errs []error
	for _, conn := range conns {
		if err := conn.Send(msg); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == len(conns) {
		return errors.Join(errs...)
	}
	return nil
}

// Close закрывает каждое websocket соединение
func (h *ConnectionHub) Close() {
	ctx := wrap.WithAction(context.Background(), "hub_close")

	// копируем клиентов под локом
	h.mu.Lock()
	clients := make([]*Conn, 0, len(h.clients))
	for _, set := range h.clients {
		for conn := range set {
			clients = append(clients, conn)
		}
	}
	h.clients = make(map[string]map[*Conn]struct{})
	h.mu.Unlock()

	// закрываем вне локов
	for _, conn := range clients {
		_ = conn.Close()
	}
	h.changed(0)

	h.l.Info(ctx, "all websocket connections closed gracefully", "closed", len(clients))
}

// Count возвращает общее число соединений
func (h *ConnectionHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.countLocked()
}

// Connected сообщает, есть ли у клиента хотя бы одно соединение
func (h *ConnectionHub) Connected(id string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[id]) > 0
}

func (h *ConnectionHub) conns(id string) []*Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set := h.clients[id]
	out := make([]*Conn, 0, len(set))
	for conn := range set {
		out = append(out, conn)
	}
	return out
}

func (h *ConnectionHub) countLocked() int {
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

func (h *ConnectionHub) changed(total int) {
	if h.OnChange != nil {
		h.OnChange(total)
	}
}
