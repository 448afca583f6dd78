package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
	wrap "github.com/Temutjin2k/rideshare-ledger/pkg/logger/wrapper"
	ws "github.com/Temutjin2k/rideshare-ledger/pkg/wsHub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NotificationHub pushes notifications to the websocket connections of their recipient.
type NotificationHub struct {
	connections *ws.ConnectionHub
}

func NewNotificationHub(connHub *ws.ConnectionHub) *NotificationHub {
	return &NotificationHub{
		connections: connHub,
	}
}

// Notify sends n to every live connection of n.UserID. Offline users are not an error:
// the notification log keeps the message.
func (h *NotificationHub) Notify(ctx context.Context, n models.Notification) error {
	const op = "NotificationHub.Notify"

	msg := models.NotificationMessage{
		Type:      models.NotificationMessageType,
		UserID:    n.UserID,
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
	}

	if err := h.connections.SendTo(n.UserID, msg); err != nil {
		if errors.Is(err, ws.ErrConnIsNotFound) {
			return nil
		}
		return wrap.Error(wrap.WithUserID(ctx, n.UserID), fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

type Stream struct {
	connections  *ws.ConnectionHub
	notes        NotificationReader
	pingInterval time.Duration
	l            logger.Logger
}

type NotificationReader interface {
	Notifications(userID string) []string
}

func NewStream(connHub *ws.ConnectionHub, notes NotificationReader, pingInterval time.Duration, l logger.Logger) *Stream {
	return &Stream{
		connections:  connHub,
		notes:        notes,
		pingInterval: pingInterval,
		l:            l,
	}
}

// HandleNotifications godoc
// @Summary      Live notification stream
// @Description  Upgrades to a websocket. The server first sends the stored backlog, then every new notification for the user.
// @Tags         notifications
// @Param        user_id path string true "Identity"
// @Success      101
// @Failure      403 {object} map[string]interface{}
// @Router       /ws/notifications/{user_id} [get]
func (h *Stream) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "ws_notifications", UserID: userID})

	// an authenticated caller may only subscribe to their own stream
	if caller := models.CallerFromContext(ctx); !caller.IsAnonymous() && caller.String() != userID {
		h.l.Warn(ctx, "caller tried to subscribe to another user's notifications", "caller", caller.String())
		errorResponse(w, http.StatusForbidden, "you can only subscribe to your own notifications")
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		h.l.Warn(ctx, "failed to upgrade connection", "error", err.Error())
		return
	}

	// r.Context() ends with the handler; the connection lives until the peer leaves
	conn := ws.NewConn(context.WithoutCancel(ctx), userID, wsConn)
	if err := h.connections.Add(conn); err != nil {
		h.l.Error(ctx, "failed to register connection", err)
		_ = conn.Close()
		return
	}
	defer func() {
		if err := h.connections.Delete(conn); err != nil && !errors.Is(err, ws.ErrConnIsNotFound) {
			h.l.Warn(ctx, "failed to remove connection", "error", err.Error())
		}
	}()

	h.l.Info(ctx, "websocket connected")

	backlog := h.notes.Notifications(userID)
	if err := conn.Send(envelope{"type": "backlog", "user_id": userID, "notifications": backlog}); err != nil {
		h.l.Warn(ctx, "failed to send backlog", "error", err.Error())
		return
	}

	go conn.KeepAlive(h.pingInterval)

	// клиент ничего не отправляет, читаем только чтобы заметить закрытие
	if err := conn.Listen(nil); err != nil && !isNormalClose(err) {
		h.l.Debug(ctx, "websocket listen stopped", "reason", err.Error())
	}

	h.l.Info(ctx, "websocket disconnected")
}

func isNormalClose(err error) bool {
	return errors.Is(err, ws.ErrConnClosed) ||
		websocket.IsCloseError(errors.Unwrap(err), websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
