package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
)

// dial starts a server that registers every upgraded socket in hub under id
// and returns the client side.
func dial(t *testing.T, hub *ConnectionHub, id string) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConn(context.Background(), id, raw)
		_ = hub.Add(conn)
		defer hub.Delete(conn)
		_ = conn.Listen(nil)
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	require.Eventually(t, func() bool { return hub.Connected(id) }, time.Second, 10*time.Millisecond)
	return client
}

func TestConnectionHub_SendTo(t *testing.T) {
	hub := NewConnHub(logger.Nop())

	first := dial(t, hub, "alice")
	second := dial(t, hub, "alice")
	require.Eventually(t, func() bool { return hub.Count() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.SendTo("alice", map[string]string{"message": "hi"}))

	for _, c := range []*websocket.Conn{first, second} {
		var got map[string]string
		require.NoError(t, c.SetReadDeadline(time.Now().Add(time.Second)))
		require.NoError(t, c.ReadJSON(&got))
		assert.Equal(t, "hi", got["message"])
	}

	assert.ErrorIs(t, hub.SendTo("bob", "x"), ErrConnIsNotFound)
}

func TestConnectionHub_DeleteOnDisconnect(t *testing.T) {
	var total atomic.Int64
	hub := NewConnHub(logger.Nop())
	hub.OnChange = func(n int) { total.Store(int64(n)) }

	client := dial(t, hub, "alice")
	require.Eventually(t, func() bool { return total.Load() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, client.Close())

	assert.Eventually(t, func() bool { return !hub.Connected("alice") }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return total.Load() == 0 }, time.Second, 10*time.Millisecond)
}

func TestConnectionHub_Close(t *testing.T) {
	hub := NewConnHub(logger.Nop())
	client := dial(t, hub, "alice")

	hub.Close()

	assert.Zero(t, hub.Count())
	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := client.ReadMessage()
	assert.Error(t, err)
}

func TestConnectionHub_Errors(t *testing.T) {
	hub := NewConnHub(logger.Nop())

	assert.ErrorIs(t, hub.Add(nil), ErrEmptyConn)
	assert.ErrorIs(t, hub.Delete(nil), ErrEmptyConn)
	assert.ErrorIs(t, hub.Delete(NewConn(context.Background(), "ghost", nil)), ErrConnIsNotFound)
}

func TestConn_CloseIsIdempotent(t *testing.T) {
	c := NewConn(context.Background(), "alice", nil)

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
	assert.Error(t, c.Send("x"))

	select {
	case <-c.Done():
	default:
		t.Fatal("done channel not closed")
	}
}
