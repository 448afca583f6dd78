package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
	wrap "github.com/Temutjin2k/rideshare-ledger/pkg/logger/wrapper"
)

type recordingWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestLedgerPublisher_PublishLedgerEvent(t *testing.T) {
	w := &recordingWriter{}
	p := NewLedgerPublisherWithWriter(w, "ledger-events")

	event := models.LedgerEvent{
		Type:         types.EventTokensTransferred,
		From:         "a",
		To:           "b",
		Amount:       7,
		IssuedSupply: 100,
		OccurredAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	ctx := wrap.WithRequestID(context.Background(), "req-1")

	require.NoError(t, p.PublishLedgerEvent(ctx, event))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "b", string(msg.Key))

	var got models.LedgerEvent
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, event, got)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, string(types.EventTokensTransferred), headers["event_type"])
	assert.Equal(t, "req-1", headers["request_id"])
}

func TestLedgerPublisher_WriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := NewLedgerPublisherWithWriter(&recordingWriter{err: boom}, "ledger-events")

	err := p.PublishLedgerEvent(context.Background(), models.LedgerEvent{Type: types.EventTokensMinted, To: "a", Amount: 1})
	assert.ErrorIs(t, err, boom)
}

func TestLedgerPublisher_Close(t *testing.T) {
	w := &recordingWriter{}
	p := NewLedgerPublisherWithWriter(w, "t")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
