package wrap

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLogCtxMerges(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithLogCtx(ctx, LogCtx{Action: "buy_tokens", UserID: "u1"})

	lc, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, LogCtx{Action: "buy_tokens", UserID: "u1", RequestID: "req-1"}, lc)
	assert.Equal(t, "req-1", GetRequestID(ctx))
}

func TestErrorCarriesLogCtx(t *testing.T) {
	base := errors.New("boom")
	ctx := WithRideID(context.Background(), "ride_1")

	err := Error(ctx, fmt.Errorf("op: %w", base))
	require.ErrorIs(t, err, base)
	assert.Equal(t, "op: boom", err.Error())

	out := ErrorCtx(context.Background(), err)
	lc, ok := FromContext(out)
	require.True(t, ok)
	assert.Equal(t, "ride_1", lc.RideID)
}

func TestErrorRewrapDoesNotLoop(t *testing.T) {
	ctx := WithAction(context.Background(), "pay")
	inner := Error(ctx, errors.New("inner"))
	outer := Error(ctx, fmt.Errorf("outer: %w", inner))

	assert.Equal(t, "outer: inner", outer.Error())
	assert.Same(t, inner, Error(ctx, inner))
	assert.Nil(t, Error(ctx, nil))
}
