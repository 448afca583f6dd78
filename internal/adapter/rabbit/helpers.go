package rabbit

import (
	"context"
	"errors"
	"time"

	"github.com/Temutjin2k/rideshare-ledger/pkg/rabbit"
)

// isRecoverableError returns true if the failed publish is worth another attempt
func isRecoverableError(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, rabbit.ErrClosed)
}

func retry(ctx context.Context, n int, sleep time.Duration, fn func() error) error {
	var err error
	for range n {
		if err = fn(); err == nil || !isRecoverableError(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
	return err
}
