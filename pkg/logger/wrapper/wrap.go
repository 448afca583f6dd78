package wrap

import (
	"context"
	"errors"
)

// Error wraps err with the current LogCtx from the context
func Error(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	c, _ := FromContext(ctx)

	// already wrapped somewhere down the stack: keep the chain, refresh the log context
	var e *errorWithLogCtx
	if errors.As(err, &e) {
		if c != (LogCtx{}) {
			e.logCtx = c
		}
		if e == err {
			return e
		}
	}

	return &errorWithLogCtx{
		err:    err,
		logCtx: c,
	}
}
