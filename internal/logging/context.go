package logging

import (
	"context"
	"time"
)

// DetachContext returns a context that keeps the values of parent but is
// never cancelled with it. History writes use it so that a finished or
// timed out request still gets recorded.
func DetachContext(parent context.Context) context.Context {
	return context.WithoutCancel(parent)
}

// DetachContextWithTimeout detaches from parent and applies its own
// deadline.
//
//	recCtx, cancel := logging.DetachContextWithTimeout(ctx, 2*time.Second)
//	defer cancel()
//	err := store.Record(recCtx, interp)
func DetachContextWithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(DetachContext(parent), timeout)
}
