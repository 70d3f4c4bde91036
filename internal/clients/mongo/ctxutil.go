package mongo

import (
	"context"
	"time"
)

// OpTimeout bounds a single KV read or write
const OpTimeout = 5 * time.Second

func noop() {}

// WithRepoTimeout bounds ctx by d unless ctx is already done or already
// expires within d, in which case ctx comes back untouched with a no-op
// cancel. Either way the cancel func can be deferred unconditionally.
func WithRepoTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if ctx.Err() != nil {
		return ctx, noop
	}
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) <= d {
		return ctx, noop
	}
	return context.WithTimeout(ctx, d)
}
