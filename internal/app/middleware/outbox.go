package middleware

import (
	"context"

	"concierge/internal/app/commands"
	"concierge/internal/app/outbox"
)

// OutboxFlush gives each plan command its own outbox batch and commits it once
// the handler succeeded. A failed command drops its batch when the box buffers.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	discarder, _ := box.(outbox.Discarder)
	return func(next commands.Bus) commands.Bus {
		return commands.BusFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			ctx = outbox.WithBatch(ctx)
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				if discarder != nil {
					_ = discarder.Discard(ctx)
				}
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
