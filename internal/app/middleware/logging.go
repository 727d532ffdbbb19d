package middleware

import (
	"context"
	"log/slog"
	"time"

	"concierge/internal/app/commands"
	"concierge/internal/app/queries"
)

// Observer is told about every message that crosses a bus.
type Observer interface {
	ObserveMessage(kind, key string, err error, elapsed time.Duration)
}

func CommandLogging(logger *slog.Logger, obs Observer) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		return commands.BusFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			res, err := next.Dispatch(ctx, cmd)
			report(ctx, logger, obs, "command", cmd.Key(), err, time.Since(start))
			return res, err
		})
	}
}

func QueryLogging(logger *slog.Logger, obs Observer) QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		return queries.BusFunc(func(ctx context.Context, q queries.Query) (any, error) {
			start := time.Now()
			res, err := next.Ask(ctx, q)
			report(ctx, logger, obs, "query", q.Key(), err, time.Since(start))
			return res, err
		})
	}
}

func report(ctx context.Context, logger *slog.Logger, obs Observer, kind, key string, err error, elapsed time.Duration) {
	if obs != nil {
		obs.ObserveMessage(kind, key, err, elapsed)
	}
	if logger == nil {
		return
	}
	if err != nil {
		logger.WarnContext(ctx, kind+" failed", "key", key, "duration", elapsed, "error", err)
		return
	}
	logger.DebugContext(ctx, kind+" handled", "key", key, "duration", elapsed)
}
