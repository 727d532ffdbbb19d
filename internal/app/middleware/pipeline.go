// Package middleware holds the cross-cutting steps every plan command and
// query passes through: logging and metrics, validation, idempotent replay
// and the outbox commit.
package middleware

import (
	"concierge/internal/app/commands"
	"concierge/internal/app/queries"
)

type CommandMiddleware func(next commands.Bus) commands.Bus

type QueryMiddleware func(next queries.Bus) queries.Bus

// ChainCommands wraps base so that mws[0] sees a command first. Nil entries
// are skipped, which lets optional steps be wired conditionally.
func ChainCommands(base commands.Bus, mws ...CommandMiddleware) commands.Bus {
	return chain(base, mws)
}

func ChainQueries(base queries.Bus, mws ...QueryMiddleware) queries.Bus {
	return chain(base, mws)
}

func chain[B any, M ~func(B) B](base B, mws []M) B {
	for i := len(mws) - 1; i >= 0; i-- {
		if wrap := (func(B) B)(mws[i]); wrap != nil {
			base = wrap(base)
		}
	}
	return base
}
