// Package queries routes read-only requests, such as free-text questions and
// stored-plan lookups, to their handlers.
package queries

import (
	"context"
	"errors"
	"fmt"
)

// Query is keyed like a command, e.g. "plans.answer_query" or "plans.latest".
type Query interface {
	Key() string
}

type Handler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

type HandlerFunc[Q Query, R any] func(ctx context.Context, query Q) (R, error)

func (f HandlerFunc[Q, R]) Handle(ctx context.Context, query Q) (R, error) { return f(ctx, query) }

type Bus interface {
	Ask(ctx context.Context, query Query) (any, error)
}

// BusFunc lets middleware wrap a bus with a closure.
type BusFunc func(ctx context.Context, query Query) (any, error)

func (f BusFunc) Ask(ctx context.Context, query Query) (any, error) { return f(ctx, query) }

var (
	ErrHandlerNotFound = errors.New("queries: handler not found")
	ErrInvalidQuery    = errors.New("queries: invalid query for handler")
	ErrResultType      = errors.New("queries: result type mismatch")
	ErrNilBus          = errors.New("queries: nil bus")
)

// Ask sends query through bus and asserts the answer to R. A nil answer
// yields the zero R.
func Ask[Q Query, R any](ctx context.Context, bus Bus, query Q) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	res, err := bus.Ask(ctx, query)
	if err != nil || res == nil {
		return zero, err
	}
	value, ok := res.(R)
	if !ok {
		return zero, fmt.Errorf("%w: %s answered %T", ErrResultType, query.Key(), res)
	}
	return value, nil
}
