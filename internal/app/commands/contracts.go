// Package commands carries plan-changing requests, generating a plan or
// exporting the latest one, from the HTTP API and the booking-status consumer
// to their handlers.
package commands

import (
	"context"
	"errors"
	"fmt"
)

// Command is keyed by the name its handler was registered under, e.g. "plans.generate".
type Command interface {
	Key() string
}

type Handler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

type HandlerFunc[C Command, R any] func(ctx context.Context, cmd C) (R, error)

func (f HandlerFunc[C, R]) Handle(ctx context.Context, cmd C) (R, error) { return f(ctx, cmd) }

type Bus interface {
	Dispatch(ctx context.Context, cmd Command) (any, error)
}

// BusFunc lets middleware wrap a bus with a closure.
type BusFunc func(ctx context.Context, cmd Command) (any, error)

func (f BusFunc) Dispatch(ctx context.Context, cmd Command) (any, error) { return f(ctx, cmd) }

var (
	ErrHandlerNotFound = errors.New("commands: handler not found")
	ErrDuplicateKey    = errors.New("commands: handler already registered")
	ErrInvalidCommand  = errors.New("commands: invalid command for handler")
	ErrResultType      = errors.New("commands: result type mismatch")
	ErrNilBus          = errors.New("commands: nil bus")
)

// Dispatch runs cmd and narrows the handler's result to R. A handler that
// returns nil with no error yields the zero R.
func Dispatch[C Command, R any](ctx context.Context, bus Bus, cmd C) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	res, err := bus.Dispatch(ctx, cmd)
	if err != nil || res == nil {
		return zero, err
	}
	if value, ok := res.(R); ok {
		return value, nil
	}
	return zero, fmt.Errorf("%w: %s returned %T", ErrResultType, cmd.Key(), res)
}
