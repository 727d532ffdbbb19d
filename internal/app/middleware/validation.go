package middleware

import (
	"context"

	"concierge/internal/app/commands"
	"concierge/internal/app/queries"
)

// Validator rejects a message before any handler or idempotency lookup runs.
type Validator interface {
	Validate(ctx context.Context, message any) error
}

type ValidatorFunc func(ctx context.Context, message any) error

func (f ValidatorFunc) Validate(ctx context.Context, message any) error { return f(ctx, message) }

// Validators runs vs in order and stops at the first failure.
type Validators []Validator

func (vs Validators) Validate(ctx context.Context, message any) error {
	for _, v := range vs {
		if err := v.Validate(ctx, message); err != nil {
			return err
		}
	}
	return nil
}

func Validation(v Validator) CommandMiddleware {
	mustValidator(v)
	return func(next commands.Bus) commands.Bus {
		return commands.BusFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := v.Validate(ctx, cmd); err != nil {
				return nil, err
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}

func QueryValidation(v Validator) QueryMiddleware {
	mustValidator(v)
	return func(next queries.Bus) queries.Bus {
		return queries.BusFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := v.Validate(ctx, q); err != nil {
				return nil, err
			}
			return next.Ask(ctx, q)
		})
	}
}

func mustValidator(v Validator) {
	if v == nil {
		panic("middleware: validator required")
	}
}
