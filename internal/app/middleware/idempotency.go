package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"concierge/internal/app/commands"
)

// IdempotentCommand is implemented by commands that accept an Idempotency-Key.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	// ResultPrototype returns a pointer the stored payload is decoded into.
	ResultPrototype() any
}

// Replayable lets a result opt out of being stored, e.g. a degraded plan.
type Replayable interface {
	Replayable() bool
}

type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONResultCodec) Decode(data []byte, out any) error { return json.Unmarshal(data, out) }

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

// Idempotency replays the stored result of an earlier command with the same
// key. Keys are scoped by command key. Concurrent duplicates wait for the
// first attempt instead of generating twice. Errors and non-replayable
// results are not stored, so the caller may retry with the same key.
func Idempotency(store IdempotencyStore, codec ResultCodec) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	locks := newKeyLocks()
	return func(next commands.Bus) commands.Bus {
		return commands.BusFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return next.Dispatch(ctx, cmd)
			}
			key := cmd.Key() + ":" + idCmd.IdempotencyKey()
			unlock := locks.lock(key)
			defer unlock()

			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("idempotency lookup %s: %w", key, err)
			}
			if found {
				return decodeStored(rec, idCmd, codec)
			}

			result, err := next.Dispatch(ctx, cmd)
			if err != nil || result == nil {
				return result, err
			}
			if r, ok := result.(Replayable); ok && !r.Replayable() {
				return result, nil
			}
			payload, err := codec.Encode(result)
			if err != nil {
				return nil, err
			}
			if err := store.Save(ctx, IdempotencyRecord{Key: key, Payload: payload, OccurredAt: time.Now().UTC()}); err != nil {
				return nil, fmt.Errorf("idempotency save %s: %w", key, err)
			}
			return result, nil
		})
	}
}

func decodeStored(rec IdempotencyRecord, cmd IdempotentCommand, codec ResultCodec) (any, error) {
	out := cmd.ResultPrototype()
	if out == nil {
		return nil, errMissingPrototype
	}
	if len(rec.Payload) == 0 {
		return nil, nil
	}
	if err := codec.Decode(rec.Payload, out); err != nil {
		return nil, err
	}
	return out, nil
}

// keyLocks hands out one mutex per key and forgets it once nobody holds it.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*keyLock)}
}

func (k *keyLocks) lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyLocks) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
