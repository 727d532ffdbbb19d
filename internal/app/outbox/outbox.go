// Package outbox stages domain events next to the write that raised them so a
// background worker can publish them after the command succeeded.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"concierge/internal/domain/shared/events"
)

// EventRecord is a domain event serialized for later publication.
type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	// Key is the broker partition key; it defaults to Aggregate.
	Key     string
	Headers map[string]string
}

// PartitionKey returns Key, or Aggregate for records staged without one.
func (r EventRecord) PartitionKey() string {
	if r.Key != "" {
		return r.Key
	}
	return r.Aggregate
}

type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

// Discarder is implemented by outboxes that buffer records until Flush; a
// failed command drops its batch through it.
type Discarder interface {
	Discard(ctx context.Context) error
}

type batchKey struct{}

// WithBatch scopes records added under the returned context to one command.
func WithBatch(ctx context.Context) context.Context {
	return context.WithValue(ctx, batchKey{}, uuid.NewString())
}

// BatchID returns the batch set by WithBatch, or "" outside a command.
func BatchID(ctx context.Context) string {
	id, _ := ctx.Value(batchKey{}).(string)
	return id
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

type JSONEventEncoder struct {
	IDGenerator func() string
	// Headers are copied onto every record, e.g. a request id.
	Headers map[string]string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, fmt.Errorf("outbox: encode %s: %w", ev.EventName(), err)
	}
	newID := e.IDGenerator
	if newID == nil {
		newID = uuid.NewString
	}
	rec := EventRecord{
		ID:         newID(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt(),
		Aggregate:  ev.AggregateID(),
		Headers:    maps.Clone(e.Headers),
	}
	if rec.Headers == nil {
		rec.Headers = map[string]string{}
	}
	if k, ok := ev.(events.Keyed); ok {
		rec.Key = k.PartitionKey()
	}
	return rec, nil
}

// RecordDomainEvents stages evs in order. A nil box drops them silently.
func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, evs []events.DomainEvent) error {
	if box == nil {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, ev := range evs {
		rec, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
