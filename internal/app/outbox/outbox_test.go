package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"concierge/internal/domain/shared/events"
)

type sampleEvent struct {
	events.BaseEvent
	Value int `json:"value"`
}

type sliceOutbox struct {
	records []EventRecord
	err     error
}

func (s *sliceOutbox) Add(_ context.Context, r EventRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, r)
	return nil
}

func (s *sliceOutbox) Flush(context.Context) error { return nil }

func TestRecordDomainEvents(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	box := &sliceOutbox{}
	enc := JSONEventEncoder{IDGenerator: func() string { return "evt-1" }, Headers: map[string]string{"x-request-id": "r-1"}}
	evs := []events.DomainEvent{sampleEvent{BaseEvent: events.BaseEvent{Name: "concierge.sample", Aggregate: "agg", Time: now}, Value: 7}}

	if err := RecordDomainEvents(context.Background(), box, enc, evs); err != nil {
		t.Fatalf("RecordDomainEvents: %v", err)
	}
	if len(box.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(box.records))
	}
	rec := box.records[0]
	if rec.ID != "evt-1" || rec.Name != "concierge.sample" || rec.Aggregate != "agg" || !rec.OccurredAt.Equal(now) {
		t.Fatalf("unexpected record %#v", rec)
	}
	if rec.Headers["x-request-id"] != "r-1" {
		t.Fatalf("headers not copied: %v", rec.Headers)
	}
	var payload map[string]any
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload["value"].(float64) != 7 {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestRecordDomainEventsPropagatesAddError(t *testing.T) {
	box := &sliceOutbox{err: errors.New("full")}
	evs := []events.DomainEvent{sampleEvent{BaseEvent: events.BaseEvent{Name: "x"}}}
	if err := RecordDomainEvents(context.Background(), box, nil, evs); err == nil {
		t.Fatal("expected error")
	}
	if err := RecordDomainEvents(context.Background(), nil, nil, evs); err != nil {
		t.Fatalf("nil outbox must be a no-op, got %v", err)
	}
}

type keyedEvent struct {
	events.BaseEvent
	BookingID string `json:"booking_id"`
}

func (e keyedEvent) PartitionKey() string { return e.BookingID }

func TestEncoderUsesPartitionKey(t *testing.T) {
	enc := JSONEventEncoder{}
	keyed, err := enc.Encode(keyedEvent{BaseEvent: events.NewBase("concierge.x", "plan-1", time.Now()), BookingID: "b-9"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if keyed.Key != "b-9" || keyed.PartitionKey() != "b-9" {
		t.Fatalf("expected booking key, got %q", keyed.Key)
	}
	plain, err := enc.Encode(sampleEvent{BaseEvent: events.NewBase("concierge.y", "agg", time.Now())})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if plain.Key != "" || plain.PartitionKey() != "agg" {
		t.Fatalf("expected aggregate fallback, got key=%q", plain.Key)
	}
}
