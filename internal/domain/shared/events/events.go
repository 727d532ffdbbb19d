// Package events carries the domain events raised by concierge aggregates.
package events

import "time"

type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// Keyed events choose the broker partition key. Events of one booking share
// a key so consumers see them in order.
type Keyed interface {
	PartitionKey() string
}

type BaseEvent struct {
	Name      string    `json:"-"`
	Aggregate string    `json:"-"`
	Time      time.Time `json:"occurred_at"`
}

func NewBase(name, aggregate string, at time.Time) BaseEvent {
	return BaseEvent{Name: name, Aggregate: aggregate, Time: at.UTC()}
}

func (e BaseEvent) EventName() string     { return e.Name }
func (e BaseEvent) AggregateID() string   { return e.Aggregate }
func (e BaseEvent) OccurredAt() time.Time { return e.Time }

// EventRecorder is embedded by aggregates that raise events.
type EventRecorder struct {
	pending []DomainEvent
}

func (r *EventRecorder) Record(event DomainEvent) {
	if event != nil {
		r.pending = append(r.pending, event)
	}
}

// PendingEvents returns a copy of the recorded events without clearing them.
func (r *EventRecorder) PendingEvents() []DomainEvent {
	return append([]DomainEvent(nil), r.pending...)
}

func (r *EventRecorder) ClearEvents() {
	r.pending = nil
}

// Drain hands over the recorded events and resets the recorder.
func (r *EventRecorder) Drain() []DomainEvent {
	out := r.pending
	r.pending = nil
	return out
}
