package plans

import (
	"errors"
	"testing"
	"time"

	"concierge/internal/domain/trip"
)

func TestNewPlanRecordsGeneratedEvent(t *testing.T) {
	resp := trip.AgentResponse{Success: true, Itinerary: make([]trip.DayPlan, 3)}
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	plan, err := NewPlan(NewPlanParams{ID: "p-1", BookingID: "b-1", Source: SourceRequest, Response: resp, Now: now})
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	evs := plan.PendingEvents()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evs))
	}
	ev, ok := evs[0].(PlanGenerated)
	if !ok {
		t.Fatalf("unexpected event type %T", evs[0])
	}
	if ev.EventName() != EventPlanGenerated || ev.AggregateID() != "p-1" || ev.Days != 3 || !ev.OccurredAt().Equal(now) {
		t.Fatalf("unexpected event %#v", ev)
	}
}

func TestNewPlanRejectsFailedResponse(t *testing.T) {
	_, err := NewPlan(NewPlanParams{ID: "p-1", BookingID: "b-1", Response: trip.Failure("boom")})
	if !errors.Is(err, ErrInvalidPlan) {
		t.Fatalf("expected ErrInvalidPlan, got %v", err)
	}
	_, err = NewPlan(NewPlanParams{ID: "p-1", Response: trip.AgentResponse{Success: true}})
	if !errors.Is(err, ErrInvalidPlan) {
		t.Fatalf("expected ErrInvalidPlan for missing booking, got %v", err)
	}
}
