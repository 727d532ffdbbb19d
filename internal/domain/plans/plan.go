package plans

import (
	"context"
	"errors"
	"strings"
	"time"

	"concierge/internal/domain/shared/events"
	"concierge/internal/domain/trip"
)

type PlanID string

// Source records which entry point produced a plan.
type Source string

const (
	SourceRequest       Source = "request"
	SourceBookingLookup Source = "booking"
	SourceChat          Source = "chat"
	SourceBookingEvent  Source = "booking_event"
)

var (
	ErrPlanNotFound = errors.New("plans: plan not found")
	ErrInvalidPlan  = errors.New("plans: invalid plan")
)

// Plan is a stored, successful AgentResponse for a booking.
type Plan struct {
	ID        PlanID
	BookingID trip.BookingID
	Source    Source
	Message   string
	Response  trip.AgentResponse
	CreatedAt time.Time

	events.EventRecorder
}

type NewPlanParams struct {
	ID        PlanID
	BookingID trip.BookingID
	Source    Source
	Message   string
	Response  trip.AgentResponse
	Now       time.Time
}

func NewPlan(p NewPlanParams) (*Plan, error) {
	if strings.TrimSpace(string(p.ID)) == "" || strings.TrimSpace(string(p.BookingID)) == "" {
		return nil, ErrInvalidPlan
	}
	if !p.Response.Success {
		return nil, ErrInvalidPlan
	}
	now := p.Now.UTC()
	if now.IsZero() {
		now = time.Now().UTC()
	}
	plan := &Plan{
		ID:        p.ID,
		BookingID: p.BookingID,
		Source:    p.Source,
		Message:   p.Message,
		Response:  p.Response,
		CreatedAt: now,
	}
	plan.Record(PlanGenerated{
		BaseEvent: events.NewBase(EventPlanGenerated, string(p.ID), now),
		PlanID:    string(p.ID),
		BookingID: string(p.BookingID),
		Source:    string(p.Source),
		Days:      len(p.Response.Itinerary),
		Items:     len(p.Response.PackingList),
	})
	return plan, nil
}

type Repository interface {
	Save(ctx context.Context, plan *Plan) error
	// Latest returns the most recent plan for a booking or ErrPlanNotFound.
	Latest(ctx context.Context, bookingID trip.BookingID) (*Plan, error)
}
