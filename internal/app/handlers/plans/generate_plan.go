package plans

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"concierge/internal/app/commands"
	"concierge/internal/app/concierge"
	"concierge/internal/app/middleware"
	"concierge/internal/app/outbox"
	domainplans "concierge/internal/domain/plans"
	"concierge/internal/domain/trip"
)

const generatePlanKey = "concierge.plan.generate"

// GeneratePlanCommand produces an itinerary either for an inline booking or for
// one resolved from the booking service by BookingID.
type GeneratePlanCommand struct {
	BookingID       trip.BookingID
	Booking         *trip.BookingContext
	Preferences     trip.Preferences
	Message         string
	Source          domainplans.Source
	IdempotencyKeyV string
}

func (c GeneratePlanCommand) Key() string { return generatePlanKey }

func (c GeneratePlanCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c GeneratePlanCommand) ResultPrototype() any { return &GeneratePlanResult{} }

type GeneratePlanResult struct {
	PlanID   string             `json:"plan_id,omitempty"`
	Response trip.AgentResponse `json:"response"`
}

// Replayable keeps failed generations out of the idempotency store.
func (r *GeneratePlanResult) Replayable() bool { return r != nil && r.Response.Success }

type GeneratePlanHandler struct {
	Planner  Planner
	Bookings concierge.BookingSource
	Plans    domainplans.Repository
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Logger   *slog.Logger
	NewID    func() string
	Now      func() time.Time
}

func (h *GeneratePlanHandler) Handle(ctx context.Context, cmd GeneratePlanCommand) (*GeneratePlanResult, error) {
	booking, err := h.resolve(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if h.Planner == nil {
		return nil, fmt.Errorf("%w: planner", concierge.ErrUnavailable)
	}

	resp := h.Planner.GenerateItinerary(ctx, booking, cmd.Preferences)
	result := &GeneratePlanResult{Response: resp}
	if !resp.Success || h.Plans == nil || strings.TrimSpace(string(booking.BookingID)) == "" {
		return result, nil
	}

	plan, err := domainplans.NewPlan(domainplans.NewPlanParams{
		ID:        domainplans.PlanID(h.newID()),
		BookingID: booking.BookingID,
		Source:    cmd.Source,
		Message:   cmd.Message,
		Response:  resp,
		Now:       h.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := h.Plans.Save(ctx, plan); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, plan.Drain()); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "plan stored", "plan_id", plan.ID, "booking_id", plan.BookingID, "source", plan.Source)
	}
	result.PlanID = string(plan.ID)
	return result, nil
}

func (h *GeneratePlanHandler) resolve(ctx context.Context, cmd GeneratePlanCommand) (trip.BookingContext, error) {
	if cmd.Booking != nil {
		return *cmd.Booking, nil
	}
	if h.Bookings == nil {
		return trip.BookingContext{}, fmt.Errorf("%w: booking service", concierge.ErrUnavailable)
	}
	booking, err := h.Bookings.Booking(ctx, cmd.BookingID)
	if err != nil {
		return trip.BookingContext{}, err
	}
	return booking, nil
}

func (h *GeneratePlanHandler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

func (h *GeneratePlanHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

var _ commands.Handler[GeneratePlanCommand, *GeneratePlanResult] = (*GeneratePlanHandler)(nil)
var _ middleware.IdempotentCommand = (*GeneratePlanCommand)(nil)
