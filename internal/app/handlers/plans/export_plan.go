package plans

import (
	"context"
	"time"

	"concierge/internal/app/commands"
	"concierge/internal/app/outbox"
	"concierge/internal/app/policies"
	domainplans "concierge/internal/domain/plans"
	"concierge/internal/domain/shared/events"
	"concierge/internal/domain/trip"
)

const exportPlanKey = "concierge.plan.export"

// ExportPlanCommand uploads the latest plan of a booking to the archive.
type ExportPlanCommand struct {
	BookingID trip.BookingID
}

func (c ExportPlanCommand) Key() string { return exportPlanKey }

type ExportPlanResult struct {
	Success bool   `json:"success"`
	PlanID  string `json:"plan_id"`
	URL     string `json:"url"`
}

type ExportPlanHandler struct {
	Plans   domainplans.Repository
	Archive policies.PlanArchive
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *ExportPlanHandler) Handle(ctx context.Context, cmd ExportPlanCommand) (*ExportPlanResult, error) {
	if h.Plans == nil {
		return nil, domainplans.ErrPlanNotFound
	}
	plan, err := h.Plans.Latest(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	if h.Archive == nil {
		return nil, policies.ErrArchiveDisabled
	}
	url, err := h.Archive.Archive(ctx, plan.BookingID, string(plan.ID), plan.Response)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now()
	}
	exported := domainplans.PlanExported{
		BaseEvent: events.NewBase(domainplans.EventPlanExported, string(plan.ID), now),
		PlanID:    string(plan.ID),
		BookingID: string(plan.BookingID),
		URL:       url,
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, []events.DomainEvent{exported}); err != nil {
		return nil, err
	}
	return &ExportPlanResult{Success: true, PlanID: string(plan.ID), URL: url}, nil
}

var _ commands.Handler[ExportPlanCommand, *ExportPlanResult] = (*ExportPlanHandler)(nil)
