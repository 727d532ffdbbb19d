package plans

import (
	"context"
	"time"

	"concierge/internal/app/queries"
	domainplans "concierge/internal/domain/plans"
	"concierge/internal/domain/trip"
)

const latestPlanKey = "concierge.plan.latest"

type GetLatestPlanQuery struct {
	BookingID trip.BookingID
}

func (q GetLatestPlanQuery) Key() string { return latestPlanKey }

type PlanView struct {
	PlanID    string             `json:"plan_id"`
	BookingID string             `json:"booking_id"`
	Source    string             `json:"source"`
	CreatedAt time.Time          `json:"created_at"`
	Response  trip.AgentResponse `json:"plan"`
}

type GetLatestPlanHandler struct {
	Plans domainplans.Repository
}

func (h *GetLatestPlanHandler) Handle(ctx context.Context, q GetLatestPlanQuery) (PlanView, error) {
	if h.Plans == nil {
		return PlanView{}, domainplans.ErrPlanNotFound
	}
	plan, err := h.Plans.Latest(ctx, q.BookingID)
	if err != nil {
		return PlanView{}, err
	}
	return viewOf(plan), nil
}

func viewOf(p *domainplans.Plan) PlanView {
	return PlanView{
		PlanID:    string(p.ID),
		BookingID: string(p.BookingID),
		Source:    string(p.Source),
		CreatedAt: p.CreatedAt,
		Response:  p.Response,
	}
}

var _ queries.Handler[GetLatestPlanQuery, PlanView] = (*GetLatestPlanHandler)(nil)
