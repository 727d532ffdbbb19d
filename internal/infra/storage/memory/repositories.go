package memory

import (
	"context"
	"sync"

	domainplans "concierge/internal/domain/plans"
	"concierge/internal/domain/trip"
)

// PlanRepository keeps every generated plan per booking, newest last.
type PlanRepository struct {
	mu    sync.RWMutex
	items map[trip.BookingID][]*domainplans.Plan
}

func NewPlanRepository() *PlanRepository {
	return &PlanRepository{items: make(map[trip.BookingID][]*domainplans.Plan)}
}

func (r *PlanRepository) Save(_ context.Context, plan *domainplans.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[plan.BookingID] = append(r.items[plan.BookingID], plan)
	return nil
}

// Latest returns the plan with the newest CreatedAt; ties go to the last saved.
func (r *PlanRepository) Latest(_ context.Context, bookingID trip.BookingID) (*domainplans.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *domainplans.Plan
	for _, p := range r.items[bookingID] {
		if latest == nil || !p.CreatedAt.Before(latest.CreatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, domainplans.ErrPlanNotFound
	}
	return latest, nil
}

var _ domainplans.Repository = (*PlanRepository)(nil)
