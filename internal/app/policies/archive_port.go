package policies

import (
	"context"
	"errors"

	"concierge/internal/domain/trip"
)

var ErrArchiveDisabled = errors.New("policies: plan archive not configured")

// PlanArchive persists a rendered plan outside the service and returns a shareable URL.
type PlanArchive interface {
	Archive(ctx context.Context, bookingID trip.BookingID, planID string, resp trip.AgentResponse) (string, error)
}
