package plans

import (
	"context"

	"concierge/internal/app/concierge"
	"concierge/internal/domain/trip"
)

// Planner is the slice of concierge.Service used by plan generation.
type Planner interface {
	GenerateItinerary(ctx context.Context, booking trip.BookingContext, prefs trip.Preferences) trip.AgentResponse
}

type Answerer interface {
	AnswerQuery(ctx context.Context, in concierge.QueryInput) string
}

var (
	_ Planner  = (*concierge.Service)(nil)
	_ Answerer = (*concierge.Service)(nil)
)
