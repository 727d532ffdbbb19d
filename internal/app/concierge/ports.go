package concierge

import (
	"context"
	"errors"

	"concierge/internal/app/prompts"
	"concierge/internal/domain/shared/daterange"
	"concierge/internal/domain/trip"
)

var (
	ErrBookingNotFound = errors.New("concierge: booking not found")
	ErrValidation      = errors.New("concierge: validation failed")
	ErrUnavailable     = errors.New("concierge: dependency unavailable")
)

type WeatherProvider interface {
	Forecast(ctx context.Context, location string, dr daterange.DateRange) ([]trip.WeatherDay, error)
}

type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]trip.SearchResult, error)
}

type LanguageModel interface {
	Complete(ctx context.Context, prompt prompts.Prompt) (string, error)
}

// BookingSource resolves bookings owned by the booking service.
type BookingSource interface {
	// Booking returns ErrBookingNotFound for unknown or unauthorized ids.
	Booking(ctx context.Context, id trip.BookingID) (trip.BookingContext, error)
	Reachable(ctx context.Context) bool
}
