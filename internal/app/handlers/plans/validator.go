package plans

import (
	"context"
	"fmt"
	"strings"

	"concierge/internal/app/concierge"
	"concierge/internal/app/middleware"
)

// Validator rejects malformed messages before they reach a handler.
type Validator struct{}

func (Validator) Validate(_ context.Context, msg any) error {
	switch m := msg.(type) {
	case GeneratePlanCommand:
		if m.Booking == nil && strings.TrimSpace(string(m.BookingID)) == "" {
			return invalid("booking_id is required")
		}
		if m.Booking != nil {
			if m.Booking.StartDate.IsZero() || m.Booking.EndDate.IsZero() {
				return invalid("start_date and end_date are required")
			}
			if strings.TrimSpace(m.Booking.DisplayLocation()) == "" {
				return invalid("location is required")
			}
		}
	case AnswerQueryQuery:
		if strings.TrimSpace(m.Query) == "" {
			return invalid("query is required")
		}
	case GetLatestPlanQuery:
		if strings.TrimSpace(string(m.BookingID)) == "" {
			return invalid("booking_id is required")
		}
	case ExportPlanCommand:
		if strings.TrimSpace(string(m.BookingID)) == "" {
			return invalid("booking_id is required")
		}
	}
	return nil
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", concierge.ErrValidation, reason)
}

var _ middleware.Validator = Validator{}
