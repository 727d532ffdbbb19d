package plans

import (
	"context"
	"fmt"
	"log/slog"

	"concierge/internal/app/concierge"
	"concierge/internal/app/queries"
	"concierge/internal/domain/trip"
)

const answerQueryKey = "concierge.query.answer"

type AnswerQueryQuery struct {
	BookingID   trip.BookingID
	Query       string
	Preferences *trip.Preferences
}

func (q AnswerQueryQuery) Key() string { return answerQueryKey }

type AnswerQueryResult struct {
	Success bool   `json:"success"`
	Answer  string `json:"answer"`
}

// AnswerQueryHandler enriches the question with booking context when the
// booking can be resolved; an unknown booking id is not an error here.
type AnswerQueryHandler struct {
	Answerer Answerer
	Bookings concierge.BookingSource
	Logger   *slog.Logger
}

func (h *AnswerQueryHandler) Handle(ctx context.Context, q AnswerQueryQuery) (AnswerQueryResult, error) {
	if h.Answerer == nil {
		return AnswerQueryResult{}, fmt.Errorf("%w: answerer", concierge.ErrUnavailable)
	}
	in := concierge.QueryInput{Query: q.Query, Preferences: q.Preferences}
	if q.BookingID != "" && h.Bookings != nil {
		booking, err := h.Bookings.Booking(ctx, q.BookingID)
		switch {
		case err == nil:
			in.Booking = &booking
		case h.Logger != nil:
			h.Logger.WarnContext(ctx, "query without booking context", "booking_id", q.BookingID, "error", err)
		}
	}
	return AnswerQueryResult{Success: true, Answer: h.Answerer.AnswerQuery(ctx, in)}, nil
}

var _ queries.Handler[AnswerQueryQuery, AnswerQueryResult] = (*AnswerQueryHandler)(nil)
