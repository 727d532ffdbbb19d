package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/IBM/sarama"

	"concierge/internal/app/commands"
	"concierge/internal/app/concierge"
	planhandlers "concierge/internal/app/handlers/plans"
	domainplans "concierge/internal/domain/plans"
	"concierge/internal/domain/trip"
)

const StatusAccepted = "ACCEPTED"

// BookingStatusEvent is published by the booking service on every status change.
type BookingStatusEvent struct {
	ID        string         `json:"id"`
	BookingID trip.BookingID `json:"bookingId"`
	Status    string         `json:"status"`
	UpdatedBy string         `json:"updatedBy"`
	Timestamp string         `json:"timestamp"`
}

// EventID falls back to booking, status and timestamp when the producer sent no id.
func (e BookingStatusEvent) EventID() string {
	if e.ID != "" {
		return e.ID
	}
	return fmt.Sprintf("%s:%s:%s", e.BookingID, e.Status, e.Timestamp)
}

type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// BookingStatusHandler pre-generates a plan with default preferences when a
// booking is accepted.
type BookingStatusHandler struct {
	Bus    commands.Bus
	Inbox  Inbox
	Logger *slog.Logger
}

func (h *BookingStatusHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var evt BookingStatusEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		h.logger().WarnContext(ctx, "dropping unreadable booking status event", "offset", msg.Offset, "error", err)
		return nil
	}
	if !strings.EqualFold(evt.Status, StatusAccepted) || evt.BookingID == "" {
		return nil
	}
	id := evt.EventID()
	if h.Inbox != nil {
		seen, err := h.Inbox.Seen(ctx, id)
		if err != nil {
			return err
		}
		if seen {
			h.logger().DebugContext(ctx, "duplicate booking status event", "event_id", id)
			return nil
		}
	}

	_, err := commands.Dispatch[planhandlers.GeneratePlanCommand, *planhandlers.GeneratePlanResult](ctx, h.Bus, planhandlers.GeneratePlanCommand{
		BookingID:   evt.BookingID,
		Preferences: trip.DefaultPreferences(),
		Source:      domainplans.SourceBookingEvent,
	})
	switch {
	case err == nil:
		h.logger().InfoContext(ctx, "plan pre-generated for accepted booking", "booking_id", evt.BookingID)
		return nil
	case errors.Is(err, concierge.ErrBookingNotFound):
		h.logger().WarnContext(ctx, "accepted booking not found", "booking_id", evt.BookingID)
		return nil
	default:
		if h.Inbox != nil {
			_ = h.Inbox.Forget(ctx, id)
		}
		return err
	}
}

func (h *BookingStatusHandler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return h.Logger
}

var _ MessageHandler = (*BookingStatusHandler)(nil)
