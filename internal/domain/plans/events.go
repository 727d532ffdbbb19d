package plans

import "concierge/internal/domain/shared/events"

const (
	EventPlanGenerated = "concierge.plan_generated"
	EventPlanExported  = "concierge.plan_exported"
)

type PlanGenerated struct {
	events.BaseEvent
	PlanID    string `json:"plan_id"`
	BookingID string `json:"booking_id"`
	Source    string `json:"source"`
	Days      int    `json:"days"`
	Items     int    `json:"packing_items"`
}

func (e PlanGenerated) PartitionKey() string { return e.BookingID }

type PlanExported struct {
	events.BaseEvent
	PlanID    string `json:"plan_id"`
	BookingID string `json:"booking_id"`
	URL       string `json:"url"`
}

func (e PlanExported) PartitionKey() string { return e.BookingID }

var (
	_ events.Keyed = PlanGenerated{}
	_ events.Keyed = PlanExported{}
)
