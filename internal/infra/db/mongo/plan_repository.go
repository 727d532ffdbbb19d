package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainplans "concierge/internal/domain/plans"
	"concierge/internal/domain/trip"
)

type PlanRepository struct {
	col *mongo.Collection
}

func NewPlanRepository(ctx context.Context, db *mongo.Database) *PlanRepository {
	col := db.Collection("concierge_plans")
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "booking_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return &PlanRepository{col: col}
}

// The response is stored as its JSON wire form so stored plans read back exactly as served.
type planDocument struct {
	ID        string    `bson:"_id"`
	BookingID string    `bson:"booking_id"`
	Source    string    `bson:"source"`
	Message   string    `bson:"message,omitempty"`
	Response  []byte    `bson:"response_json"`
	Days      int       `bson:"days"`
	CreatedAt time.Time `bson:"created_at"`
}

func (r *PlanRepository) Save(ctx context.Context, plan *domainplans.Plan) error {
	raw, err := json.Marshal(plan.Response)
	if err != nil {
		return err
	}
	doc := planDocument{
		ID:        string(plan.ID),
		BookingID: string(plan.BookingID),
		Source:    string(plan.Source),
		Message:   plan.Message,
		Response:  raw,
		Days:      len(plan.Response.Itinerary),
		CreatedAt: plan.CreatedAt,
	}
	_, err = r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *PlanRepository) Latest(ctx context.Context, bookingID trip.BookingID) (*domainplans.Plan, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var doc planDocument
	if err := r.col.FindOne(ctx, bson.M{"booking_id": string(bookingID)}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainplans.ErrPlanNotFound
		}
		return nil, err
	}
	var resp trip.AgentResponse
	if err := json.Unmarshal(doc.Response, &resp); err != nil {
		return nil, err
	}
	return &domainplans.Plan{
		ID:        domainplans.PlanID(doc.ID),
		BookingID: trip.BookingID(doc.BookingID),
		Source:    domainplans.Source(doc.Source),
		Message:   doc.Message,
		Response:  resp,
		CreatedAt: doc.CreatedAt,
	}, nil
}

var _ domainplans.Repository = (*PlanRepository)(nil)
