package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/powervate/admin-api/internal/models"
)

type PricingStore struct {
	coll *mongo.Collection
}

func NewPricingStore(db *mongo.Database) *PricingStore {
	return &PricingStore{coll: db.Collection(PricingPlansCollection)}
}

// Slots returns one entry per plan slot, nil where no plan is stored.
// Plans numbered outside the slot range are ignored.
func (s *PricingStore) Slots(ctx context.Context) ([]*models.PricingPlan, error) {
	plans, err := findAll[models.PricingPlan](ctx, s.coll, bson.M{})
	if err != nil {
		return nil, err
	}
	slots := make([]*models.PricingPlan, models.PricingPlanSlots)
	for i := range plans {
		n := plans[i].PlanNumber
		if n >= 0 && n < models.PricingPlanSlots {
			slots[n] = &plans[i]
		}
	}
	return slots, nil
}

// SaveSlot updates the plan stored in slot, or inserts one when the slot is empty.
func (s *PricingStore) SaveSlot(ctx context.Context, plan models.PricingPlan) (*models.PricingPlan, error) {
	current, err := findOne[models.PricingPlan](ctx, s.coll, bson.M{"planNumber": plan.PlanNumber})
	switch {
	case err == nil:
		plan.ID = current.ID
		set := bson.M{
			"duration":       plan.Duration,
			"price":          plan.Price,
			"customProducts": plan.CustomProducts,
			"planNumber":     plan.PlanNumber,
		}
		if err := updateByID(ctx, s.coll, plan.ID, bson.M{"$set": set}); err != nil {
			return nil, err
		}
		return &plan, nil
	case errors.Is(err, ErrNotFound):
		plan.ID = primitive.NewObjectID()
		if _, err := s.coll.InsertOne(ctx, plan); err != nil {
			return nil, err
		}
		return &plan, nil
	default:
		return nil, err
	}
}

func (s *PricingStore) DeleteSlot(ctx context.Context, slot int) error {
	current, err := findOne[models.PricingPlan](ctx, s.coll, bson.M{"planNumber": slot})
	if err != nil {
		return err
	}
	return deleteByID(ctx, s.coll, current.ID)
}
