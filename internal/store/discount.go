package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/powervate/admin-api/internal/models"
)

// DiscountStore manages the single global discount document.
type DiscountStore struct {
	coll *mongo.Collection
}

func NewDiscountStore(db *mongo.Database) *DiscountStore {
	return &DiscountStore{coll: db.Collection(DiscountCollection)}
}

// Get returns nil, nil when no discount is set.
func (s *DiscountStore) Get(ctx context.Context) (*models.Discount, error) {
	d, err := findOne[models.Discount](ctx, s.coll, bson.M{"_id": models.DiscountID})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return d, err
}

// Save replaces the discount and activates it.
func (s *DiscountStore) Save(ctx context.Context, value float64) (*models.Discount, error) {
	d := models.Discount{ID: models.DiscountID, Value: value, IsActive: true, UpdatedAt: nowUTC()}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": models.DiscountID}, d, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DiscountStore) SetActive(ctx context.Context, active bool) error {
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": models.DiscountID},
		bson.M{"$set": bson.M{"isActive": active, "updatedAt": nowUTC()}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DiscountStore) Delete(ctx context.Context) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": models.DiscountID})
	return err
}
