package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/powervate/admin-api/internal/models"
)

type DoctorStore struct {
	coll *mongo.Collection
}

func NewDoctorStore(db *mongo.Database) *DoctorStore {
	return &DoctorStore{coll: db.Collection(DoctorsCollection)}
}

func (s *DoctorStore) All(ctx context.Context) ([]models.Doctor, error) {
	return findAll[models.Doctor](ctx, s.coll, bson.M{})
}

func (s *DoctorStore) Get(ctx context.Context, id string) (*models.Doctor, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return findOne[models.Doctor](ctx, s.coll, bson.M{"_id": oid})
}

// Create inserts a doctor. The password must already be hashed.
func (s *DoctorStore) Create(ctx context.Context, d *models.Doctor) error {
	d.ID = primitive.NewObjectID()
	d.CreatedAt = nowUTC()
	_, err := s.coll.InsertOne(ctx, d)
	return err
}

func (s *DoctorStore) Update(ctx context.Context, id string, set bson.M) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	set["updatedAt"] = nowUTC()
	return updateByID(ctx, s.coll, oid, bson.M{"$set": set})
}

func (s *DoctorStore) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	return deleteByID(ctx, s.coll, oid)
}
