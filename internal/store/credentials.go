package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/powervate/admin-api/internal/models"
)

// CredentialStore is the identity store behind email/password sign-in.
type CredentialStore struct {
	coll *mongo.Collection
}

func NewCredentialStore(db *mongo.Database) *CredentialStore {
	return &CredentialStore{coll: db.Collection(CredentialsCollection)}
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*models.Credential, error) {
	return findOne[models.Credential](ctx, s.coll, bson.M{"email": email})
}

func (s *CredentialStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Credential, error) {
	return findOne[models.Credential](ctx, s.coll, bson.M{"_id": id})
}

func (s *CredentialStore) Create(ctx context.Context, cred *models.Credential) error {
	now := nowUTC()
	cred.CreatedAt, cred.UpdatedAt = now, now
	if _, err := s.coll.InsertOne(ctx, cred); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *CredentialStore) UpdateEmail(ctx context.Context, id primitive.ObjectID, email string) error {
	return updateByID(ctx, s.coll, id, bson.M{"$set": bson.M{"email": email, "updatedAt": nowUTC()}})
}

func (s *CredentialStore) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return updateByID(ctx, s.coll, id, bson.M{"$set": bson.M{"passwordHash": hash, "updatedAt": nowUTC()}})
}
