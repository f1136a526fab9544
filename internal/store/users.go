package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/powervate/admin-api/internal/models"
	"github.com/powervate/admin-api/internal/paging"
)

const (
	fieldCreatedAt = "profile.created_at"
	fieldFullName  = "profile.fullName"
)

var notAdmin = bson.M{"isAdmin": bson.M{"$ne": true}}

// DashboardStats are the user counters shown on the dashboard.
type DashboardStats struct {
	TotalUsers      int64 `json:"totalUsers"`
	SubscribedUsers int64 `json:"subscribedUsers"`
	ActiveUsers     int64 `json:"activeUsers"`
}

type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(UsersCollection)}
}

// Page returns up to limit users newest first, starting after the cursor.
// Admins are dropped from Items but still count towards Scanned.
func (s *UserStore) Page(ctx context.Context, after *paging.Cursor, limit int64) (paging.Batch[models.User], error) {
	filter := paging.AfterFilter(fieldCreatedAt, paging.Descending, after)
	if after == nil {
		filter = bson.M{fieldCreatedAt: bson.M{"$exists": true}}
	}
	opts := options.Find().SetSort(paging.Sort(fieldCreatedAt, paging.Descending)).SetLimit(limit)

	raw, err := findAll[models.User](ctx, s.coll, filter, opts)
	if err != nil {
		return paging.Batch[models.User]{}, fmt.Errorf("listing users: %w", err)
	}

	batch := paging.Batch[models.User]{Scanned: len(raw), Items: make([]models.User, 0, len(raw))}
	for _, u := range raw {
		if !u.IsAdmin {
			batch.Items = append(batch.Items, u)
		}
	}
	if n := len(raw); n > 0 {
		last := raw[n-1]
		batch.Last = &paging.Cursor{Value: last.Profile.CreatedAt, ID: last.ID}
	}
	return batch, nil
}

// SearchByName returns non-admin users whose full name starts with name (case sensitive).
func (s *UserStore) SearchByName(ctx context.Context, name string) ([]models.User, error) {
	filter := bson.M{
		fieldFullName: bson.M{"$gte": name, "$lte": name + prefixEnd},
		"isAdmin":     bson.M{"$ne": true},
	}
	opts := options.Find().SetSort(bson.D{{Key: fieldFullName, Value: 1}})
	return findAll[models.User](ctx, s.coll, filter, opts)
}

// ByDateRange returns non-admin users created within [from, to], newest first.
func (s *UserStore) ByDateRange(ctx context.Context, from, to time.Time) ([]models.User, error) {
	filter := bson.M{
		fieldCreatedAt: bson.M{"$gte": from, "$lte": to},
		"isAdmin":      bson.M{"$ne": true},
	}
	opts := options.Find().SetSort(bson.D{{Key: fieldCreatedAt, Value: -1}})
	return findAll[models.User](ctx, s.coll, filter, opts)
}

// Create inserts a new app user. The password must already be hashed.
func (s *UserStore) Create(ctx context.Context, fullName, email, passwordHash string) (*models.User, error) {
	id := primitive.NewObjectID()
	user := models.User{
		ID:  id,
		UID: id.Hex(),
		Profile: models.UserProfile{
			FullName:     fullName,
			Email:        email,
			Password:     passwordHash,
			ProfileSetup: false,
			CreatedAt:    nowUTC(),
		},
	}
	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) Get(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return findOne[models.User](ctx, s.coll, bson.M{"_id": oid})
}

// FindByEmail returns the user whose profile email matches, ignoring case.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	pattern := "^" + regexp.QuoteMeta(strings.TrimSpace(email)) + "$"
	return findOne[models.User](ctx, s.coll, bson.M{
		"profile.email": primitive.Regex{Pattern: pattern, Options: "i"},
	})
}

// SetFields applies a $set with already dotted keys, e.g. "profile.phone".
func (s *UserStore) SetFields(ctx context.Context, id string, set bson.M) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	return updateByID(ctx, s.coll, oid, bson.M{"$set": set})
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	return deleteByID(ctx, s.coll, oid)
}

// Stats counts non-admin users, subscribed profiles and completed profiles.
func (s *UserStore) Stats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	var err error
	if stats.TotalUsers, err = s.coll.CountDocuments(ctx, notAdmin); err != nil {
		return DashboardStats{}, fmt.Errorf("counting users: %w", err)
	}
	if stats.SubscribedUsers, err = s.coll.CountDocuments(ctx, bson.M{"profile.subscription": true}); err != nil {
		return DashboardStats{}, fmt.Errorf("counting subscribed users: %w", err)
	}
	if stats.ActiveUsers, err = s.coll.CountDocuments(ctx, bson.M{"profile.profileSetup": true}); err != nil {
		return DashboardStats{}, fmt.Errorf("counting active users: %w", err)
	}
	return stats, nil
}

// UpsertAdmin creates or promotes the user document with the given id to admin.
func (s *UserStore) UpsertAdmin(ctx context.Context, id primitive.ObjectID, fullName, email string) error {
	update := bson.M{
		"$set": bson.M{
			"uid":           id.Hex(),
			"isAdmin":       true,
			fieldFullName:   fullName,
			"profile.email": email,
		},
		"$setOnInsert": bson.M{
			fieldCreatedAt:         nowUTC(),
			"profile.profileSetup": true,
		},
	}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	return err
}
