package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/powervate/admin-api/internal/paging"
)

func userDoc(id primitive.ObjectID, name string, created time.Time, admin bool) bson.D {
	doc := bson.D{
		{Key: "_id", Value: id},
		{Key: "uid", Value: id.Hex()},
		{Key: "profile", Value: bson.D{
			{Key: "fullName", Value: name},
			{Key: "email", Value: name + "@example.com"},
			{Key: "profileSetup", Value: true},
			{Key: "created_at", Value: created},
			{Key: "phone", Value: "555-0100"},
		}},
	}
	if admin {
		doc = append(doc, bson.E{Key: "isAdmin", Value: true})
	}
	return doc
}

func TestUserStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	ns := "test.users"

	mt.Run("page drops admins but counts them", func(mt *mtest.T) {
		s := NewUserStore(mt.DB)
		now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
		ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			userDoc(ids[0], "Ana", now, false),
			userDoc(ids[1], "Boss", now.Add(-time.Hour), true),
			userDoc(ids[2], "Cleo", now.Add(-2*time.Hour), false),
		))

		batch, err := s.Page(ctx, nil, 3)
		require.NoError(t, err)
		assert.Equal(t, 3, batch.Scanned)
		require.Len(t, batch.Items, 2)
		assert.Equal(t, "Ana", batch.Items[0].Profile.FullName)
		assert.Equal(t, "555-0100", batch.Items[0].Profile.Extra["phone"])
		require.NotNil(t, batch.Last)
		assert.Equal(t, ids[2], batch.Last.ID)
		assert.True(t, now.Add(-2*time.Hour).Equal(batch.Last.Value.(time.Time)))

		started := mt.GetStartedEvent()
		require.NotNil(t, started)
		assert.Equal(t, "find", started.CommandName)
		assert.Contains(t, started.Command.Lookup("filter").String(), "$exists")
	})

	mt.Run("page after cursor", func(mt *mtest.T) {
		s := NewUserStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		cursor := &paging.Cursor{Value: time.Now(), ID: primitive.NewObjectID()}
		batch, err := s.Page(ctx, cursor, 10)
		require.NoError(t, err)
		assert.Zero(t, batch.Scanned)
		assert.Nil(t, batch.Last)

		filter := mt.GetStartedEvent().Command.Lookup("filter").String()
		assert.Contains(t, filter, "$or")
		assert.Contains(t, filter, "$lt")
	})

	mt.Run("search by name prefix", func(mt *mtest.T) {
		s := NewUserStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			userDoc(primitive.NewObjectID(), "Jo", time.Now(), false)))

		users, err := s.SearchByName(ctx, "Jo")
		require.NoError(t, err)
		require.Len(t, users, 1)

		filter := mt.GetStartedEvent().Command.Lookup("filter").String()
		assert.Contains(t, filter, "$gte")
		assert.Contains(t, filter, "$ne")
	})

	mt.Run("get not found", func(mt *mtest.T) {
		s := NewUserStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := s.Get(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("get with malformed id never queries", func(mt *mtest.T) {
		s := NewUserStore(mt.DB)
		_, err := s.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, mt.GetStartedEvent())
	})

	mt.Run("find by email ignores case", func(mt *mtest.T) {
		s := NewUserStore(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			userDoc(id, "Jo", time.Now(), false)))

		u, err := s.FindByEmail(ctx, " Jo@Example.com ")
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)

		filter := mt.GetStartedEvent().Command.Lookup("filter").String()
		assert.Contains(t, filter, "profile.email")
		assert.Contains(t, filter, "Jo@Example")
		assert.Contains(t, filter, "regularExpression")
	})

	mt.Run("find by email not found", func(mt *mtest.T) {
		s := NewUserStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := s.FindByEmail(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("create sets defaults", func(mt *mtest.T) {
		s := NewUserStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u, err := s.Create(ctx, "New Person", "new@example.com", "hash")
		require.NoError(t, err)
		assert.Equal(t, u.ID.Hex(), u.UID)
		assert.False(t, u.Profile.ProfileSetup)
		assert.False(t, u.Profile.CreatedAt.IsZero())
		assert.Equal(t, "hash", u.Profile.Password)
		assert.Equal(t, "insert", mt.GetStartedEvent().CommandName)
	})

	mt.Run("set fields on missing user", func(mt *mtest.T) {
		s := NewUserStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := s.SetFields(ctx, primitive.NewObjectID().Hex(), bson.M{"profile.phone": "1"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		s := NewUserStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		require.NoError(t, s.Delete(ctx, primitive.NewObjectID().Hex()))

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		assert.ErrorIs(t, s.Delete(ctx, primitive.NewObjectID().Hex()), ErrNotFound)
	})

	mt.Run("stats", func(mt *mtest.T) {
		s := NewUserStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(12)}}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(4)}}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(9)}}),
		)

		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, DashboardStats{TotalUsers: 12, SubscribedUsers: 4, ActiveUsers: 9}, stats)
	})

	mt.Run("stats error", func(mt *mtest.T) {
		s := NewUserStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad"}))

		_, err := s.Stats(ctx)
		assert.Error(t, err)
	})
}

func TestCredentialStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("duplicate email", func(mt *mtest.T) {
		s := NewCredentialStore(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))

		err := s.UpdateEmail(ctx, primitive.NewObjectID(), "taken@example.com")
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		s := NewCredentialStore(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.credentials", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "email", Value: "admin@example.com"},
			{Key: "passwordHash", Value: "h"},
		}))

		cred, err := s.FindByEmail(ctx, "admin@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, cred.ID)
		assert.Equal(t, "h", cred.PasswordHash)
	})
}
