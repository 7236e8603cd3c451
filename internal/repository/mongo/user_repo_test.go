package mongo

import (
	"context"
	"testing"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create lower-cases the email", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := &domain.User{Email: "Lifter@Example.com", PasswordHash: "hash"}
		id, err := repo.Create(context.Background(), user)
		require.NoError(mt, err)
		assert.Equal(mt, user.ID, id)
		assert.Equal(mt, "lifter@example.com", user.Email)
	})

	mt.Run("duplicate email is a conflict", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))

		_, err := repo.Create(context.Background(), &domain.User{Email: "a@b.c", PasswordHash: "hash"})
		assert.ErrorIs(mt, err, repository.ErrConflict)
	})

	mt.Run("get by email", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		ns := mt.Coll.Database().Name() + "." + userCollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "u1"},
			{Key: "email", Value: "lifter@example.com"},
			{Key: "passwordHash", Value: "hash"},
		}))

		u, err := repo.GetByEmail(context.Background(), "LIFTER@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, "u1", u.ID)
		assert.Equal(mt, "hash", u.PasswordHash)
	})

	mt.Run("missing user", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		ns := mt.Coll.Database().Name() + "." + userCollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), "nope")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}

func TestMongoExerciseRepository_ListVisible(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes the catalog", func(mt *mtest.T) {
		repo := NewMongoExerciseRepository(mt.DB)
		ns := mt.Coll.Database().Name() + "." + exerciseCollectionName
		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "e1"}, {Key: "name", Value: "Back Squat"}, {Key: "targetMuscle", Value: "Legs"}},
			bson.D{{Key: "_id", Value: "e2"}, {Key: "name", Value: "Curl"}, {Key: "isCustom", Value: true}, {Key: "userId", Value: "u1"}},
		)
		last := mtest.CreateCursorResponse(0, ns, mtest.NextBatch)
		mt.AddMockResponses(first, last)

		list, err := repo.ListVisible(context.Background(), "u1")
		require.NoError(mt, err)
		require.Len(mt, list, 2)
		assert.Nil(mt, list[0].UserID)
		require.NotNil(mt, list[1].UserID)
		assert.Equal(mt, "u1", *list[1].UserID)
	})
}

func TestExerciseRowDecodesLookup(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"_id":        "we1",
		"workoutId":  "w1",
		"exerciseId": "e1",
		"order":      2,
		"sets":       3,
		"exercise":   bson.A{bson.M{"_id": "e1", "name": "Bench Press", "targetMuscle": "Chest"}},
	})
	require.NoError(t, err)

	var row exerciseRow
	require.NoError(t, bson.Unmarshal(raw, &row))
	assert.Equal(t, 3, row.SetsCount)
	ref := repository.ToOne(row.Lookup)
	require.NotNil(t, ref)
	assert.Equal(t, "Chest", ref.TargetMuscle)
}
