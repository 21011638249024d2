package items

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	oid := primitive.NewObjectID()

	mt.Run("list stringifies ids and flattens nested documents", func(mt *mtest.T) {
		store := NewMongoStore(mt.Client, mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: oid}, {Key: "name", Value: "widget"}},
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "dims", Value: bson.D{{Key: "w", Value: int32(10)}}},
				{Key: "tags", Value: bson.A{"a", "b"}},
			},
		))

		all, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, oid.Hex(), all[0][IDField])
		assert.Equal(t, "widget", all[0]["name"])
		assert.Equal(t, map[string]interface{}{"w": int32(10)}, all[1]["dims"])
		assert.Equal(t, []interface{}{"a", "b"}, all[1]["tags"])
	})

	mt.Run("list of empty collection is not nil", func(mt *mtest.T) {
		store := NewMongoStore(mt.Client, mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		all, err := store.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})

	mt.Run("get found", func(mt *mtest.T) {
		store := NewMongoStore(mt.Client, mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: oid}, {Key: "name", Value: "widget"}},
		))

		item, err := store.Get(ctx, oid.Hex())
		require.NoError(t, err)
		assert.Equal(t, Item{IDField: oid.Hex(), "name": "widget"}, item)
	})

	mt.Run("get missing", func(mt *mtest.T) {
		store := NewMongoStore(mt.Client, mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		_, err := store.Get(ctx, oid.Hex())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("invalid id never reaches the server", func(mt *mtest.T) {
		store := NewMongoStore(mt.Client, mt.Coll)

		_, err := store.Get(ctx, "not-an-id")
		assert.ErrorIs(t, err, ErrInvalidID)
		assert.ErrorIs(t, store.Update(ctx, "not-an-id", Item{"a": "b"}), ErrInvalidID)
		assert.ErrorIs(t, store.Delete(ctx, "not-an-id"), ErrInvalidID)
	})

	mt.Run("create returns generated id", func(mt *mtest.T) {
		store := NewMongoStore(mt.Client, mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		id, err := store.Create(ctx, Item{"name": "widget", IDField: "ignored"})
		require.NoError(t, err)
		assert.Len(t, id, 24)
		assert.NotEqual(t, "ignored", id)
	})

	mt.Run("create surfaces write errors", func(mt *mtest.T) {
		store := NewMongoStore(mt.Client, mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		_, err := store.Create(ctx, Item{"name": "widget"})
		assert.Error(t, err)
	})

	mt.Run("update matched", func(mt *mtest.T) {
		store := NewMongoStore(mt.Client, mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		assert.NoError(t, store.Update(ctx, oid.Hex(), Item{"name": "gadget"}))
	})

	mt.Run("update unmatched", func(mt *mtest.T) {
		store := NewMongoStore(mt.Client, mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		assert.ErrorIs(t, store.Update(ctx, oid.Hex(), Item{"name": "gadget"}), ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		store := NewMongoStore(mt.Client, mt.Coll)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		assert.NoError(t, store.Delete(ctx, oid.Hex()))
		assert.ErrorIs(t, store.Delete(ctx, oid.Hex()), ErrNotFound)
	})

	mt.Run("command errors are passed through", func(mt *mtest.T) {
		store := NewMongoStore(mt.Client, mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad value",
		}))

		_, err := store.List(ctx)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}
