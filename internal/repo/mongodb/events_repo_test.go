package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/geocoder89/eventbooking/internal/domain/event"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func mockHandle(mt *mtest.T) HandleFunc {
	return func(context.Context) (*mongo.Database, error) {
		return mt.DB, nil
	}
}

func ns(mt *mtest.T, coll string) string {
	return mt.DB.Name() + "." + coll
}

func eventBSON(id primitive.ObjectID, slug string, created time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: "Go Meetup"},
		{Key: "slug", Value: slug},
		{Key: "date", Value: "2025-06-01"},
		{Key: "time", Value: "09:00"},
		{Key: "mode", Value: "offline"},
		{Key: "agenda", Value: bson.A{"Opening"}},
		{Key: "tags", Value: bson.A{"go"}},
		{Key: "createdAt", Value: created},
		{Key: "updatedAt", Value: created},
	}
}

func TestEventsRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert assigns an object id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewEventsRepo(mockHandle(mt), nil)

		saved, err := repo.Insert(context.Background(), event.Event{Title: "Go Meetup", Slug: "go-meetup"})
		require.NoError(mt, err)
		require.True(mt, primitive.IsValidObjectID(saved.ID))
		require.Equal(mt, "go-meetup", saved.Slug)
	})

	mt.Run("duplicate slug", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: events index: slug_unique",
		}))
		repo := NewEventsRepo(mockHandle(mt), nil)

		_, err := repo.Insert(context.Background(), event.Event{Title: "Go Meetup", Slug: "go-meetup"})
		require.ErrorIs(mt, err, event.ErrDuplicateSlug)
	})

	mt.Run("get by id decodes the document", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		created := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, eventsCollection), mtest.FirstBatch,
			eventBSON(id, "go-meetup", created)))
		repo := NewEventsRepo(mockHandle(mt), nil)

		got, err := repo.GetByID(context.Background(), id.Hex())
		require.NoError(mt, err)
		require.Equal(mt, id.Hex(), got.ID)
		require.Equal(mt, "go-meetup", got.Slug)
		require.Equal(mt, []string{"go"}, got.Tags)
		require.True(mt, created.Equal(got.CreatedAt))
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, eventsCollection), mtest.FirstBatch))
		repo := NewEventsRepo(mockHandle(mt), nil)

		_, err := repo.GetByID(context.Background(), primitive.NewObjectID().Hex())
		require.ErrorIs(mt, err, event.ErrNotFound)
	})

	mt.Run("malformed id never reaches the server", func(mt *mtest.T) {
		repo := NewEventsRepo(mockHandle(mt), nil)

		_, err := repo.GetByID(context.Background(), "not-an-object-id")
		require.ErrorIs(mt, err, event.ErrNotFound)

		ok, err := repo.Exists(context.Background(), "not-an-object-id")
		require.NoError(mt, err)
		require.False(mt, ok)
	})

	mt.Run("exists", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, eventsCollection), mtest.FirstBatch, bson.D{{Key: "_id", Value: id}}),
			mtest.CreateCursorResponse(0, ns(mt, eventsCollection), mtest.FirstBatch),
		)
		repo := NewEventsRepo(mockHandle(mt), nil)

		ok, err := repo.Exists(context.Background(), id.Hex())
		require.NoError(mt, err)
		require.True(mt, ok)

		ok, err = repo.Exists(context.Background(), primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		require.False(mt, ok)
	})

	mt.Run("replace missing document", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))
		repo := NewEventsRepo(mockHandle(mt), nil)

		_, err := repo.Replace(context.Background(), event.Event{ID: primitive.NewObjectID().Hex(), Slug: "x"})
		require.ErrorIs(mt, err, event.ErrNotFound)
	})

	mt.Run("replace onto a taken slug", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))
		repo := NewEventsRepo(mockHandle(mt), nil)

		_, err := repo.Replace(context.Background(), event.Event{ID: primitive.NewObjectID().Hex(), Slug: "taken"})
		require.ErrorIs(mt, err, event.ErrDuplicateSlug)
	})

	mt.Run("list", func(mt *mtest.T) {
		now := time.Now().UTC().Truncate(time.Millisecond)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, eventsCollection), mtest.FirstBatch,
			eventBSON(primitive.NewObjectID(), "b", now),
			eventBSON(primitive.NewObjectID(), "a", now.Add(-time.Hour)),
		))
		repo := NewEventsRepo(mockHandle(mt), nil)

		mode := event.ModeOffline
		got, err := repo.List(context.Background(), event.ListFilter{Mode: &mode, Limit: 10})
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		require.Equal(mt, "b", got[0].Slug)
	})

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)
		repo := NewEventsRepo(mockHandle(mt), nil)
		id := primitive.NewObjectID().Hex()

		require.NoError(mt, repo.Delete(context.Background(), id))
		require.ErrorIs(mt, repo.Delete(context.Background(), id), event.ErrNotFound)
	})
}

func TestEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates both collections' indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())

		require.NoError(mt, EnsureIndexes(context.Background(), mt.DB))
	})

	mt.Run("surfaces index conflicts", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    85,
			Name:    "IndexOptionsConflict",
			Message: "index already exists with different options",
		}))

		err := EnsureIndexes(context.Background(), mt.DB)
		require.Error(mt, err)
		require.Contains(mt, err.Error(), "create event indexes")
	})
}
