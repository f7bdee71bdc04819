package mongodb

import (
	"context"

	"github.com/geocoder89/eventbooking/internal/db"
	"github.com/geocoder89/eventbooking/internal/observability"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	eventsCollection   = "events"
	bookingsCollection = "bookings"
)

// HandleFunc resolves the database for a single operation.
type HandleFunc func(ctx context.Context) (*mongo.Database, error)

// DatabaseFrom goes through the connection cache on every call, so stores
// see db.ErrNotConnected (or wait, with buffering on) instead of holding a
// stale client.
func DatabaseFrom(cache *db.Cache[*mongo.Client], name string) HandleFunc {
	return func(ctx context.Context) (*mongo.Database, error) {
		client, err := cache.Handle(ctx)
		if err != nil {
			return nil, err
		}
		return client.Database(name), nil
	}
}

type base struct {
	handle HandleFunc
	prom   *observability.Prom
}

func (b base) observe(op string, fn func() error) error {
	if b.prom != nil {
		return b.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (b base) collection(ctx context.Context, name string) (*mongo.Collection, error) {
	database, err := b.handle(ctx)
	if err != nil {
		return nil, err
	}
	return database.Collection(name), nil
}

func parseID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}
