package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes declares the indexes both collections rely on. The unique
// ones are what turn concurrent duplicate writes into errors.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection(eventsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("slug_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "date", Value: 1}, {Key: "mode", Value: 1}},
			Options: options.Index().SetName("date_mode"),
		},
	})
	if err != nil {
		return fmt.Errorf("create event indexes: %w", err)
	}

	_, err = database.Collection(bookingsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "eventId", Value: 1}},
			Options: options.Index().SetName("event_id"),
		},
		{
			Keys:    bson.D{{Key: "eventId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("event_id_created_at"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email"),
		},
		{
			Keys:    bson.D{{Key: "eventId", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetName("event_email_unique").SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("create booking indexes: %w", err)
	}

	return nil
}
