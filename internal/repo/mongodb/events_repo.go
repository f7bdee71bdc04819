package mongodb

import (
	"context"
	"errors"

	"github.com/geocoder89/eventbooking/internal/domain/event"
	"github.com/geocoder89/eventbooking/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EventsRepo struct {
	base
}

func NewEventsRepo(handle HandleFunc, prom *observability.Prom) *EventsRepo {
	return &EventsRepo{
		base: base{handle: handle, prom: prom},
	}
}

func (r *EventsRepo) Insert(ctx context.Context, e event.Event) (event.Event, error) {
	coll, err := r.collection(ctx, eventsCollection)
	if err != nil {
		return event.Event{}, err
	}

	oid := primitive.NewObjectID()
	if e.ID != "" {
		var ok bool
		if oid, ok = parseID(e.ID); !ok {
			return event.Event{}, event.ErrNotFound
		}
	}

	doc := toEventDoc(oid, e)
	err = r.observe("events.insert", func() error {
		_, err := coll.InsertOne(ctx, doc)
		return err
	})
	if err != nil {
		return event.Event{}, mapEventErr(err)
	}

	return doc.toEvent(), nil
}

func (r *EventsRepo) Replace(ctx context.Context, e event.Event) (event.Event, error) {
	oid, ok := parseID(e.ID)
	if !ok {
		return event.Event{}, event.ErrNotFound
	}

	coll, err := r.collection(ctx, eventsCollection)
	if err != nil {
		return event.Event{}, err
	}

	doc := toEventDoc(oid, e)
	var res *mongo.UpdateResult
	err = r.observe("events.replace", func() error {
		var err error
		res, err = coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
		return err
	})
	if err != nil {
		return event.Event{}, mapEventErr(err)
	}
	if res.MatchedCount == 0 {
		return event.Event{}, event.ErrNotFound
	}

	return doc.toEvent(), nil
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (event.Event, error) {
	oid, ok := parseID(id)
	if !ok {
		return event.Event{}, event.ErrNotFound
	}
	return r.findOne(ctx, "events.get_by_id", bson.M{"_id": oid})
}

func (r *EventsRepo) GetBySlug(ctx context.Context, slug string) (event.Event, error) {
	return r.findOne(ctx, "events.get_by_slug", bson.M{"slug": slug})
}

func (r *EventsRepo) findOne(ctx context.Context, op string, filter bson.M) (event.Event, error) {
	coll, err := r.collection(ctx, eventsCollection)
	if err != nil {
		return event.Event{}, err
	}

	var doc eventDoc
	err = r.observe(op, func() error {
		return coll.FindOne(ctx, filter).Decode(&doc)
	})
	if err != nil {
		return event.Event{}, mapEventErr(err)
	}

	return doc.toEvent(), nil
}

// Exists reads the events collection once. Ids that are not ObjectIDs
// cannot exist.
func (r *EventsRepo) Exists(ctx context.Context, id string) (bool, error) {
	oid, ok := parseID(id)
	if !ok {
		return false, nil
	}

	coll, err := r.collection(ctx, eventsCollection)
	if err != nil {
		return false, err
	}

	err = r.observe("events.exists", func() error {
		return coll.FindOne(ctx, bson.M{"_id": oid},
			options.FindOne().SetProjection(bson.M{"_id": 1}),
		).Err()
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (r *EventsRepo) List(ctx context.Context, f event.ListFilter) ([]event.Event, error) {
	filter := bson.M{}
	if f.Mode != nil {
		filter["mode"] = *f.Mode
	}

	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(int64(f.Offset))
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	return r.find(ctx, "events.list", filter, opts)
}

func (r *EventsRepo) ListByTags(ctx context.Context, tags []string, excludeID string, limit int) ([]event.Event, error) {
	filter := bson.M{"tags": bson.M{"$in": tags}}
	if oid, ok := parseID(excludeID); ok {
		filter["_id"] = bson.M{"$ne": oid}
	}

	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	return r.find(ctx, "events.list_by_tags", filter, opts)
}

func (r *EventsRepo) find(ctx context.Context, op string, filter bson.M, opts *options.FindOptions) ([]event.Event, error) {
	coll, err := r.collection(ctx, eventsCollection)
	if err != nil {
		return nil, err
	}

	var docs []eventDoc
	err = r.observe(op, func() error {
		cur, err := coll.Find(ctx, filter, opts)
		if err != nil {
			return err
		}
		return cur.All(ctx, &docs)
	})
	if err != nil {
		return nil, err
	}

	out := make([]event.Event, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEvent())
	}
	return out, nil
}

func (r *EventsRepo) Delete(ctx context.Context, id string) error {
	oid, ok := parseID(id)
	if !ok {
		return event.ErrNotFound
	}

	coll, err := r.collection(ctx, eventsCollection)
	if err != nil {
		return err
	}

	var res *mongo.DeleteResult
	err = r.observe("events.delete", func() error {
		var err error
		res, err = coll.DeleteOne(ctx, bson.M{"_id": oid})
		return err
	})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return event.ErrNotFound
	}

	return nil
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func mapEventErr(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return event.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return event.ErrDuplicateSlug
	default:
		return err
	}
}
