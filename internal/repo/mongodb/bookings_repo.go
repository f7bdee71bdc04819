package mongodb

import (
	"context"
	"errors"

	"github.com/geocoder89/eventbooking/internal/domain/booking"
	"github.com/geocoder89/eventbooking/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BookingsRepo struct {
	base
}

func NewBookingsRepo(handle HandleFunc, prom *observability.Prom) *BookingsRepo {
	return &BookingsRepo{
		base: base{handle: handle, prom: prom},
	}
}

func (r *BookingsRepo) Insert(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	eventOID, ok := parseID(b.EventID)
	if !ok {
		return booking.Booking{}, booking.ErrEventNotFound
	}

	coll, err := r.collection(ctx, bookingsCollection)
	if err != nil {
		return booking.Booking{}, err
	}

	oid := primitive.NewObjectID()
	if b.ID != "" {
		if oid, ok = parseID(b.ID); !ok {
			return booking.Booking{}, booking.ErrNotFound
		}
	}

	doc := toBookingDoc(oid, eventOID, b)
	err = r.observe("bookings.insert", func() error {
		_, err := coll.InsertOne(ctx, doc)
		return err
	})
	if err != nil {
		return booking.Booking{}, mapBookingErr(err)
	}

	return doc.toBooking(), nil
}

func (r *BookingsRepo) Replace(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	oid, ok := parseID(b.ID)
	if !ok {
		return booking.Booking{}, booking.ErrNotFound
	}
	eventOID, ok := parseID(b.EventID)
	if !ok {
		return booking.Booking{}, booking.ErrEventNotFound
	}

	coll, err := r.collection(ctx, bookingsCollection)
	if err != nil {
		return booking.Booking{}, err
	}

	doc := toBookingDoc(oid, eventOID, b)
	var res *mongo.UpdateResult
	err = r.observe("bookings.replace", func() error {
		var err error
		res, err = coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
		return err
	})
	if err != nil {
		return booking.Booking{}, mapBookingErr(err)
	}
	if res.MatchedCount == 0 {
		return booking.Booking{}, booking.ErrNotFound
	}

	return doc.toBooking(), nil
}

func (r *BookingsRepo) GetByID(ctx context.Context, id string) (booking.Booking, error) {
	oid, ok := parseID(id)
	if !ok {
		return booking.Booking{}, booking.ErrNotFound
	}

	coll, err := r.collection(ctx, bookingsCollection)
	if err != nil {
		return booking.Booking{}, err
	}

	var doc bookingDoc
	err = r.observe("bookings.get_by_id", func() error {
		return coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	})
	if err != nil {
		return booking.Booking{}, mapBookingErr(err)
	}

	return doc.toBooking(), nil
}

func (r *BookingsRepo) ListByEvent(ctx context.Context, eventID string) ([]booking.Booking, error) {
	eventOID, ok := parseID(eventID)
	if !ok {
		return []booking.Booking{}, nil
	}

	coll, err := r.collection(ctx, bookingsCollection)
	if err != nil {
		return nil, err
	}

	var docs []bookingDoc
	err = r.observe("bookings.list_by_event", func() error {
		cur, err := coll.Find(ctx, bson.M{"eventId": eventOID}, options.Find().SetSort(newestFirst))
		if err != nil {
			return err
		}
		return cur.All(ctx, &docs)
	})
	if err != nil {
		return nil, err
	}

	out := make([]booking.Booking, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toBooking())
	}
	return out, nil
}

func (r *BookingsRepo) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	eventOID, ok := parseID(eventID)
	if !ok {
		return 0, nil
	}

	coll, err := r.collection(ctx, bookingsCollection)
	if err != nil {
		return 0, err
	}

	var n int64
	err = r.observe("bookings.count_by_event", func() error {
		var err error
		n, err = coll.CountDocuments(ctx, bson.M{"eventId": eventOID})
		return err
	})
	return n, err
}

func (r *BookingsRepo) Delete(ctx context.Context, id string) error {
	oid, ok := parseID(id)
	if !ok {
		return booking.ErrNotFound
	}

	coll, err := r.collection(ctx, bookingsCollection)
	if err != nil {
		return err
	}

	var res *mongo.DeleteResult
	err = r.observe("bookings.delete", func() error {
		var err error
		res, err = coll.DeleteOne(ctx, bson.M{"_id": oid})
		return err
	})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return booking.ErrNotFound
	}

	return nil
}

func (r *BookingsRepo) DeleteByEvent(ctx context.Context, eventID string) (int64, error) {
	eventOID, ok := parseID(eventID)
	if !ok {
		return 0, nil
	}

	coll, err := r.collection(ctx, bookingsCollection)
	if err != nil {
		return 0, err
	}

	var res *mongo.DeleteResult
	err = r.observe("bookings.delete_by_event", func() error {
		var err error
		res, err = coll.DeleteMany(ctx, bson.M{"eventId": eventOID})
		return err
	})
	if err != nil {
		return 0, err
	}

	return res.DeletedCount, nil
}

func mapBookingErr(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return booking.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return booking.ErrAlreadyBooked
	default:
		return err
	}
}
