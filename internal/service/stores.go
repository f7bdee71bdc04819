package service

import (
	"context"

	"github.com/geocoder89/eventbooking/internal/domain/booking"
	"github.com/geocoder89/eventbooking/internal/domain/event"
)

// EventStore persists events. Implementations enforce the unique slug index
// and report it as event.ErrDuplicateSlug.
type EventStore interface {
	Insert(ctx context.Context, e event.Event) (event.Event, error)
	Replace(ctx context.Context, e event.Event) (event.Event, error)
	GetByID(ctx context.Context, id string) (event.Event, error)
	GetBySlug(ctx context.Context, slug string) (event.Event, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, f event.ListFilter) ([]event.Event, error)
	ListByTags(ctx context.Context, tags []string, excludeID string, limit int) ([]event.Event, error)
	Delete(ctx context.Context, id string) error
}

// BookingStore persists bookings. Implementations enforce the unique
// (eventId, email) index and report it as booking.ErrAlreadyBooked.
type BookingStore interface {
	Insert(ctx context.Context, b booking.Booking) (booking.Booking, error)
	Replace(ctx context.Context, b booking.Booking) (booking.Booking, error)
	GetByID(ctx context.Context, id string) (booking.Booking, error)
	ListByEvent(ctx context.Context, eventID string) ([]booking.Booking, error)
	CountByEvent(ctx context.Context, eventID string) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteByEvent(ctx context.Context, eventID string) (int64, error)
}

// ValidationObserver counts rejected writes.
type ValidationObserver interface {
	ObserveValidation(entity, kind string)
}
