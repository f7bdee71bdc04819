package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/geocoder89/eventbooking/internal/domain/booking"
	"github.com/geocoder89/eventbooking/internal/domain/event"
	"github.com/geocoder89/eventbooking/internal/validation"
	"go.opentelemetry.io/otel/attribute"
)

type Bookings struct {
	store  BookingStore
	events EventStore
	log    *slog.Logger
	obs    ValidationObserver
	now    func() time.Time
}

// NewBookings wires the booking service; events backs both the reference
// check and population. obs may be nil.
func NewBookings(store BookingStore, events EventStore, log *slog.Logger, obs ValidationObserver) *Bookings {
	if log == nil {
		log = slog.Default()
	}

	return &Bookings{
		store:  store,
		events: events,
		log:    log,
		obs:    obs,
		now:    time.Now,
	}
}

// Validate is the first phase of a save. It reads the events store once when
// the eventId is new or changed.
func (s *Bookings) Validate(ctx context.Context, candidate booking.Booking, prev *booking.Booking) (booking.Booking, error) {
	b, err := booking.Validate(ctx, candidate, prev, s.events)
	if err != nil {
		s.observe(err)
		return booking.Booking{}, err
	}
	return b, nil
}

func (s *Bookings) Create(ctx context.Context, candidate booking.Booking) (saved booking.Booking, err error) {
	ctx, span := startSpan(ctx, "bookings.create", attribute.String("event.id", candidate.EventID))
	defer func() { endSpan(span, err) }()

	b, err := s.Validate(ctx, candidate, nil)
	if err != nil {
		return booking.Booking{}, err
	}

	now := s.now().UTC()
	b.ID = ""
	b.CreatedAt = now
	b.UpdatedAt = now

	saved, err = s.store.Insert(ctx, b)
	if err != nil {
		return booking.Booking{}, err
	}

	span.SetAttributes(attribute.String("booking.id", saved.ID))
	s.log.InfoContext(ctx, "booking created", "booking_id", saved.ID, "event_id", saved.EventID)
	return saved, nil
}

func (s *Bookings) Update(ctx context.Context, id string, candidate booking.Booking) (saved booking.Booking, err error) {
	ctx, span := startSpan(ctx, "bookings.update", attribute.String("booking.id", id))
	defer func() { endSpan(span, err) }()

	prev, err := s.store.GetByID(ctx, id)
	if err != nil {
		return booking.Booking{}, err
	}

	b, err := s.Validate(ctx, candidate, &prev)
	if err != nil {
		return booking.Booking{}, err
	}

	b.ID = prev.ID
	b.CreatedAt = prev.CreatedAt
	b.UpdatedAt = s.now().UTC()

	saved, err = s.store.Replace(ctx, b)
	if err != nil {
		return booking.Booking{}, err
	}

	s.log.InfoContext(ctx, "booking updated", "booking_id", saved.ID, "event_id", saved.EventID)
	return saved, nil
}

func (s *Bookings) Get(ctx context.Context, id string) (booking.Booking, error) {
	return s.store.GetByID(ctx, id)
}

// GetWithEvent loads a booking and populates its event. A dangling reference
// yields a nil Event rather than an error.
func (s *Bookings) GetWithEvent(ctx context.Context, id string) (booking.WithEvent, error) {
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return booking.WithEvent{}, err
	}

	e, err := s.events.GetByID(ctx, b.EventID)
	if errors.Is(err, event.ErrNotFound) {
		return booking.WithEvent{Booking: b}, nil
	}
	if err != nil {
		return booking.WithEvent{}, err
	}

	return booking.WithEvent{Booking: b, Event: &e}, nil
}

func (s *Bookings) ListByEvent(ctx context.Context, eventID string) ([]booking.Booking, error) {
	return s.store.ListByEvent(ctx, eventID)
}

func (s *Bookings) CountForEvent(ctx context.Context, eventID string) (int64, error) {
	return s.store.CountByEvent(ctx, eventID)
}

func (s *Bookings) Delete(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "booking deleted", "booking_id", id)
	return nil
}

func (s *Bookings) observe(err error) {
	if s.obs == nil {
		return
	}

	var refErr *booking.ReferenceError
	switch {
	case errors.As(err, &refErr):
		s.obs.ObserveValidation("booking", "reference")
	default:
		if _, ok := validation.AsError(err); ok {
			s.obs.ObserveValidation("booking", "field")
		}
	}
}
