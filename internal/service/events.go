package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/eventbooking/internal/domain/event"
	"github.com/geocoder89/eventbooking/internal/validation"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Events struct {
	store    EventStore
	bookings BookingStore
	log      *slog.Logger
	obs      ValidationObserver
	now      func() time.Time
}

// NewEvents wires the event service. obs may be nil.
func NewEvents(store EventStore, bookings BookingStore, log *slog.Logger, obs ValidationObserver) *Events {
	if log == nil {
		log = slog.Default()
	}

	return &Events{
		store:    store,
		bookings: bookings,
		log:      log,
		obs:      obs,
		now:      time.Now,
	}
}

// Normalize is the first phase of a save: it validates candidate and derives
// its slug, date and time without touching storage.
func (s *Events) Normalize(candidate event.Event, prev *event.Event) (event.Event, error) {
	e, err := event.Normalize(candidate, prev)
	if err != nil {
		if _, ok := validation.AsError(err); ok && s.obs != nil {
			s.obs.ObserveValidation("event", "field")
		}
		return event.Event{}, err
	}
	return e, nil
}

func (s *Events) Create(ctx context.Context, candidate event.Event) (saved event.Event, err error) {
	ctx, span := startSpan(ctx, "events.create")
	defer func() { endSpan(span, err) }()

	e, err := s.Normalize(candidate, nil)
	if err != nil {
		return event.Event{}, err
	}

	now := s.now().UTC()
	e.ID = ""
	e.CreatedAt = now
	e.UpdatedAt = now

	saved, err = s.store.Insert(ctx, e)
	if err != nil {
		return event.Event{}, err
	}

	span.SetAttributes(attribute.String("event.id", saved.ID))
	s.log.InfoContext(ctx, "event created", "event_id", saved.ID, "slug", saved.Slug)
	return saved, nil
}

func (s *Events) Update(ctx context.Context, id string, candidate event.Event) (saved event.Event, err error) {
	ctx, span := startSpan(ctx, "events.update", attribute.String("event.id", id))
	defer func() { endSpan(span, err) }()

	prev, err := s.store.GetByID(ctx, id)
	if err != nil {
		return event.Event{}, err
	}

	e, err := s.Normalize(candidate, &prev)
	if err != nil {
		return event.Event{}, err
	}

	e.ID = prev.ID
	e.CreatedAt = prev.CreatedAt
	e.UpdatedAt = s.now().UTC()

	saved, err = s.store.Replace(ctx, e)
	if err != nil {
		return event.Event{}, err
	}

	s.log.InfoContext(ctx, "event updated", "event_id", saved.ID, "slug", saved.Slug)
	return saved, nil
}

func (s *Events) Get(ctx context.Context, id string) (event.Event, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Events) GetBySlug(ctx context.Context, slug string) (event.Event, error) {
	return s.store.GetBySlug(ctx, slug)
}

func (s *Events) List(ctx context.Context, f event.ListFilter) ([]event.Event, error) {
	f.Limit = clampLimit(f.Limit)
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.store.List(ctx, f)
}

// SimilarBySlug returns events sharing at least one tag with the event
// identified by slug, excluding that event.
func (s *Events) SimilarBySlug(ctx context.Context, slug string, limit int) ([]event.Event, error) {
	e, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.store.ListByTags(ctx, e.Tags, e.ID, clampLimit(limit))
}

// Delete removes an event that no booking references. Use DeleteCascade to
// drop its bookings as well.
//
// The booking count and the delete are separate statements. A booking
// created between them survives the event and reads back through
// Bookings.GetWithEvent with a nil Event.
func (s *Events) Delete(ctx context.Context, id string) (err error) {
	ctx, span := startSpan(ctx, "events.delete", attribute.String("event.id", id))
	defer func() { endSpan(span, err) }()

	n, err := s.bookings.CountByEvent(ctx, id)
	if err != nil {
		return fmt.Errorf("count bookings: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %d booking(s)", event.ErrHasBookings, n)
	}

	err = s.store.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "event deleted", "event_id", id)
	return nil
}

// DeleteCascade removes the event's bookings and then the event. The two
// steps are not atomic; a failure between them leaves the event without
// bookings, never bookings without an event.
func (s *Events) DeleteCascade(ctx context.Context, id string) (err error) {
	ctx, span := startSpan(ctx, "events.delete_cascade", attribute.String("event.id", id))
	defer func() { endSpan(span, err) }()

	_, err = s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.bookings.DeleteByEvent(ctx, id)
	if err != nil {
		return fmt.Errorf("delete bookings: %w", err)
	}

	err = s.store.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "event deleted", "event_id", id, "bookings_deleted", n)
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
