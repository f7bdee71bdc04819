package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/geocoder89/eventbooking/internal/domain/event"
	"github.com/google/uuid"
)

// EventsRepo keeps events in a map and enforces the unique slug index the
// database backends declare.
type EventsRepo struct {
	mu    sync.RWMutex
	items map[string]event.Event
}

func NewEventsRepo() *EventsRepo {
	return &EventsRepo{
		items: make(map[string]event.Event),
	}
}

func (r *EventsRepo) Insert(_ context.Context, e event.Event) (event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slugTaken(e.Slug, "") {
		return event.Event{}, event.ErrDuplicateSlug
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	r.items[e.ID] = clone(e)

	return clone(e), nil
}

func (r *EventsRepo) Replace(_ context.Context, e event.Event) (event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[e.ID]; !ok {
		return event.Event{}, event.ErrNotFound
	}
	if r.slugTaken(e.Slug, e.ID) {
		return event.Event{}, event.ErrDuplicateSlug
	}

	r.items[e.ID] = clone(e)
	return clone(e), nil
}

func (r *EventsRepo) GetByID(_ context.Context, id string) (event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.items[id]
	if !ok {
		return event.Event{}, event.ErrNotFound
	}
	return clone(e), nil
}

func (r *EventsRepo) GetBySlug(_ context.Context, slug string) (event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.items {
		if e.Slug == slug {
			return clone(e), nil
		}
	}
	return event.Event{}, event.ErrNotFound
}

func (r *EventsRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[id]
	return ok, nil
}

func (r *EventsRepo) List(_ context.Context, f event.ListFilter) ([]event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]event.Event, 0, len(r.items))
	for _, e := range r.items {
		if f.Mode != nil && e.Mode != *f.Mode {
			continue
		}
		out = append(out, clone(e))
	}

	return page(newestFirst(out), f.Offset, f.Limit), nil
}

func (r *EventsRepo) ListByTags(_ context.Context, tags []string, excludeID string, limit int) ([]event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]event.Event, 0)
	for _, e := range r.items {
		if e.ID == excludeID || !e.SharesTag(tags) {
			continue
		}
		out = append(out, clone(e))
	}

	return page(newestFirst(out), 0, limit), nil
}

func (r *EventsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return event.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// caller holds the lock
func (r *EventsRepo) slugTaken(slug, selfID string) bool {
	for id, e := range r.items {
		if id != selfID && e.Slug == slug {
			return true
		}
	}
	return false
}

func clone(e event.Event) event.Event {
	e.Agenda = slices.Clone(e.Agenda)
	e.Tags = slices.Clone(e.Tags)
	return e
}

func newestFirst(events []event.Event) []event.Event {
	sort.Slice(events, func(i, j int) bool {
		if events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].ID > events[j].ID
		}
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
