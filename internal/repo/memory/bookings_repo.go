package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/eventbooking/internal/domain/booking"
	"github.com/google/uuid"
)

// BookingsRepo enforces the (eventId, email) unique pair.
type BookingsRepo struct {
	mu    sync.RWMutex
	items map[string]booking.Booking
}

func NewBookingsRepo() *BookingsRepo {
	return &BookingsRepo{
		items: make(map[string]booking.Booking),
	}
}

func (r *BookingsRepo) Insert(_ context.Context, b booking.Booking) (booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pairTaken(b, "") {
		return booking.Booking{}, booking.ErrAlreadyBooked
	}

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	r.items[b.ID] = b
	return b, nil
}

func (r *BookingsRepo) Replace(_ context.Context, b booking.Booking) (booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[b.ID]; !ok {
		return booking.Booking{}, booking.ErrNotFound
	}
	if r.pairTaken(b, b.ID) {
		return booking.Booking{}, booking.ErrAlreadyBooked
	}

	r.items[b.ID] = b
	return b, nil
}

func (r *BookingsRepo) GetByID(_ context.Context, id string) (booking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.items[id]
	if !ok {
		return booking.Booking{}, booking.ErrNotFound
	}
	return b, nil
}

func (r *BookingsRepo) ListByEvent(_ context.Context, eventID string) ([]booking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]booking.Booking, 0)
	for _, b := range r.items {
		if b.EventID == eventID {
			out = append(out, b)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *BookingsRepo) CountByEvent(_ context.Context, eventID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, b := range r.items {
		if b.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (r *BookingsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return booking.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *BookingsRepo) DeleteByEvent(_ context.Context, eventID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, b := range r.items {
		if b.EventID == eventID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

// caller holds the lock
func (r *BookingsRepo) pairTaken(b booking.Booking, selfID string) bool {
	for id, other := range r.items {
		if id != selfID && other.EventID == b.EventID && other.Email == b.Email {
			return true
		}
	}
	return false
}
