package booking

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/eventbooking/internal/domain/event"
)

type Booking struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId" validate:"required"`
	Email     string    `json:"email" validate:"required,email_simple,max=254"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WithEvent is a booking with its referenced event populated. Event is nil
// when the event has been deleted since the booking was made.
type WithEvent struct {
	Booking
	Event *event.Event `json:"event"`
}

// EventLookup checks whether an event exists.
type EventLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

var (
	ErrNotFound = errors.New("booking not found")
	// the (eventId, email) pair is already taken
	ErrAlreadyBooked = errors.New("this email is already booked for this event")
	ErrEventNotFound = errors.New("referenced event does not exist")
)
