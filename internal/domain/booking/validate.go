package booking

import (
	"context"
	"fmt"
	"strings"

	"github.com/geocoder89/eventbooking/internal/validation"
)

const entity = "booking"

// ReferenceError reports a booking whose eventId could not be confirmed.
// Err is ErrEventNotFound when the event is missing, otherwise the lookup
// failure.
type ReferenceError struct {
	EventID string
	Message string
	Err     error
}

func (e *ReferenceError) Error() string {
	return "eventId: " + e.Message
}

func (e *ReferenceError) Unwrap() error {
	return e.Err
}

// Validate normalizes the email of candidate and checks its fields. prev is
// the stored version of the booking or nil on create; the event reference is
// only looked up when eventId is new or changed.
func Validate(ctx context.Context, candidate Booking, prev *Booking, events EventLookup) (Booking, error) {
	b := candidate
	b.EventID = strings.TrimSpace(b.EventID)
	b.Email = strings.ToLower(strings.TrimSpace(b.Email))

	err := validation.Struct(entity, b)
	if err != nil {
		return Booking{}, err
	}

	if prev != nil && b.EventID == prev.EventID {
		return b, nil
	}

	err = checkReference(ctx, events, b.EventID)
	if err != nil {
		return Booking{}, err
	}

	return b, nil
}

func checkReference(ctx context.Context, events EventLookup, eventID string) error {
	exists, err := events.Exists(ctx, eventID)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "unknown error"
		}
		return &ReferenceError{
			EventID: eventID,
			Message: "failed to validate event reference: " + msg,
			Err:     err,
		}
	}

	if !exists {
		return &ReferenceError{
			EventID: eventID,
			Message: fmt.Sprintf("event with ID %s does not exist", eventID),
			Err:     ErrEventNotFound,
		}
	}

	return nil
}
