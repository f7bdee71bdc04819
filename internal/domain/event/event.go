package event

import (
	"errors"
	"slices"
	"strings"
	"time"
)

const (
	ModeOnline  = "online"
	ModeOffline = "offline"
	ModeHybrid  = "hybrid"
)

// Event is the stored form of an event. Slug, Date and Time are derived by
// Normalize and should not be set by callers.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required,max=200"`
	Slug        string    `json:"slug"`
	Description string    `json:"description" validate:"required,max=2000"`
	Overview    string    `json:"overview" validate:"required,max=1000"`
	Image       string    `json:"image" validate:"required"`
	Venue       string    `json:"venue" validate:"required"`
	Location    string    `json:"location" validate:"required"`
	Date        string    `json:"date" validate:"required"`
	Time        string    `json:"time" validate:"required"`
	Mode        string    `json:"mode" validate:"required,oneof=online offline hybrid"`
	Audience    string    `json:"audience" validate:"required"`
	Agenda      []string  `json:"agenda" validate:"min=1"`
	Organizer   string    `json:"organizer" validate:"required"`
	Tags        []string  `json:"tags" validate:"min=1"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// with pointers if optional, it will be nil
type ListFilter struct {
	Mode   *string
	Limit  int
	Offset int
}

var (
	ErrNotFound      = errors.New("event not found")
	ErrDuplicateSlug = errors.New("an event with this slug already exists")
	ErrHasBookings   = errors.New("event still has bookings")
)

func (e Event) trimmed() Event {
	out := e
	out.Title = strings.TrimSpace(e.Title)
	out.Description = strings.TrimSpace(e.Description)
	out.Overview = strings.TrimSpace(e.Overview)
	out.Image = strings.TrimSpace(e.Image)
	out.Venue = strings.TrimSpace(e.Venue)
	out.Location = strings.TrimSpace(e.Location)
	out.Date = strings.TrimSpace(e.Date)
	out.Time = strings.TrimSpace(e.Time)
	out.Mode = strings.TrimSpace(e.Mode)
	out.Audience = strings.TrimSpace(e.Audience)
	out.Organizer = strings.TrimSpace(e.Organizer)
	out.Agenda = slices.Clone(e.Agenda)
	out.Tags = slices.Clone(e.Tags)
	return out
}

// SharesTag reports whether e carries at least one of tags.
func (e Event) SharesTag(tags []string) bool {
	for _, t := range e.Tags {
		if slices.Contains(tags, t) {
			return true
		}
	}
	return false
}
