package mongodb

import (
	"time"

	"github.com/geocoder89/eventbooking/internal/domain/booking"
	"github.com/geocoder89/eventbooking/internal/domain/event"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type eventDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Title       string             `bson:"title"`
	Slug        string             `bson:"slug"`
	Description string             `bson:"description"`
	Overview    string             `bson:"overview"`
	Image       string             `bson:"image"`
	Venue       string             `bson:"venue"`
	Location    string             `bson:"location"`
	Date        string             `bson:"date"`
	Time        string             `bson:"time"`
	Mode        string             `bson:"mode"`
	Audience    string             `bson:"audience"`
	Agenda      []string           `bson:"agenda"`
	Organizer   string             `bson:"organizer"`
	Tags        []string           `bson:"tags"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func toEventDoc(id primitive.ObjectID, e event.Event) eventDoc {
	return eventDoc{
		ID:          id,
		Title:       e.Title,
		Slug:        e.Slug,
		Description: e.Description,
		Overview:    e.Overview,
		Image:       e.Image,
		Venue:       e.Venue,
		Location:    e.Location,
		Date:        e.Date,
		Time:        e.Time,
		Mode:        e.Mode,
		Audience:    e.Audience,
		Agenda:      e.Agenda,
		Organizer:   e.Organizer,
		Tags:        e.Tags,
		CreatedAt:   e.CreatedAt.UTC(),
		UpdatedAt:   e.UpdatedAt.UTC(),
	}
}

func (d eventDoc) toEvent() event.Event {
	return event.Event{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Slug:        d.Slug,
		Description: d.Description,
		Overview:    d.Overview,
		Image:       d.Image,
		Venue:       d.Venue,
		Location:    d.Location,
		Date:        d.Date,
		Time:        d.Time,
		Mode:        d.Mode,
		Audience:    d.Audience,
		Agenda:      d.Agenda,
		Organizer:   d.Organizer,
		Tags:        d.Tags,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type bookingDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	EventID   primitive.ObjectID `bson:"eventId"`
	Email     string             `bson:"email"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func toBookingDoc(id, eventID primitive.ObjectID, b booking.Booking) bookingDoc {
	return bookingDoc{
		ID:        id,
		EventID:   eventID,
		Email:     b.Email,
		CreatedAt: b.CreatedAt.UTC(),
		UpdatedAt: b.UpdatedAt.UTC(),
	}
}

func (d bookingDoc) toBooking() booking.Booking {
	return booking.Booking{
		ID:        d.ID.Hex(),
		EventID:   d.EventID.Hex(),
		Email:     d.Email,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
