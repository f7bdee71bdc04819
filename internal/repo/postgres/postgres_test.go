package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/geocoder89/eventbooking/internal/db"
	"github.com/geocoder89/eventbooking/internal/domain/booking"
	"github.com/geocoder89/eventbooking/internal/domain/event"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func TestErrorMapping(t *testing.T) {
	slugDup := &pgconn.PgError{Code: "23505", ConstraintName: "events_slug_key"}
	pairDup := &pgconn.PgError{Code: "23505", ConstraintName: "bookings_event_email_key"}
	pkDup := &pgconn.PgError{Code: "23505", ConstraintName: "events_pkey"}

	require.ErrorIs(t, mapEventErr(fmt.Errorf("insert: %w", slugDup)), event.ErrDuplicateSlug)
	require.ErrorIs(t, mapEventErr(pgx.ErrNoRows), event.ErrNotFound)
	require.ErrorIs(t, mapBookingErr(pairDup), booking.ErrAlreadyBooked)
	require.ErrorIs(t, mapBookingErr(pgx.ErrNoRows), booking.ErrNotFound)

	// a different constraint is not a slug clash
	require.Same(t, pkDup, mapEventErr(pkDup))
}

func TestMalformedIDsSkipTheDatabase(t *testing.T) {
	unreachable := func(context.Context) (*pgxpool.Pool, error) {
		return nil, errors.New("should not be called")
	}
	events := NewEventsRepo(unreachable, nil)
	bookings := NewBookingsRepo(unreachable, nil)
	ctx := context.Background()

	_, err := events.GetByID(ctx, "42")
	require.ErrorIs(t, err, event.ErrNotFound)

	ok, err := events.Exists(ctx, "42")
	require.NoError(t, err)
	require.False(t, ok)

	n, err := bookings.CountByEvent(ctx, "42")
	require.NoError(t, err)
	require.Zero(t, n)

	_, err = bookings.Insert(ctx, booking.Booking{EventID: "42", Email: "ada@example.com"})
	require.ErrorIs(t, err, booking.ErrEventNotFound)
}

func TestPoolFrom_NotConnected(t *testing.T) {
	cache := db.NewPostgresCache(db.PostgresConfig{URL: "postgres://localhost:1/none"}, nil, nil)
	repo := NewEventsRepo(PoolFrom(cache), nil)

	_, err := repo.GetBySlug(context.Background(), "go-meetup")
	require.ErrorIs(t, err, db.ErrNotConnected)
}
