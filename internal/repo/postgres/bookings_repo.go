package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/eventbooking/internal/domain/booking"
	"github.com/geocoder89/eventbooking/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const bookingColumns = `id, event_id, email, created_at, updated_at`

type BookingsRepo struct {
	base
}

func NewBookingsRepo(handle HandleFunc, prom *observability.Prom) *BookingsRepo {
	return &BookingsRepo{
		base: base{handle: handle, prom: prom},
	}
}

func (r *BookingsRepo) Insert(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	if !validID(b.EventID) {
		return booking.Booking{}, booking.ErrEventNotFound
	}

	pool, err := r.handle(ctx)
	if err != nil {
		return booking.Booking{}, err
	}

	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	err = r.observe("bookings.insert", func() error {
		_, err := pool.Exec(ctx, `INSERT INTO bookings(`+bookingColumns+`) VALUES ($1,$2,$3,$4,$5)`,
			b.ID, b.EventID, b.Email, b.CreatedAt, b.UpdatedAt)
		return err
	})
	if err != nil {
		return booking.Booking{}, mapBookingErr(err)
	}

	return b, nil
}

func (r *BookingsRepo) Replace(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	if !validID(b.ID) {
		return booking.Booking{}, booking.ErrNotFound
	}
	if !validID(b.EventID) {
		return booking.Booking{}, booking.ErrEventNotFound
	}

	pool, err := r.handle(ctx)
	if err != nil {
		return booking.Booking{}, err
	}

	var out booking.Booking
	err = r.observe("bookings.replace", func() error {
		return scanBooking(pool.QueryRow(ctx, `UPDATE bookings
			SET event_id = $2,
				email = $3,
				updated_at = $4
			WHERE id = $1
			RETURNING `+bookingColumns,
			b.ID, b.EventID, b.Email, b.UpdatedAt,
		), &out)
	})
	if err != nil {
		return booking.Booking{}, mapBookingErr(err)
	}

	return out, nil
}

func (r *BookingsRepo) GetByID(ctx context.Context, id string) (booking.Booking, error) {
	if !validID(id) {
		return booking.Booking{}, booking.ErrNotFound
	}

	pool, err := r.handle(ctx)
	if err != nil {
		return booking.Booking{}, err
	}

	var b booking.Booking
	err = r.observe("bookings.get_by_id", func() error {
		return scanBooking(pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id), &b)
	})
	if err != nil {
		return booking.Booking{}, mapBookingErr(err)
	}

	return b, nil
}

func (r *BookingsRepo) ListByEvent(ctx context.Context, eventID string) ([]booking.Booking, error) {
	out := make([]booking.Booking, 0)
	if !validID(eventID) {
		return out, nil
	}

	pool, err := r.handle(ctx)
	if err != nil {
		return nil, err
	}

	err = r.observe("bookings.list_by_event", func() error {
		rows, err := pool.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
			WHERE event_id = $1
			ORDER BY created_at DESC, id DESC`, eventID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var b booking.Booking
			if err := scanBooking(rows, &b); err != nil {
				return err
			}
			out = append(out, b)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *BookingsRepo) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	if !validID(eventID) {
		return 0, nil
	}

	pool, err := r.handle(ctx)
	if err != nil {
		return 0, err
	}

	var n int64
	err = r.observe("bookings.count_by_event", func() error {
		return pool.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE event_id = $1`, eventID).Scan(&n)
	})
	return n, err
}

func (r *BookingsRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return booking.ErrNotFound
	}

	pool, err := r.handle(ctx)
	if err != nil {
		return err
	}

	var affected int64
	err = r.observe("bookings.delete", func() error {
		tag, err := pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return booking.ErrNotFound
	}

	return nil
}

func (r *BookingsRepo) DeleteByEvent(ctx context.Context, eventID string) (int64, error) {
	if !validID(eventID) {
		return 0, nil
	}

	pool, err := r.handle(ctx)
	if err != nil {
		return 0, err
	}

	var affected int64
	err = r.observe("bookings.delete_by_event", func() error {
		tag, err := pool.Exec(ctx, `DELETE FROM bookings WHERE event_id = $1`, eventID)
		affected = tag.RowsAffected()
		return err
	})
	return affected, err
}

func scanBooking(row pgx.Row, b *booking.Booking) error {
	return row.Scan(&b.ID, &b.EventID, &b.Email, &b.CreatedAt, &b.UpdatedAt)
}

func mapBookingErr(err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return booking.ErrNotFound
	case uniqueViolation(err, "bookings_event_email_key"):
		return booking.ErrAlreadyBooked
	default:
		return err
	}
}
