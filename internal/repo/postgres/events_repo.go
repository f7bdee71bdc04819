package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/eventbooking/internal/domain/event"
	"github.com/geocoder89/eventbooking/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const eventColumns = `id, title, slug, description, overview, image, venue, location,
	date, time, mode, audience, agenda, organizer, tags, created_at, updated_at`

type EventsRepo struct {
	base
}

func NewEventsRepo(handle HandleFunc, prom *observability.Prom) *EventsRepo {
	return &EventsRepo{
		base: base{handle: handle, prom: prom},
	}
}

func (r *EventsRepo) Insert(ctx context.Context, e event.Event) (event.Event, error) {
	pool, err := r.handle(ctx)
	if err != nil {
		return event.Event{}, err
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	err = r.observe("events.insert", func() error {
		_, err := pool.Exec(ctx, `INSERT INTO events(`+eventColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
			e.ID, e.Title, e.Slug, e.Description, e.Overview, e.Image, e.Venue, e.Location,
			e.Date, e.Time, e.Mode, e.Audience, e.Agenda, e.Organizer, e.Tags, e.CreatedAt, e.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return event.Event{}, mapEventErr(err)
	}

	return e, nil
}

func (r *EventsRepo) Replace(ctx context.Context, e event.Event) (event.Event, error) {
	if !validID(e.ID) {
		return event.Event{}, event.ErrNotFound
	}

	pool, err := r.handle(ctx)
	if err != nil {
		return event.Event{}, err
	}

	var out event.Event
	err = r.observe("events.replace", func() error {
		return scanEvent(pool.QueryRow(ctx, `UPDATE events
			SET title = $2,
				slug = $3,
				description = $4,
				overview = $5,
				image = $6,
				venue = $7,
				location = $8,
				date = $9,
				time = $10,
				mode = $11,
				audience = $12,
				agenda = $13,
				organizer = $14,
				tags = $15,
				updated_at = $16
			WHERE id = $1
			RETURNING `+eventColumns,
			e.ID, e.Title, e.Slug, e.Description, e.Overview, e.Image, e.Venue, e.Location,
			e.Date, e.Time, e.Mode, e.Audience, e.Agenda, e.Organizer, e.Tags, e.UpdatedAt,
		), &out)
	})
	if err != nil {
		return event.Event{}, mapEventErr(err)
	}

	return out, nil
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (event.Event, error) {
	if !validID(id) {
		return event.Event{}, event.ErrNotFound
	}
	return r.getOne(ctx, "events.get_by_id", `WHERE id = $1`, id)
}

func (r *EventsRepo) GetBySlug(ctx context.Context, slug string) (event.Event, error) {
	return r.getOne(ctx, "events.get_by_slug", `WHERE slug = $1`, slug)
}

func (r *EventsRepo) getOne(ctx context.Context, op, where string, arg any) (event.Event, error) {
	pool, err := r.handle(ctx)
	if err != nil {
		return event.Event{}, err
	}

	var e event.Event
	err = r.observe(op, func() error {
		return scanEvent(pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events `+where, arg), &e)
	})
	if err != nil {
		return event.Event{}, mapEventErr(err)
	}

	return e, nil
}

func (r *EventsRepo) Exists(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}

	pool, err := r.handle(ctx)
	if err != nil {
		return false, err
	}

	var exists bool
	err = r.observe("events.exists", func() error {
		return pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists)
	})
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *EventsRepo) List(ctx context.Context, f event.ListFilter) ([]event.Event, error) {
	var conds []string
	var args []any

	argsPosition := 1

	if f.Mode != nil {
		conds = append(conds, fmt.Sprintf("mode = $%d", argsPosition))
		args = append(args, *f.Mode)
		argsPosition++
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// stable ordering for pagination
	query += " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argsPosition)
		args = append(args, f.Limit)
		argsPosition++
	}
	query += fmt.Sprintf(" OFFSET $%d", argsPosition)
	args = append(args, f.Offset)

	return r.query(ctx, "events.list", query, args...)
}

func (r *EventsRepo) ListByTags(ctx context.Context, tags []string, excludeID string, limit int) ([]event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE tags && $1`
	args := []any{tags}

	if validID(excludeID) {
		query += ` AND id <> $2`
		args = append(args, excludeID)
	}
	query += " ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	return r.query(ctx, "events.list_by_tags", query, args...)
}

func (r *EventsRepo) query(ctx context.Context, op, query string, args ...any) ([]event.Event, error) {
	pool, err := r.handle(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]event.Event, 0)
	err = r.observe(op, func() error {
		rows, err := pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var e event.Event
			if err := scanEvent(rows, &e); err != nil {
				return err
			}
			out = append(out, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *EventsRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return event.ErrNotFound
	}

	pool, err := r.handle(ctx)
	if err != nil {
		return err
	}

	var affected int64
	err = r.observe("events.delete", func() error {
		tag, err := pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if affected == 0 {
		return event.ErrNotFound
	}

	return nil
}

func scanEvent(row pgx.Row, e *event.Event) error {
	return row.Scan(
		&e.ID, &e.Title, &e.Slug, &e.Description, &e.Overview, &e.Image, &e.Venue, &e.Location,
		&e.Date, &e.Time, &e.Mode, &e.Audience, &e.Agenda, &e.Organizer, &e.Tags, &e.CreatedAt, &e.UpdatedAt,
	)
}

func mapEventErr(err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return event.ErrNotFound
	case uniqueViolation(err, "events_slug_key"):
		return event.ErrDuplicateSlug
	default:
		return err
	}
}
