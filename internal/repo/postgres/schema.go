package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id          UUID PRIMARY KEY,
	title       TEXT NOT NULL,
	slug        TEXT NOT NULL,
	description TEXT NOT NULL,
	overview    TEXT NOT NULL,
	image       TEXT NOT NULL,
	venue       TEXT NOT NULL,
	location    TEXT NOT NULL,
	date        TEXT NOT NULL,
	time        TEXT NOT NULL,
	mode        TEXT NOT NULL,
	audience    TEXT NOT NULL,
	agenda      TEXT[] NOT NULL,
	organizer   TEXT NOT NULL,
	tags        TEXT[] NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL,
	CONSTRAINT events_slug_key UNIQUE (slug)
);

CREATE INDEX IF NOT EXISTS events_date_mode_idx ON events (date, mode);
CREATE INDEX IF NOT EXISTS events_tags_idx ON events USING GIN (tags);

CREATE TABLE IF NOT EXISTS bookings (
	id         UUID PRIMARY KEY,
	event_id   UUID NOT NULL,
	email      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	CONSTRAINT bookings_event_email_key UNIQUE (event_id, email)
);

CREATE INDEX IF NOT EXISTS bookings_event_id_idx ON bookings (event_id);
CREATE INDEX IF NOT EXISTS bookings_event_created_idx ON bookings (event_id, created_at DESC);
CREATE INDEX IF NOT EXISTS bookings_email_idx ON bookings (email);
`

// Migrate creates the tables and indexes if they are missing. bookings.event_id
// has no foreign key: deleting an event is guarded by the service, and a
// booking may outlive its event.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
