package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/eventbooking/internal/db"
	"github.com/geocoder89/eventbooking/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HandleFunc resolves the pool for a single operation.
type HandleFunc func(ctx context.Context) (*pgxpool.Pool, error)

func PoolFrom(cache *db.Cache[*pgxpool.Pool]) HandleFunc {
	return cache.Handle
}

type base struct {
	handle HandleFunc
	prom   *observability.Prom
}

func (b base) observe(op string, fn func() error) error {
	if b.prom != nil {
		return b.prom.ObserveDB(op, fn)
	}
	return fn()
}

// uniqueViolation reports whether err is a 23505 on the named constraint.
func uniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName == constraint
	}
	return false
}

func validID(id string) bool {
	return uuid.Validate(id) == nil
}
