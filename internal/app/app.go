package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geocoder89/eventbooking/internal/config"
	"github.com/geocoder89/eventbooking/internal/db"
	"github.com/geocoder89/eventbooking/internal/observability"
	"github.com/geocoder89/eventbooking/internal/repo/memory"
	"github.com/geocoder89/eventbooking/internal/repo/mongodb"
	"github.com/geocoder89/eventbooking/internal/repo/postgres"
	"github.com/geocoder89/eventbooking/internal/service"
)

// App is the assembled data-access layer for one configured backend.
type App struct {
	Events   *service.Events
	Bookings *service.Bookings

	status  func() db.Status
	release func(context.Context) error
}

// Open connects the configured backend, declares its indexes and builds the
// services on top of it. prom may be nil.
func Open(ctx context.Context, cfg config.DBConfig, log *slog.Logger, prom *observability.Prom) (*App, error) {
	var (
		obs          db.Observer
		vobs         service.ValidationObserver
		eventStore   service.EventStore
		bookingStore service.BookingStore
	)
	a := &App{}
	if prom != nil {
		obs = prom
		vobs = prom
	}

	switch cfg.Driver {
	case config.DriverMongo:
		cache := db.NewMongoCache(db.MongoConfig{
			URI:                    cfg.MongoURI,
			MaxPoolSize:            uint64(cfg.MaxPoolSize),
			ServerSelectionTimeout: cfg.ServerSelectionTimeout,
			SocketIdleTimeout:      cfg.SocketIdleTimeout,
			BufferCommands:         cfg.BufferCommands,
		}, log, obs)

		client, err := cache.Acquire(ctx)
		if err != nil {
			return nil, err
		}

		err = mongodb.EnsureIndexes(ctx, client.Database(cfg.MongoDatabase))
		if err != nil {
			_ = cache.Release(context.WithoutCancel(ctx))
			return nil, err
		}

		handle := mongodb.DatabaseFrom(cache, cfg.MongoDatabase)
		eventStore = mongodb.NewEventsRepo(handle, prom)
		bookingStore = mongodb.NewBookingsRepo(handle, prom)
		a.status = cache.Status
		a.release = cache.Release

	case config.DriverPostgres:
		cache := db.NewPostgresCache(db.PostgresConfig{
			URL:               cfg.PostgresURL,
			MaxConns:          int32(cfg.MaxPoolSize),
			ConnectTimeout:    cfg.ServerSelectionTimeout,
			SocketIdleTimeout: cfg.SocketIdleTimeout,
			BufferCommands:    cfg.BufferCommands,
		}, log, obs)

		pool, err := cache.Acquire(ctx)
		if err != nil {
			return nil, err
		}

		err = postgres.Migrate(ctx, pool)
		if err != nil {
			_ = cache.Release(context.WithoutCancel(ctx))
			return nil, err
		}

		handle := postgres.PoolFrom(cache)
		eventStore = postgres.NewEventsRepo(handle, prom)
		bookingStore = postgres.NewBookingsRepo(handle, prom)
		a.status = cache.Status
		a.release = cache.Release

	case config.DriverMemory:
		eventStore = memory.NewEventsRepo()
		bookingStore = memory.NewBookingsRepo()
		a.status = func() db.Status { return db.StatusConnected }
		a.release = func(context.Context) error { return nil }

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.Driver)
	}

	a.Events = service.NewEvents(eventStore, bookingStore, log, vobs)
	a.Bookings = service.NewBookings(bookingStore, eventStore, log, vobs)

	return a, nil
}

// Ready is the readiness probe for the ops server.
func (a *App) Ready() (string, bool) {
	s := a.status()
	return s.String(), s == db.StatusConnected
}

// Close releases the backend connection. Safe to call more than once.
func (a *App) Close(ctx context.Context) error {
	return a.release(ctx)
}
