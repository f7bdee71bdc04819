package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresConfig struct {
	URL               string
	MaxConns          int32
	ConnectTimeout    time.Duration
	SocketIdleTimeout time.Duration
	BufferCommands    bool
}

func NewPostgresCache(cfg PostgresConfig, log *slog.Logger, obs Observer) *Cache[*pgxpool.Pool] {
	return NewCache(PostgresDialer(cfg), ClosePostgres, Options{
		Name:           "postgres",
		ConnectTimeout: cfg.ConnectTimeout,
		BufferCommands: cfg.BufferCommands,
		Logger:         log,
		Observer:       obs,
	})
}

func PostgresDialer(cfg PostgresConfig) DialFunc[*pgxpool.Pool] {
	return func(ctx context.Context) (*pgxpool.Pool, error) {
		poolCfg, err := pgxpool.ParseConfig(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse pgx config: %w", err)
		}

		if cfg.MaxConns > 0 {
			poolCfg.MaxConns = cfg.MaxConns
		}
		if cfg.SocketIdleTimeout > 0 {
			poolCfg.MaxConnIdleTime = cfg.SocketIdleTimeout
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("create pool: %w", err)
		}

		err = pool.Ping(ctx)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}

		return pool, nil
	}
}

func ClosePostgres(_ context.Context, pool *pgxpool.Pool) error {
	pool.Close()
	return nil
}
