package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoConfig struct {
	URI                    string
	MaxPoolSize            uint64
	ServerSelectionTimeout time.Duration
	SocketIdleTimeout      time.Duration
	BufferCommands         bool
}

func NewMongoCache(cfg MongoConfig, log *slog.Logger, obs Observer) *Cache[*mongo.Client] {
	return NewCache(MongoDialer(cfg, log), CloseMongo, Options{
		Name:           "mongo",
		BufferCommands: cfg.BufferCommands,
		Logger:         log,
		Observer:       obs,
	})
}

func MongoDialer(cfg MongoConfig, log *slog.Logger) DialFunc[*mongo.Client] {
	return func(ctx context.Context) (*mongo.Client, error) {
		opts := options.Client().
			ApplyURI(cfg.URI).
			SetMaxPoolSize(cfg.MaxPoolSize).
			SetServerSelectionTimeout(cfg.ServerSelectionTimeout).
			SetMaxConnIdleTime(cfg.SocketIdleTimeout).
			SetServerMonitor(transportMonitor(log))

		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}

		err = client.Ping(ctx, readpref.Primary())
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("ping mongo: %w", err)
		}

		return client, nil
	}
}

func CloseMongo(ctx context.Context, client *mongo.Client) error {
	return client.Disconnect(ctx)
}

// transportMonitor only logs; connection state is owned by the Cache.
func transportMonitor(log *slog.Logger) *event.ServerMonitor {
	if log == nil {
		log = slog.Default()
	}

	return &event.ServerMonitor{
		ServerOpening: func(e *event.ServerOpeningEvent) {
			log.Debug("mongo server opening", "address", e.Address.String())
		},
		ServerClosed: func(e *event.ServerClosedEvent) {
			log.Info("mongo server closed", "address", e.Address.String())
		},
		ServerHeartbeatFailed: func(e *event.ServerHeartbeatFailedEvent) {
			log.Warn("mongo heartbeat failed", "connection_id", e.ConnectionID, "err", e.Failure)
		},
	}
}
