package main

import (
	"context"
	"log/slog"

	mongodrv "go.mongodb.org/mongo-driver/mongo"

	"eventsapi/config"
	"eventsapi/internal/adapters/cache"
	"eventsapi/internal/adapters/publisher"
	"eventsapi/internal/domain"
	"eventsapi/internal/repository/mongodb"
	"eventsapi/internal/repository/postgres"
	"eventsapi/internal/services"
)

// app holds the wired dependencies of the server and the resources that must be released.
type app struct {
	events  domain.EventService
	closers []func(context.Context) error
}

func (a *app) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i](ctx)
	}
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{}
	repo, users, err := openStore(ctx, cfg, a)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	if cfg.UseRedisCache() {
		client, err := cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		users = cache.NewNameCache(client, users, cfg.NameCacheTTL, logger)
		logger.Info("creator name cache enabled", "ttl", cfg.NameCacheTTL)
	}

	var pub domain.EventPublisher = publisher.Nop{}
	if cfg.UseKafka() {
		pub = publisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		logger.Info("event changes enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("event changes disabled (KAFKA_BROKERS not set)")
	}
	a.closers = append(a.closers, func(context.Context) error { return pub.Close() })

	a.events = services.NewEventService(repo, users, pub, logger, cfg.RequestTimeout)
	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config, a *app) (domain.EventRepository, domain.UserDirectory, error) {
	backend, err := cfg.Backend()
	if err != nil {
		return nil, nil, err
	}
	switch backend {
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })
		return postgres.NewEventRepository(db), postgres.NewUserDirectory(db), nil
	default:
		db, err := connectMongo(ctx, cfg, a)
		if err != nil {
			return nil, nil, err
		}
		return mongodb.NewEventRepository(db), mongodb.NewUserDirectory(db), nil
	}
}

func connectMongo(ctx context.Context, cfg *config.Config, a *app) (*mongodrv.Database, error) {
	client, err := mongodb.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Disconnect)
	return client.Database(cfg.DBName), nil
}
