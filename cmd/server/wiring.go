package main

import (
	"context"
	"fmt"
	"log/slog"

	"voterdata/internal/audit"
	"voterdata/internal/platform/config"
	"voterdata/internal/platform/httpserver"
	"voterdata/internal/platform/kafka"
	"voterdata/internal/platform/mongo"
	"voterdata/internal/platform/postgres"
	redisclient "voterdata/internal/platform/redis"
	"voterdata/internal/voter/cache"
	"voterdata/internal/voter/importer"
	"voterdata/internal/voter/providers/live"
	"voterdata/internal/voter/providers/static"
	"voterdata/internal/voter/service"
	"voterdata/internal/voter/store"
	"voterdata/pkg/platform/circuit"
)

const (
	liveProviderID   = "third-party-api"
	staticProviderID = "static-dataset"
	auditQueueSize   = 1024
)

// voterStore is what every record store backend provides.
type voterStore interface {
	service.Store
	importer.Store
	Health(ctx context.Context) error
}

func buildStore(ctx context.Context, cfg config.Config, closers *closeStack) (voterStore, error) {
	switch cfg.Store.Backend {
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		closers.push("postgres", db.Close)
		if err := store.EnsurePostgresSchema(ctx, db); err != nil {
			return nil, fmt.Errorf("ensure postgres schema: %w", err)
		}
		return store.NewPostgres(db), nil
	case config.StoreMongo:
		client, err := mongo.Connect(ctx, cfg.Store.MongoURL)
		if err != nil {
			return nil, err
		}
		closers.push("mongo", func() error { return client.Disconnect(context.Background()) })
		coll := client.Database(cfg.Store.MongoDatabase).Collection(store.DefaultMongoCollection)
		if err := store.EnsureMongoIndexes(ctx, coll); err != nil {
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		return store.NewMongo(coll), nil
	default:
		return store.NewInMemory(), nil
	}
}

func buildCache(ctx context.Context, cfg config.Config, closers *closeStack) (service.Cache, map[string]httpserver.Check, error) {
	checks := map[string]httpserver.Check{}
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		client, err := redisclient.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		closers.push("redis", client.Close)
		checks["cache"] = client.Health
		return cache.NewRedisCache(client.Client, cfg.Cache.TTL), checks, nil
	case config.CacheMemory:
		return cache.NewInMemoryCache(cfg.Cache.TTL), checks, nil
	default:
		return nil, checks, nil
	}
}

func buildSource(cfg config.Config, log *slog.Logger) (service.Source, error) {
	if cfg.Source.Mode == config.SourceStatic {
		src, err := static.Load(staticProviderID, cfg.Source.StaticDataPath)
		if err != nil {
			return nil, fmt.Errorf("load static dataset: %w", err)
		}
		return src, nil
	}

	breaker := circuit.New(liveProviderID,
		circuit.WithFailureThreshold(cfg.Source.FailureThreshold),
		circuit.WithSuccessThreshold(cfg.Source.SuccessThreshold),
		circuit.WithCooldown(cfg.Source.Cooldown),
	)
	return live.New(liveProviderID, cfg.Source.APIURL, cfg.Source.APIKey, cfg.Source.Timeout,
		live.WithBreaker(breaker),
		live.WithLogger(log),
	), nil
}

// buildAudit returns the sink lifecycle events are appended to and, when
// events go to Kafka, the worker that must run to deliver them.
func buildAudit(ctx context.Context, cfg config.Config, log *slog.Logger, closers *closeStack) (audit.Sink, *audit.Worker, error) {
	if !cfg.Kafka.Enabled() {
		return audit.NewLogSink(log), nil, nil
	}

	client, err := kafka.NewProducer(cfg.Kafka.Brokers)
	if err != nil {
		return nil, nil, err
	}
	closers.push("kafka", func() error {
		client.Close()
		return nil
	})
	if err := kafka.EnsureTopic(ctx, client, cfg.Kafka.AuditTopic, 1, 1); err != nil {
		log.WarnContext(ctx, "could not ensure audit topic",
			"topic", cfg.Kafka.AuditTopic,
			"error", err,
		)
	}

	queue := audit.NewQueue(auditQueueSize)
	return queue, audit.NewWorker(audit.NewKafkaSink(client, cfg.Kafka.AuditTopic), queue, log), nil
}

type closer struct {
	name string
	fn   func() error
}

// closeStack closes resources in reverse order of acquisition.
type closeStack []closer

func (s *closeStack) push(name string, fn func() error) {
	*s = append(*s, closer{name: name, fn: fn})
}

func (s closeStack) closeAll(log *slog.Logger) {
	for i := len(s) - 1; i >= 0; i-- {
		if err := s[i].fn(); err != nil {
			log.Warn("failed to close resource", "resource", s[i].name, "error", err)
		}
	}
}
