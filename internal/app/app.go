// Package app opens the stores and catalogue shared by the server and the
// command line tools.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"echoreport/internal/cache"
	"echoreport/internal/config"
	"echoreport/internal/form"
	"echoreport/internal/repository"
	"echoreport/internal/repository/sqlite"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MemoryDrafts selects the in-process draft cache instead of Redis.
const MemoryDrafts = "memory"

type App struct {
	Catalogue *form.Catalogue
	Reports   repository.ReportRepo
	Drafts    cache.DraftCache

	closers []func() error
}

// LoadCatalogue returns the external catalogue at path, or the built-in one
// when path is empty.
func LoadCatalogue(path string) (*form.Catalogue, error) {
	if path == "" {
		return form.Echo()
	}
	return form.LoadCatalogueFile(path)
}

// OpenReports connects to the configured report store.
func OpenReports(ctx context.Context, cfg *config.Config) (repository.ReportRepo, func() error, error) {
	switch cfg.StorageBackend {
	case config.StorageSQLite:
		store, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Using SQLite report store at %s", cfg.SQLitePath)
		return store, store.Close, nil

	case config.StorageMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			client.Disconnect(ctx)
			return nil, nil, fmt.Errorf("ping mongo: %w", err)
		}
		db := client.Database(cfg.MongoDB)
		if err := repository.EnsureIndexes(ctx, db); err != nil {
			log.Printf("Warning: could not create report indexes: %v", err)
		}
		log.Printf("Connected to MongoDB database %s", cfg.MongoDB)
		return repository.NewReportRepo(db), func() error {
			return client.Disconnect(context.Background())
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

// OpenDrafts connects to the draft cache.
func OpenDrafts(ctx context.Context, cfg *config.Config) (cache.DraftCache, func() error, error) {
	if cfg.RedisAddr == MemoryDrafts {
		log.Println("Using in-memory draft cache")
		return cache.NewInMemoryDraftCache(cfg.DraftTTL), func() error { return nil }, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	log.Println("Connected to Redis")
	return cache.NewDraftCache(rdb, cfg.DraftTTL), rdb.Close, nil
}

// New loads the catalogue and opens every store.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	cat, err := LoadCatalogue(cfg.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("load catalogue: %w", err)
	}
	a := &App{Catalogue: cat}

	reports, closeReports, err := OpenReports(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Reports = reports
	a.closers = append(a.closers, closeReports)

	drafts, closeDrafts, err := OpenDrafts(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Drafts = drafts
	a.closers = append(a.closers, closeDrafts)
	return a, nil
}

// Close releases every store in reverse opening order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("Warning: close: %v", err)
		}
	}
}
