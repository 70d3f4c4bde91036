package main

import (
	"context"
	"fmt"
	"log/slog"

	"notedash/cmd/server/handlers"
	"notedash/internal/clients/mongo"
	"notedash/internal/config"
	"notedash/internal/kv"
)

// storage is the KV backend chosen by STORE_BACKEND plus its lifecycle hooks
type storage struct {
	kv     kv.Backend
	health handlers.HealthCheck
	close  func(ctx context.Context) error
}

func noClose(context.Context) error { return nil }

func openStorage(ctx context.Context, cfg config.Config, log *slog.Logger) (storage, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Warn("using in-memory storage; records are lost on exit")
		return storage{kv: kv.NewMemory(), close: noClose}, nil

	case config.BackendFile:
		f, err := kv.NewFile(cfg.DataDir)
		if err != nil {
			return storage{}, fmt.Errorf("open data dir: %w", err)
		}
		log.Info("using file storage", "dir", cfg.DataDir)
		return storage{kv: f, close: noClose}, nil

	case config.BackendMongo:
		_, db, err := mongo.Init(ctx, cfg, log)
		if err != nil {
			return storage{}, fmt.Errorf("mongo init: %w", err)
		}
		return storage{
			kv:     mongo.NewKVRepo(db),
			health: mongo.Ping,
			close:  mongo.Shutdown,
		}, nil
	}
	return storage{}, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
