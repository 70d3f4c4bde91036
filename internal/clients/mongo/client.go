package mongo

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"notedash/internal/config"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var (
	// ErrNotInitialized is returned by Shutdown when Init never succeeded
	ErrNotInitialized = errors.New("mongo client not initialized")
	// ErrShutdown is returned by Shutdown once the client is already closed
	ErrShutdown = errors.New("mongo client already shut down")
)

var (
	drv    driver = mongoDriver{}
	client *mongo.Client
	db     *mongo.Database
	closed bool
	mu     sync.Mutex
)

// Init connects to MongoDB and pings the primary (first successful call
// wins, thread-safe). A failed connect or ping leaves nothing behind, so a
// later call can retry.
func Init(ctx context.Context, cfg config.Config, log *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	mu.Lock()
	defer mu.Unlock()

	if client != nil && db != nil {
		return client, db, nil
	}

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetConnectTimeout(10 * time.Second).
		SetAppName("notedash")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cli, err := drv.Connect(ctx, opts)
	if err != nil {
		log.Error("failed to connect to mongo", "err", err)
		return nil, nil, err
	}

	if err := drv.Ping(ctx, cli); err != nil {
		log.Error("failed to ping mongo", "err", err)
		if derr := drv.Disconnect(ctx, cli); derr != nil {
			log.Warn("failed to disconnect after ping failure", "err", derr)
		}
		return nil, nil, err
	}

	client = cli
	db = cli.Database(cfg.MongoDBName)
	closed = false

	log.Info("successfully connected to mongo", "db", cfg.MongoDBName)
	return client, db, nil
}

// Client returns the singleton MongoDB client instance.
func Client() *mongo.Client {
	mu.Lock()
	defer mu.Unlock()
	return client
}

// DB returns the singleton MongoDB database instance.
func DB() *mongo.Database {
	mu.Lock()
	defer mu.Unlock()
	return db
}

// Ping checks the server is reachable through the singleton client
func Ping(ctx context.Context) error {
	cli := Client()
	if cli == nil {
		return ErrNotInitialized
	}
	ctx, cancel := WithRepoTimeout(ctx, OpTimeout)
	defer cancel()
	return drv.Ping(ctx, cli)
}

// Shutdown disconnects the client. Calling it again returns ErrShutdown.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if closed {
		return ErrShutdown
	}
	closed = true

	if client == nil {
		return ErrNotInitialized
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := drv.Disconnect(ctx, client)

	client = nil
	db = nil

	return err
}
