package mongo

import (
	"context"
	"sync"
	"testing"
	"time"

	"notedash/internal/config"
	"notedash/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// stubDriver implements the driver interface for testing
type stubDriver struct{}

const (
	msgClientShouldBeNil = "client should be nil on connection failure"
	msgDBShouldBeNil     = "db should be nil on connection failure"
	MongoTestURI         = "mongodb://invalid/?connectTimeoutMS=1&serverSelectionTimeoutMS=1"
)

func (stubDriver) Connect(_ context.Context, _ *options.ClientOptions) (*mongo.Client, error) {
	return nil, context.DeadlineExceeded // fail immediately to avoid retry delays
}

func (stubDriver) Ping(_ context.Context, _ *mongo.Client) error {
	return context.DeadlineExceeded
}

func (stubDriver) Disconnect(_ context.Context, _ *mongo.Client) error { return nil }

// reset clears the singleton without going through Shutdown
func reset() {
	mu.Lock()
	defer mu.Unlock()
	client = nil
	db = nil
	closed = false
}

// withStubDriver temporarily replaces the global driver with a stub for testing
func withStubDriver(t *testing.T) func() {
	t.Helper()
	old := drv
	drv = stubDriver{}
	return func() { drv = old }
}

func testConfig() config.Config {
	return config.Config{
		MongoURI:    MongoTestURI,
		MongoDBName: "test",
		LogLevel:    "error",
		LogFormat:   "json",
	}
}

func TestMongoClientIdempotency(t *testing.T) {
	defer withStubDriver(t)()
	reset()
	defer reset()

	cfg := testConfig()
	log, err := logger.Init(cfg)
	require.NoError(t, err)

	ctx := context.Background()

	client1, db1, err1 := Init(ctx, cfg, log)
	client2, db2, err2 := Init(ctx, cfg, log)

	assert.Nil(t, client1, msgClientShouldBeNil)
	assert.Nil(t, db1, msgDBShouldBeNil)
	assert.Nil(t, client2, msgClientShouldBeNil)
	assert.Nil(t, db2, msgDBShouldBeNil)
	assert.Error(t, err1)
	assert.Error(t, err2)
}

func TestMongoClientShutdownResets(t *testing.T) {
	defer withStubDriver(t)()
	reset()
	defer reset()

	cfg := testConfig()
	log, err := logger.Init(cfg)
	require.NoError(t, err)

	ctx := context.Background()

	client1, db1, initErr := Init(ctx, cfg, log)
	require.Error(t, initErr)
	assert.Nil(t, client1, msgClientShouldBeNil)
	assert.Nil(t, db1, msgDBShouldBeNil)

	err = Shutdown(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)

	client2, db2, initErr := Init(ctx, cfg, log)
	require.Error(t, initErr)
	assert.Nil(t, client2, msgClientShouldBeNil)
	assert.Nil(t, db2, msgDBShouldBeNil)
}

func TestMongoClientConcurrency(t *testing.T) {
	defer withStubDriver(t)()
	reset()
	defer reset()

	cfg := testConfig()
	log, err := logger.Init(cfg)
	require.NoError(t, err)

	ctx := context.Background()

	const goroutines = 10
	var wg sync.WaitGroup
	clients := make([]*mongo.Client, goroutines)
	dbs := make([]*mongo.Database, goroutines)
	errs := make([]error, goroutines)

	wg.Add(goroutines)
	for i := range goroutines {
		go func(index int) {
			defer wg.Done()
			clients[index], dbs[index], errs[index] = Init(ctx, cfg, log)
		}(i)
	}
	wg.Wait()

	for i := range goroutines {
		assert.Error(t, errs[i], "Init should fail")
		assert.Nil(t, clients[i], msgClientShouldBeNil)
		assert.Nil(t, dbs[i], msgDBShouldBeNil)
	}
}

func TestMongoClientAccessorsAfterInit(t *testing.T) {
	defer withStubDriver(t)()
	reset()
	defer reset()

	cfg := testConfig()
	log, err := logger.Init(cfg)
	require.NoError(t, err)

	initClient, initDB, initErr := Init(context.Background(), cfg, log)
	require.Error(t, initErr)

	assert.Equal(t, initClient, Client(), "Client() should return the same instance as Init")
	assert.Equal(t, initDB, DB(), "DB() should return the same instance as Init")
}

func TestMongoClientShutdownIdempotency(t *testing.T) {
	defer withStubDriver(t)()
	reset()
	defer reset()

	cfg := testConfig()
	log, err := logger.Init(cfg)
	require.NoError(t, err)

	ctx := context.Background()

	_, _, err = Init(ctx, cfg, log)
	require.Error(t, err)

	err1 := Shutdown(ctx) // client was never up
	err2 := Shutdown(ctx) // already shut down
	err3 := Shutdown(ctx) // idem

	assert.ErrorIs(t, err1, ErrNotInitialized)
	assert.ErrorIs(t, err2, ErrShutdown)
	assert.ErrorIs(t, err3, ErrShutdown)

	assert.Nil(t, Client())
	assert.Nil(t, DB())
}

func TestMongoClientRetryAfterFailure(t *testing.T) {
	defer withStubDriver(t)()
	reset()
	defer reset()

	cfg := testConfig()
	log, err := logger.Init(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	client1, db1, err1 := Init(ctx, cfg, log)
	assert.Error(t, err1, "first Init should fail with invalid URI")
	assert.Nil(t, client1, msgClientShouldBeNil)
	assert.Nil(t, db1, msgDBShouldBeNil)

	_, _, err2 := Init(ctx, cfg, log)
	assert.Error(t, err2)
}

func TestWithRepoTimeout(t *testing.T) {
	t.Run("adds a deadline", func(t *testing.T) {
		ctx, cancel := WithRepoTimeout(context.Background(), time.Second)
		defer cancel()
		dl, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Second), dl, 100*time.Millisecond)
	})

	t.Run("keeps a stricter parent deadline", func(t *testing.T) {
		parent, pcancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer pcancel()
		ctx, cancel := WithRepoTimeout(parent, time.Minute)
		defer cancel()
		assert.Equal(t, parent, ctx)
	})

	t.Run("canceled parent is returned as is", func(t *testing.T) {
		parent, pcancel := context.WithCancel(context.Background())
		pcancel()
		ctx, cancel := WithRepoTimeout(parent, time.Minute)
		defer cancel()
		assert.Equal(t, parent, ctx)
	})
}

func TestPingBeforeInit(t *testing.T) {
	reset()
	defer reset()

	assert.ErrorIs(t, Ping(context.Background()), ErrNotInitialized)
}
