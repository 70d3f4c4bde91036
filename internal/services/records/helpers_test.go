package records

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"notedash/internal/kv"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errDisk = errors.New("disk full")

// fakeClock is a settable clock for deterministic timestamps
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// seqIDs hands out "id-1", "id-2", ...
type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

// countingBackend wraps kv.Memory, counts writes and can be told to fail
type countingBackend struct {
	*kv.Memory
	mu      sync.Mutex
	writes  int
	failing bool
}

func newCountingBackend() *countingBackend {
	return &countingBackend{Memory: kv.NewMemory()}
}

func (b *countingBackend) Write(ctx context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failing {
		return errDisk
	}
	b.writes++
	return b.Memory.Write(ctx, key, value)
}

func (b *countingBackend) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}

func (b *countingBackend) SetFailing(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failing = v
}

// MockBus is a mock implementation of Bus
type MockBus struct {
	mock.Mock
}

func (m *MockBus) Broadcast(ctx context.Context, ev ChangeEvent) {
	m.Called(ctx, ev)
}

// openTestStore opens a store over backend with a fake clock and sequential ids
func openTestStore(t *testing.T, backend kv.Backend, opts ...Option) (*Store, *fakeClock) {
	t.Helper()

	clock := newFakeClock()
	base := []Option{WithClock(clock.Now), WithIDGenerator(&seqIDs{})}
	s, err := Open(context.Background(), backend, append(base, opts...)...)
	require.NoError(t, err)
	return s, clock
}

func ptr[T any](v T) *T { return &v }
