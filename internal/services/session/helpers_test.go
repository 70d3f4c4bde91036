package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"notedash/internal/kv"
	"notedash/internal/services/records"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// manualClock fires timers only when Advance moves past their deadline
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	c       *manualClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{c: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Elapsed is the manual time since the clock was created
func (c *manualClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Now maps manual time onto the wall clock starting at epoch
func (c *manualClock) Now() time.Time {
	return epoch.Add(c.Elapsed())
}

// Advance moves time forward, running due timers in deadline order
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *manualTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		next.fired = true
		c.mu.Unlock()

		next.f()
	}
}

// MockNoteStore is a mock implementation of NoteStore
type MockNoteStore struct {
	mock.Mock
}

func (m *MockNoteStore) Create(ctx context.Context, in records.NoteInput) (*records.Note, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*records.Note), args.Error(1)
}

func (m *MockNoteStore) Update(ctx context.Context, id string, patch records.NotePatch) (*records.Note, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*records.Note), args.Error(1)
}

func (m *MockNoteStore) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// newTestSession wires a session to a real note store over an in-memory
// backend, both driven by the same manual clock
func newTestSession(t *testing.T, opts ...Option) (*Session, *records.NoteStore, *manualClock) {
	t.Helper()

	clock := &manualClock{}
	store, err := records.Open(context.Background(), kv.NewMemory(), records.WithClock(clock.Now))
	require.NoError(t, err)

	base := []Option{WithNow(clock.Now), WithTimers(clock)}
	s := New(store.Notes, append(base, opts...)...)
	t.Cleanup(s.Close)
	return s, store.Notes, clock
}
