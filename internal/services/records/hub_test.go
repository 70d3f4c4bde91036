package records

import (
	"context"
	"crypto/rand"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConnID() ulid.ULID {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader)
}

func TestHub_ChannelClosedAfterUnsubscribe(t *testing.T) {
	hub := NewHub(8)
	connULID := newConnID()

	sub, cancel := hub.Subscribe(connULID)
	require.NotNil(t, sub)
	require.NotNil(t, cancel)

	hub.Unsubscribe(connULID)

	assert.Panics(t, func() {
		sub.Ch <- ChangeEvent{Type: EventCreated}
	}, "should panic when sending to closed channel")

	select {
	case <-sub.Done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Done channel should be closed")
	}
}

func TestHub_CancelIsIdempotent(t *testing.T) {
	hub := NewHub(8)
	connULID := newConnID()

	_, cancel := hub.Subscribe(connULID)
	cancel()
	assert.NotPanics(t, cancel)
	assert.NotPanics(t, func() { hub.Unsubscribe(connULID) })

	subs, _ := hub.Stats()
	assert.Zero(t, subs)
}

func TestHub_FiltersByKind(t *testing.T) {
	hub := NewHub(8)
	ctx := context.Background()

	notesOnly, cancelNotes := hub.Subscribe(newConnID(), KindNote)
	defer cancelNotes()
	everything, cancelAll := hub.Subscribe(newConnID())
	defer cancelAll()

	hub.Broadcast(ctx, ChangeEvent{Kind: KindPost, Type: EventUpdated, ID: "p1"})
	hub.Broadcast(ctx, ChangeEvent{Kind: KindNote, Type: EventCreated, ID: "n1"})

	require.Len(t, notesOnly.Ch, 1)
	ev := <-notesOnly.Ch
	assert.Equal(t, "n1", ev.ID)

	require.Len(t, everything.Ch, 2)
	assert.Equal(t, "p1", (<-everything.Ch).ID)
	assert.Equal(t, "n1", (<-everything.Ch).ID)
}

func TestHub_DropsWhenOutboxFull(t *testing.T) {
	hub := NewHub(2)
	ctx := context.Background()

	sub, cancel := hub.Subscribe(newConnID())
	defer cancel()

	for i := 0; i < 5; i++ {
		hub.Broadcast(ctx, ChangeEvent{Kind: KindTravel, Type: EventUpdated})
	}

	assert.Len(t, sub.Ch, 2)
	subs, dropped := hub.Stats()
	assert.Equal(t, 1, subs)
	assert.Equal(t, uint64(3), dropped)
}

func TestHub_ConcurrentBroadcastAndUnsubscribe(t *testing.T) {
	hub := NewHub(16)
	ctx := context.Background()

	const numConns = 10
	cancels := make([]func(), numConns)
	for i := range numConns {
		sub, cancel := hub.Subscribe(newConnID())
		cancels[i] = cancel
		go func() {
			for range sub.Ch {
			}
		}()
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				hub.Broadcast(ctx, ChangeEvent{Kind: KindNote, Type: EventUpdated})
			}
		}()
	}
	for _, c := range cancels {
		wg.Add(1)
		go func(cancel func()) {
			defer wg.Done()
			cancel()
		}(c)
	}
	wg.Wait()

	subs, _ := hub.Stats()
	assert.Zero(t, subs)
}

func TestStore_PublishesToHub(t *testing.T) {
	hub := NewHub(4)
	sub, cancel := hub.Subscribe(newConnID(), KindTravel)
	defer cancel()

	s, _ := openTestStore(t, newCountingBackend(), WithBus(hub))
	e, err := s.Travel.Create(context.Background(), TravelInput{Name: "Oslo", Coordinates: At(59.9, 10.7)})
	require.NoError(t, err)

	select {
	case ev := <-sub.Ch:
		assert.Equal(t, KindTravel, ev.Kind)
		assert.Equal(t, EventCreated, ev.Type)
		assert.Equal(t, e.ID, ev.ID)
	case <-time.After(time.Second):
		t.Fatal("expected a change event")
	}
}
