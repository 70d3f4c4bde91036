package records

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"notedash/internal/logger"

	"github.com/oklog/ulid/v2"
)

// Bus receives change events after each successful mutation. Broadcast is
// called with the collection locked, so it must not block or call back into
// the store.
type Bus interface {
	Broadcast(ctx context.Context, ev ChangeEvent)
}

type nopBus struct{}

func (nopBus) Broadcast(context.Context, ChangeEvent) {}

// Subscriber represents a connection that can receive change events
type Subscriber struct {
	Kinds []Kind // empty means every kind
	Ch    chan ChangeEvent
	Done  chan struct{}
}

func (s *Subscriber) wants(k Kind) bool {
	return len(s.Kinds) == 0 || slices.Contains(s.Kinds, k)
}

// ConnInfo holds connection metadata
type ConnInfo struct {
	ID          ulid.ULID
	ConnectedAt time.Time
	Subscriber  *Subscriber
}

// Hub fans change events out to subscribers. A subscriber whose outbox is
// full misses the event; the next one carries the full snapshot anyway.
type Hub struct {
	mu         sync.RWMutex
	conns      map[ulid.ULID]ConnInfo
	bufferSize int
	dropped    uint64
}

// NewHub creates a new event hub with configurable buffer size
func NewHub(bufferSize int) *Hub {
	return &Hub{
		conns:      make(map[ulid.ULID]ConnInfo),
		bufferSize: bufferSize,
	}
}

// Subscribe registers a connection for the given kinds (all kinds when none
// are given). The returned cancel func is equivalent to Unsubscribe.
func (h *Hub) Subscribe(connULID ulid.ULID, kinds ...Kind) (*Subscriber, func()) {
	log := logger.L()
	if log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("subscribing connection", "conn_id", connULID.String(), "kinds", kinds)
	}

	sub := &Subscriber{
		Kinds: kinds,
		Ch:    make(chan ChangeEvent, h.bufferSize),
		Done:  make(chan struct{}),
	}

	h.mu.Lock()
	h.conns[connULID] = ConnInfo{
		ID:          connULID,
		ConnectedAt: time.Now(),
		Subscriber:  sub,
	}
	h.mu.Unlock()

	cancel := func() {
		h.Unsubscribe(connULID)
	}
	return sub, cancel
}

// Unsubscribe removes a subscriber and closes its channels. Safe to call
// more than once.
func (h *Hub) Unsubscribe(connULID ulid.ULID) {
	log := logger.L()
	if log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("unsubscribing connection", "conn_id", connULID.String())
	}

	h.mu.Lock()
	info, exists := h.conns[connULID]
	delete(h.conns, connULID)
	h.mu.Unlock()

	if exists {
		close(info.Subscriber.Ch)
		close(info.Subscriber.Done)
	}
}

// Broadcast delivers ev to every subscriber interested in ev.Kind
func (h *Hub) Broadcast(ctx context.Context, ev ChangeEvent) {
	log := logger.L()
	if log.Enabled(ctx, slog.LevelDebug) {
		log.Debug("broadcasting event", "kind", ev.Kind, "event_type", ev.Type, "id", ev.ID)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, info := range h.conns {
		if !info.Subscriber.wants(ev.Kind) {
			continue
		}
		sendOrDrop(info.Subscriber.Ch, ev, func() {
			atomic.AddUint64(&h.dropped, 1)
			log.Warn("outbox full, dropping event", "conn_id", info.ID.String(), "kind", ev.Kind, "event_type", ev.Type)
		})
	}
}

// sendOrDrop is the only place that can decide to drop an event.
func sendOrDrop(ch chan ChangeEvent, ev ChangeEvent, onDrop func()) {
	select {
	case ch <- ev:
	default:
		onDrop()
	}
}

// Stats returns the subscriber count and the number of dropped events.
func (h *Hub) Stats() (subscribers int, dropped uint64) {
	h.mu.RLock()
	subscribers = len(h.conns)
	h.mu.RUnlock()
	return subscribers, atomic.LoadUint64(&h.dropped)
}
