package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"notedash/internal/kv"
)

// collection is the persisted snapshot of one record kind.
//
// Every mutation works on a deep copy of the items, writes the whole copy to
// the backend, and only then swaps it in. A failed write therefore leaves the
// in-memory collection exactly as it was.
type collection[T any] struct {
	kind    Kind
	backend kv.Backend
	bus     Bus
	log     *slog.Logger
	idOf    func(*T) string
	clone   func(T) T

	mu    sync.RWMutex
	items []T
}

func newCollection[T any](kind Kind, backend kv.Backend, bus Bus, log *slog.Logger, idOf func(*T) string, clone func(T) T) *collection[T] {
	return &collection[T]{
		kind:    kind,
		backend: backend,
		bus:     bus,
		log:     log,
		idOf:    idOf,
		clone:   clone,
	}
}

// load reads the collection from the backend. When the key was never written
// and seed is non-nil, the seeded items are persisted straight away.
func (c *collection[T]) load(ctx context.Context, seed func() []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok, err := c.backend.Read(ctx, string(c.kind))
	if err != nil {
		c.log.Error("failed to read collection", "kind", c.kind, "error", err)
		return fmt.Errorf("%w: read %s: %w", ErrPersistence, c.kind, err)
	}

	if !ok {
		c.items = nil
		if seed == nil {
			return nil
		}
		items := seed()
		if _, err := c.write(ctx, items); err != nil {
			return err
		}
		c.items = items
		c.log.Info("seeded sample records", "kind", c.kind, "count", len(items))
		return nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		c.log.Error("failed to decode collection", "kind", c.kind, "error", err)
		return fmt.Errorf("%w: decode %s: %w", ErrPersistence, c.kind, err)
	}
	c.items = items
	c.log.Debug("loaded collection", "kind", c.kind, "count", len(items))
	return nil
}

// write encodes items and replaces the stored value. Caller holds c.mu.
func (c *collection[T]) write(ctx context.Context, items []T) (json.RawMessage, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s: %w", ErrPersistence, c.kind, err)
	}
	if err := c.backend.Write(ctx, string(c.kind), data); err != nil {
		c.log.Error("failed to write collection", "kind", c.kind, "error", err)
		return nil, fmt.Errorf("%w: write %s: %w", ErrPersistence, c.kind, err)
	}
	return data, nil
}

func (c *collection[T]) cloneAll() []T {
	out := make([]T, len(c.items))
	for i, item := range c.items {
		out[i] = c.clone(item)
	}
	return out
}

// list returns deep copies of every item in stored order
func (c *collection[T]) list() []*T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*T, len(c.items))
	for i := range c.items {
		item := c.clone(c.items[i])
		out[i] = &item
	}
	return out
}

// get returns a deep copy of the item with id
func (c *collection[T]) get(id string) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexOf(c.items, id); i >= 0 {
		item := c.clone(c.items[i])
		return &item, nil
	}
	return nil, ErrNotFound
}

func (c *collection[T]) indexOf(items []T, id string) int {
	if id == "" {
		return -1
	}
	for i := range items {
		if c.idOf(&items[i]) == id {
			return i
		}
	}
	return -1
}

// mutate applies fn to a copy of the items, persists the result and swaps it
// in. fn returns the id of the affected record. Returning errNoChange from fn
// skips the write and is passed through to the caller.
//
// The event is broadcast before the lock is released so subscribers see
// events in write order.
func (c *collection[T]) mutate(ctx context.Context, typ EventType, fn func(items []T) ([]T, string, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, id, err := fn(c.cloneAll())
	if err != nil {
		return err
	}

	snapshot, err := c.write(ctx, next)
	if err != nil {
		return err
	}
	c.items = next

	c.bus.Broadcast(ctx, ChangeEvent{
		Kind:     c.kind,
		Type:     typ,
		ID:       id,
		Snapshot: snapshot,
	})
	return nil
}

// create appends item; the caller has already assigned its id
func (c *collection[T]) create(ctx context.Context, item T) (*T, error) {
	err := c.mutate(ctx, EventCreated, func(items []T) ([]T, string, error) {
		return append(items, c.clone(item)), c.idOf(&item), nil
	})
	if err != nil {
		return nil, err
	}
	out := c.clone(item)
	return &out, nil
}

// update applies change to the item with id
func (c *collection[T]) update(ctx context.Context, id string, change func(*T) error) (*T, error) {
	var updated T
	err := c.mutate(ctx, EventUpdated, func(items []T) ([]T, string, error) {
		i := c.indexOf(items, id)
		if i < 0 {
			return nil, "", ErrNotFound
		}
		if err := change(&items[i]); err != nil {
			return nil, "", err
		}
		updated = c.clone(items[i])
		return items, id, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// remove deletes the item with id and reports whether one was removed.
// A missing id writes nothing.
func (c *collection[T]) remove(ctx context.Context, id string) (bool, error) {
	err := c.mutate(ctx, EventDeleted, func(items []T) ([]T, string, error) {
		i := c.indexOf(items, id)
		if i < 0 {
			return nil, "", errNoChange
		}
		return append(items[:i], items[i+1:]...), id, nil
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
