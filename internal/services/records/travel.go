package records

import (
	"context"
	"time"

	"notedash/internal/kv"

	"github.com/go-playground/validator/v10"
)

// TravelStore persists travel entries under the "travel_entries" key
type TravelStore struct {
	c        *collection[TravelEntry]
	ids      IDGenerator
	now      func() time.Time
	validate *validator.Validate
}

func newTravelStore(backend kv.Backend, o options) *TravelStore {
	return &TravelStore{
		c: newCollection(KindTravel, backend, o.bus, o.log,
			func(e *TravelEntry) string { return e.ID },
			TravelEntry.Clone),
		ids:      o.ids,
		now:      o.now,
		validate: o.validate,
	}
}

// List returns every entry in stored order
func (s *TravelStore) List() []*TravelEntry {
	return s.c.list()
}

// Get returns the entry with id or ErrNotFound
func (s *TravelStore) Get(id string) (*TravelEntry, error) {
	return s.c.get(id)
}

// Create validates and persists a new entry. Date defaults to now.
func (s *TravelStore) Create(ctx context.Context, in TravelInput) (*TravelEntry, error) {
	if err := check(s.validate, in); err != nil {
		return nil, err
	}

	entry := TravelEntry{
		ID:          s.ids.NewID(),
		Name:        in.Name,
		Notes:       in.Notes,
		Image:       in.Image,
		Coordinates: in.Coordinates.coordinates(),
	}
	if in.Date != nil {
		entry.Date = in.Date.UTC()
	} else {
		entry.Date = s.now().UTC()
	}

	return s.c.create(ctx, entry)
}

// Update merges the non-nil patch fields over the entry; coordinates are
// replaced as a whole.
func (s *TravelStore) Update(ctx context.Context, id string, patch TravelPatch) (*TravelEntry, error) {
	if err := check(s.validate, patch); err != nil {
		return nil, err
	}

	return s.c.update(ctx, id, func(e *TravelEntry) error {
		if patch.Name != nil {
			e.Name = *patch.Name
		}
		if patch.Date != nil {
			e.Date = patch.Date.UTC()
		}
		if patch.Notes != nil {
			e.Notes = *patch.Notes
		}
		if patch.Image != nil {
			e.Image = *patch.Image
		}
		if patch.Coordinates != nil {
			e.Coordinates = patch.Coordinates.coordinates()
		}
		return nil
	})
}

// Delete removes the entry and reports whether it existed
func (s *TravelStore) Delete(ctx context.Context, id string) (bool, error) {
	return s.c.remove(ctx, id)
}
