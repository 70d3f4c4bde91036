package records

import (
	"context"
	"time"

	"notedash/internal/kv"

	"github.com/go-playground/validator/v10"
)

// NoteStore persists notes under the "notes" key
type NoteStore struct {
	c            *collection[Note]
	ids          IDGenerator
	now          func() time.Time
	validate     *validator.Validate
	defaultTitle string
}

func newNoteStore(backend kv.Backend, o options) *NoteStore {
	return &NoteStore{
		c: newCollection(KindNote, backend, o.bus, o.log,
			func(n *Note) string { return n.ID },
			Note.Clone),
		ids:          o.ids,
		now:          o.now,
		validate:     o.validate,
		defaultTitle: o.defaultTitle,
	}
}

// DefaultTitle is the title given to notes saved with an empty one
func (s *NoteStore) DefaultTitle() string {
	return s.defaultTitle
}

// List returns every note in stored order
func (s *NoteStore) List() []*Note {
	return s.c.list()
}

// Get returns the note with id or ErrNotFound
func (s *NoteStore) Get(id string) (*Note, error) {
	return s.c.get(id)
}

// Create assigns an id and timestamps and persists a new note
func (s *NoteStore) Create(ctx context.Context, in NoteInput) (*Note, error) {
	if err := check(s.validate, in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	note := Note{
		ID:         s.ids.NewID(),
		Title:      s.titleOrDefault(in.Title),
		Content:    in.Content,
		Color:      in.Color,
		IsTodoList: in.IsTodoList,
		CreatedAt:  now,
		UpdatedAt:  &now,
	}
	if note.Color == "" {
		note.Color = DefaultColor
	}

	return s.c.create(ctx, note)
}

// Update merges the non-nil patch fields over the note and stamps UpdatedAt
func (s *NoteStore) Update(ctx context.Context, id string, patch NotePatch) (*Note, error) {
	if err := check(s.validate, patch); err != nil {
		return nil, err
	}

	return s.c.update(ctx, id, func(n *Note) error {
		if patch.Title != nil {
			n.Title = s.titleOrDefault(*patch.Title)
		}
		if patch.Content != nil {
			n.Content = *patch.Content
		}
		if patch.Color != nil {
			n.Color = *patch.Color
			if n.Color == "" {
				n.Color = DefaultColor
			}
		}
		if patch.IsTodoList != nil {
			n.IsTodoList = *patch.IsTodoList
		}
		now := s.now().UTC()
		n.UpdatedAt = &now
		return nil
	})
}

// Delete removes the note and reports whether it existed
func (s *NoteStore) Delete(ctx context.Context, id string) (bool, error) {
	return s.c.remove(ctx, id)
}

func (s *NoteStore) titleOrDefault(title string) string {
	if title == "" {
		return s.defaultTitle
	}
	return title
}
