package records

import (
	"context"
	"io"
	"log/slog"
	"time"

	"notedash/internal/kv"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

// DefaultNoteTitle replaces an empty note title on save
const DefaultNoteTitle = "Untitled"

// Store groups the three record collections over one backend. Build it once
// at process start and pass it to whatever needs it.
type Store struct {
	Notes  *NoteStore
	Posts  *PostStore
	Travel *TravelStore
}

type options struct {
	log          *slog.Logger
	bus          Bus
	ids          IDGenerator
	now          func() time.Time
	validate     *validator.Validate
	defaultTitle string
	seedSamples  bool
}

// Option configures a Store
type Option func(*options)

// WithLogger sets the logger; the default discards everything
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithBus sets the change-event bus
func WithBus(b Bus) Option {
	return func(o *options) { o.bus = b }
}

// WithIDGenerator overrides the ULID generator
func WithIDGenerator(g IDGenerator) Option {
	return func(o *options) { o.ids = g }
}

// WithClock overrides time.Now for timestamps
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithValidator supplies a validator that already has RegisterValidators applied
func WithValidator(v *validator.Validate) Option {
	return func(o *options) { o.validate = v }
}

// WithDefaultTitle changes the title given to notes saved without one
func WithDefaultTitle(title string) Option {
	return func(o *options) { o.defaultTitle = title }
}

// WithSampleData seeds sample posts and travel entries into empty backends
func WithSampleData(enabled bool) Option {
	return func(o *options) { o.seedSamples = enabled }
}

// Open loads all collections from backend in parallel and returns the store
func Open(ctx context.Context, backend kv.Backend, opts ...Option) (*Store, error) {
	o := options{
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		bus:          nopBus{},
		now:          time.Now,
		defaultTitle: DefaultNoteTitle,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ids == nil {
		o.ids = NewULIDGenerator(o.now)
	}
	if o.validate == nil {
		o.validate = NewValidator()
	}

	s := &Store{
		Notes:  newNoteStore(backend, o),
		Posts:  newPostStore(backend, o),
		Travel: newTravelStore(backend, o),
	}

	var postSeed func() []Post
	var travelSeed func() []TravelEntry
	if o.seedSamples {
		postSeed = SamplePosts
		travelSeed = SampleTravelEntries
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Notes.c.load(gctx, nil) })
	g.Go(func() error { return s.Posts.c.load(gctx, postSeed) })
	g.Go(func() error { return s.Travel.c.load(gctx, travelSeed) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	o.log.Info("record store opened",
		"notes", len(s.Notes.c.items),
		"posts", len(s.Posts.c.items),
		"travel_entries", len(s.Travel.c.items))
	return s, nil
}
