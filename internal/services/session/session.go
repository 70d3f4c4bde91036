// Package session implements the single note edit session: a working copy of
// one note, dirty tracking against the last committed values, and debounced
// autosave.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"notedash/internal/services/records"
)

// DefaultAutosaveDelay is the quiet period after the last edit before an
// autosave runs
const DefaultAutosaveDelay = 1000 * time.Millisecond

// TodoTemplate is the content of a freshly created to-do list
const TodoTemplate = `<div class="todo-item"><div class="todo-checkbox"></div><div class="todo-content">New task</div></div>`

var (
	// ErrNoSession is returned by operations that need an active note
	ErrNoSession = errors.New("no note is being edited")
	// ErrNotSaved is returned when deleting a note that was never stored
	ErrNotSaved = errors.New("note has not been saved yet")
)

// NoteStore is the part of the record store the session writes through
type NoteStore interface {
	Create(ctx context.Context, in records.NoteInput) (*records.Note, error)
	Update(ctx context.Context, id string, patch records.NotePatch) (*records.Note, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// State of the session
type State int

// Session states
const (
	StateEmpty State = iota
	StateNew
	StateEditing
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateNew:
		return "new"
	case StateEditing:
		return "editing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Field names an editable text field
type Field int

// Editable fields
const (
	FieldTitle Field = iota
	FieldContent
)

// Fields are the values dirty tracking compares
type Fields struct {
	Title   string        `json:"title"`
	Content string        `json:"content"`
	Color   records.Color `json:"color"`
}

// FieldsOf returns the tracked fields of n
func FieldsOf(n *records.Note) Fields {
	return Fields{Title: n.Title, Content: n.Content, Color: n.Color}
}

// SwitchPolicy decides what happens to unsaved changes when another note is
// opened. The caller picks it, usually after asking the user.
type SwitchPolicy int

// Switch policies
const (
	SwitchSave SwitchPolicy = iota
	SwitchDiscard
)

type options struct {
	now          func() time.Time
	timers       Clock
	delay        time.Duration
	defaultTitle string
	log          *slog.Logger
	onAutosave   func(*records.Note, error)
}

// Option configures a Session
type Option func(*options)

// WithNow overrides time.Now for the creation time of new notes
func WithNow(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithTimers overrides the clock the autosave debouncer schedules on
func WithTimers(c Clock) Option {
	return func(o *options) { o.timers = c }
}

// WithAutosaveDelay sets the autosave quiet period. Zero or less turns
// autosave off.
func WithAutosaveDelay(d time.Duration) Option {
	return func(o *options) { o.delay = d }
}

// WithDefaultTitle sets the title used when saving a note without one
func WithDefaultTitle(title string) Option {
	return func(o *options) { o.defaultTitle = title }
}

// WithLogger sets the session logger
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithAutosaveHook is called after every autosave with its outcome
func WithAutosaveHook(fn func(*records.Note, error)) Option {
	return func(o *options) { o.onAutosave = fn }
}

// Session is the single active edit session. It is safe for concurrent use;
// autosaves run on the debouncer's goroutine.
type Session struct {
	store        NoteStore
	now          func() time.Time
	defaultTitle string
	log          *slog.Logger
	onAutosave   func(*records.Note, error)
	autosave     *Debouncer

	mu        sync.Mutex
	state     State
	draft     records.Note
	committed Fields
	// armed is set by Edit and cleared by anything that cancels the pending
	// autosave. A debouncer run that lost the race for mu sees it cleared.
	armed bool
}

// New creates an empty session writing through store
func New(store NoteStore, opts ...Option) *Session {
	o := options{
		now:          time.Now,
		delay:        DefaultAutosaveDelay,
		defaultTitle: records.DefaultNoteTitle,
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		store:        store,
		now:          o.now,
		defaultTitle: o.defaultTitle,
		log:          o.log,
		onAutosave:   o.onAutosave,
	}
	if o.delay > 0 {
		s.autosave = NewDebouncer(o.timers, o.delay, s.runAutosave)
	}
	return s
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns a copy of the working note, or nil when the session is empty
func (s *Session) Current() *records.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateEmpty {
		return nil
	}
	n := s.draft.Clone()
	return &n
}

// Draft returns the working values of the tracked fields
func (s *Session) Draft() Fields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FieldsOf(&s.draft)
}

// StartNew opens an unsaved note built from defaults. A missing color falls
// back to the palette default.
func (s *Session) StartNew(ctx context.Context, defaults records.NoteInput, policy SwitchPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startNewLocked(ctx, defaults, policy)
}

func (s *Session) startNewLocked(ctx context.Context, defaults records.NoteInput, policy SwitchPolicy) error {
	if err := s.leaveLocked(ctx, policy); err != nil {
		return err
	}

	color := defaults.Color
	if color == "" {
		color = records.DefaultColor
	}
	s.draft = records.Note{
		Title:      defaults.Title,
		Content:    defaults.Content,
		Color:      color,
		IsTodoList: defaults.IsTodoList,
		CreatedAt:  s.now().UTC(),
	}
	s.committed = FieldsOf(&s.draft)
	s.state = StateNew
	return nil
}

// StartNewTodo opens an unsaved to-do list with one placeholder task
func (s *Session) StartNewTodo(ctx context.Context, color records.Color, policy SwitchPolicy) error {
	return s.StartNew(ctx, records.NoteInput{
		Content:    TodoTemplate,
		Color:      color,
		IsTodoList: true,
	}, policy)
}

// Select opens a copy of a stored note
func (s *Session) Select(ctx context.Context, note *records.Note, policy SwitchPolicy) error {
	if note == nil || note.ID == "" {
		return fmt.Errorf("select: %w", records.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.leaveLocked(ctx, policy); err != nil {
		return err
	}
	s.bindLocked(note)
	return nil
}

// leaveLocked applies policy to unsaved changes before another note is opened
func (s *Session) leaveLocked(ctx context.Context, policy SwitchPolicy) error {
	s.cancelAutosave()
	if s.state == StateEmpty || !s.dirtyLocked(FieldsOf(&s.draft)) {
		return nil
	}

	switch policy {
	case SwitchSave:
		if _, err := s.saveLocked(ctx); err != nil {
			return err
		}
	case SwitchDiscard:
		s.log.Debug("discarding unsaved changes", "note_id", s.draft.ID)
	}
	return nil
}

// Edit changes a text field of the working note and schedules an autosave
func (s *Session) Edit(field Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateEmpty {
		return ErrNoSession
	}
	switch field {
	case FieldTitle:
		s.draft.Title = value
	case FieldContent:
		s.draft.Content = value
	default:
		return fmt.Errorf("unknown field %d", field)
	}

	if s.autosave != nil {
		s.armed = true
		s.autosave.Trigger()
	}
	return nil
}

// SetColor changes the note color and saves straight away
func (s *Session) SetColor(ctx context.Context, color records.Color) (*records.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateEmpty {
		return nil, ErrNoSession
	}
	s.draft.Color = color
	s.cancelAutosave()
	return s.saveLocked(ctx)
}

// IsDirty reports whether the live values shown to the user differ from the
// last committed ones. An empty session is never dirty.
func (s *Session) IsDirty(live Fields) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirtyLocked(live)
}

// Dirty is IsDirty for the session's own working values
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirtyLocked(FieldsOf(&s.draft))
}

func (s *Session) dirtyLocked(live Fields) bool {
	return s.state != StateEmpty && live != s.committed
}

// Save stores the working note: create when it has no id yet, update
// otherwise. The stored result becomes the new working copy.
func (s *Session) Save(ctx context.Context) (*records.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateEmpty {
		return nil, ErrNoSession
	}
	s.cancelAutosave()
	return s.saveLocked(ctx)
}

func (s *Session) saveLocked(ctx context.Context) (*records.Note, error) {
	if s.draft.Title == "" {
		s.draft.Title = s.defaultTitle
	}

	var (
		saved *records.Note
		err   error
	)
	if s.draft.ID == "" {
		saved, err = s.store.Create(ctx, records.NoteInput{
			Title:      s.draft.Title,
			Content:    s.draft.Content,
			Color:      s.draft.Color,
			IsTodoList: s.draft.IsTodoList,
		})
	} else {
		saved, err = s.store.Update(ctx, s.draft.ID, records.NotePatch{
			Title:      &s.draft.Title,
			Content:    &s.draft.Content,
			Color:      &s.draft.Color,
			IsTodoList: &s.draft.IsTodoList,
		})
	}
	if err != nil {
		s.log.Error("failed to save note", "note_id", s.draft.ID, "error", err)
		return nil, err
	}

	if saved == nil {
		// The store accepted the note but could not say which record it
		// became. Keep it unsaved until Reconcile finds it.
		s.committed = FieldsOf(&s.draft)
		return nil, nil
	}
	s.bindLocked(saved)
	out := saved.Clone()
	return &out, nil
}

func (s *Session) bindLocked(note *records.Note) {
	s.draft = note.Clone()
	s.committed = FieldsOf(&s.draft)
	s.state = StateEditing
}

// Delete removes the stored note and empties the session, even when the
// store no longer had it.
func (s *Session) Delete(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.state == StateEmpty:
		return false, ErrNoSession
	case s.draft.ID == "":
		return false, ErrNotSaved
	}

	id := s.draft.ID
	s.clearLocked()
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		s.log.Error("failed to delete note", "note_id", id, "error", err)
	}
	return removed, err
}

// Clear drops the working note without saving it
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Session) clearLocked() {
	s.cancelAutosave()
	s.draft = records.Note{}
	s.committed = Fields{}
	s.state = StateEmpty
}

// AutosavePending reports whether an autosave is scheduled
func (s *Session) AutosavePending() bool {
	return s.autosave != nil && s.autosave.Pending()
}

// Close stops autosave for good
func (s *Session) Close() {
	if s.autosave != nil {
		s.autosave.Stop()
	}
}

// cancelAutosave must be called with mu held
func (s *Session) cancelAutosave() {
	s.armed = false
	if s.autosave != nil {
		s.autosave.Cancel()
	}
}

func (s *Session) runAutosave() {
	s.mu.Lock()
	armed := s.armed
	s.armed = false
	if !armed || !s.dirtyLocked(FieldsOf(&s.draft)) {
		s.mu.Unlock()
		return
	}
	saved, err := s.saveLocked(context.Background())
	s.mu.Unlock()

	if err == nil {
		s.log.Debug("autosaved note", "note_id", s.idOf(saved))
	}
	if s.onAutosave != nil {
		s.onAutosave(saved, err)
	}
}

func (s *Session) idOf(n *records.Note) string {
	if n == nil {
		return ""
	}
	return n.ID
}
