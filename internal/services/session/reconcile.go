package session

import "notedash/internal/services/records"

// Match returns the record whose title, content and color equal f. When
// several match, the last one wins: the store appends new records, so it is
// the most recently created.
func Match(notes []*records.Note, f Fields) *records.Note {
	for i := len(notes) - 1; i >= 0; i-- {
		if notes[i] != nil && FieldsOf(notes[i]) == f {
			return notes[i]
		}
	}
	return nil
}

// Reconcile binds an unsaved session to its stored record after a save
// round-trip that only returned the whole collection. It reports whether a
// record was found; no match leaves the session untouched.
func Reconcile(s *Session, notes []*records.Note) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateNew || s.draft.ID != "" {
		return false
	}

	want := FieldsOf(&s.draft)
	if want.Title == "" {
		want.Title = s.defaultTitle
	}
	match := Match(notes, want)
	if match == nil {
		s.log.Debug("no stored record matches the unsaved note")
		return false
	}
	s.bindLocked(match)
	return true
}
