// Package ipc carries note operations between a host process that owns the
// record store and a view process that edits notes. Messages cross the
// boundary as JSON.
package ipc

import (
	"context"
	"errors"
	"fmt"

	"notedash/internal/services/records"
)

// Channel names a message type
type Channel string

// Request channels
const (
	ChannelGetNotes   Channel = "get-notes"
	ChannelSaveNote   Channel = "save-note"
	ChannelDeleteNote Channel = "delete-note"
)

// Reply channels
const (
	ChannelNotesLoaded  Channel = "notes-loaded"
	ChannelNotesUpdated Channel = "notes-updated"
	ChannelError        Channel = "error"
)

// Request is sent by the view
type Request struct {
	Channel Channel       `json:"channel"`
	Note    *records.Note `json:"note,omitempty"`
	ID      string        `json:"id,omitempty"`
}

// Reply is sent by the host. Every successful reply carries the whole note
// collection.
type Reply struct {
	Channel Channel         `json:"channel"`
	Notes   []*records.Note `json:"notes,omitempty"`
	Code    string          `json:"code,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Error codes carried by ChannelError replies
const (
	CodeNotFound    = "not_found"
	CodeValidation  = "validation"
	CodePersistence = "persistence"
	CodeBadRequest  = "bad_request"
)

// ErrBadRequest is returned for malformed or unknown messages
var ErrBadRequest = errors.New("bad request")

// Transport moves one encoded request to the host and returns the encoded
// reply
type Transport interface {
	RoundTrip(ctx context.Context, req []byte) ([]byte, error)
}

// errorReply converts err into a ChannelError reply
func errorReply(err error) Reply {
	code := CodeBadRequest
	switch {
	case errors.Is(err, records.ErrNotFound):
		code = CodeNotFound
	case errors.Is(err, records.ErrValidation):
		code = CodeValidation
	case errors.Is(err, records.ErrPersistence):
		code = CodePersistence
	}
	return Reply{Channel: ChannelError, Code: code, Error: err.Error()}
}

// replyError turns a ChannelError reply back into an error that matches the
// original sentinel with errors.Is
func replyError(r Reply) error {
	var sentinel error
	switch r.Code {
	case CodeNotFound:
		sentinel = records.ErrNotFound
	case CodeValidation:
		sentinel = records.ErrValidation
	case CodePersistence:
		sentinel = records.ErrPersistence
	default:
		sentinel = ErrBadRequest
	}
	return fmt.Errorf("%w: %s", sentinel, r.Error)
}
