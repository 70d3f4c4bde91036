package ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"notedash/internal/services/records"
)

// Bridge answers view requests against the note store
type Bridge struct {
	notes *records.NoteStore
	log   *slog.Logger
}

// NewBridge creates a bridge over notes. A nil logger discards output.
func NewBridge(notes *records.NoteStore, log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bridge{notes: notes, log: log}
}

// Handle executes one request
func (b *Bridge) Handle(ctx context.Context, req Request) (Reply, error) {
	switch req.Channel {
	case ChannelGetNotes:
		return Reply{Channel: ChannelNotesLoaded, Notes: b.notes.List()}, nil

	case ChannelSaveNote:
		if req.Note == nil {
			return Reply{}, fmt.Errorf("%w: save-note without a note", records.ErrValidation)
		}
		if err := b.save(ctx, req.Note); err != nil {
			return Reply{}, err
		}
		return Reply{Channel: ChannelNotesUpdated, Notes: b.notes.List()}, nil

	case ChannelDeleteNote:
		if req.ID == "" {
			return Reply{}, fmt.Errorf("%w: delete-note without an id", records.ErrValidation)
		}
		removed, err := b.notes.Delete(ctx, req.ID)
		if err != nil {
			return Reply{}, err
		}
		if !removed {
			b.log.Debug("delete-note for unknown id", "note_id", req.ID)
		}
		return Reply{Channel: ChannelNotesUpdated, Notes: b.notes.List()}, nil

	default:
		return Reply{}, fmt.Errorf("%w: unknown channel %q", ErrBadRequest, req.Channel)
	}
}

// save updates a note that carries an id and creates one that does not.
// Ids are assigned by the store, so an unknown id is an error rather than a
// new note.
func (b *Bridge) save(ctx context.Context, n *records.Note) error {
	if n.ID == "" {
		_, err := b.notes.Create(ctx, records.NoteInput{
			Title:      n.Title,
			Content:    n.Content,
			Color:      n.Color,
			IsTodoList: n.IsTodoList,
		})
		return err
	}

	_, err := b.notes.Update(ctx, n.ID, records.NotePatch{
		Title:      &n.Title,
		Content:    &n.Content,
		Color:      &n.Color,
		IsTodoList: &n.IsTodoList,
	})
	return err
}

// RoundTrip decodes a JSON request, handles it and encodes the reply.
// Failures become ChannelError replies; the returned error is only set when
// the reply itself cannot be encoded.
func (b *Bridge) RoundTrip(ctx context.Context, data []byte) ([]byte, error) {
	var req Request
	var reply Reply
	if err := json.Unmarshal(data, &req); err != nil {
		reply = errorReply(fmt.Errorf("%w: %v", ErrBadRequest, err))
	} else if r, err := b.Handle(ctx, req); err != nil {
		b.log.Warn("ipc request failed", "channel", req.Channel, "error", err)
		reply = errorReply(err)
	} else {
		reply = r
	}
	return json.Marshal(reply)
}
