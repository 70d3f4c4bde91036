package ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"notedash/internal/services/records"
	"notedash/internal/services/session"
)

// Client is the view side: it caches the note collection and drives one
// edit session whose saves travel over the transport.
type Client struct {
	transport Transport
	session   *session.Session

	mu    sync.RWMutex
	notes []*records.Note
}

// NewClient creates a client. opts configure its edit session.
func NewClient(t Transport, opts ...session.Option) *Client {
	c := &Client{transport: t}
	c.session = session.New(remoteNotes{c}, opts...)
	return c
}

// Session returns the client's edit session
func (c *Client) Session() *session.Session {
	return c.session
}

// Close stops the session's autosave
func (c *Client) Close() {
	c.session.Close()
}

// Notes returns a copy of the cached collection
func (c *Client) Notes() []*records.Note {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneNotes(c.notes)
}

// Load asks the host for every note and replaces the cache
func (c *Client) Load(ctx context.Context) ([]*records.Note, error) {
	reply, err := c.call(ctx, Request{Channel: ChannelGetNotes})
	if err != nil {
		return nil, err
	}
	return cloneNotes(reply.Notes), nil
}

// Receive applies a reply pushed by the host outside a request. An unsaved
// session is reconciled against the new collection.
func (c *Client) Receive(reply Reply) error {
	switch reply.Channel {
	case ChannelNotesLoaded, ChannelNotesUpdated:
		c.replace(reply.Notes)
		session.Reconcile(c.session, reply.Notes)
		return nil
	case ChannelError:
		return replyError(reply)
	default:
		return fmt.Errorf("%w: unexpected reply %q", ErrBadRequest, reply.Channel)
	}
}

func (c *Client) call(ctx context.Context, req Request) (Reply, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return Reply{}, fmt.Errorf("encode %s: %w", req.Channel, err)
	}
	raw, err := c.transport.RoundTrip(ctx, data)
	if err != nil {
		return Reply{}, fmt.Errorf("%s: %w", req.Channel, err)
	}

	var reply Reply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return Reply{}, fmt.Errorf("decode %s reply: %w", req.Channel, err)
	}
	if reply.Channel == ChannelError {
		return Reply{}, replyError(reply)
	}
	c.replace(reply.Notes)
	return reply, nil
}

func (c *Client) replace(notes []*records.Note) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = cloneNotes(notes)
}

func (c *Client) cached(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.ContainsFunc(c.notes, func(n *records.Note) bool { return n.ID == id })
}

func cloneNotes(notes []*records.Note) []*records.Note {
	out := make([]*records.Note, 0, len(notes))
	for _, n := range notes {
		cp := n.Clone()
		out = append(out, &cp)
	}
	return out
}

// remoteNotes lets the session save through the host. The host only answers
// with the whole collection, so a new note is found again by its content.
type remoteNotes struct {
	c *Client
}

func (r remoteNotes) Create(ctx context.Context, in records.NoteInput) (*records.Note, error) {
	reply, err := r.c.call(ctx, Request{Channel: ChannelSaveNote, Note: &records.Note{
		Title:      in.Title,
		Content:    in.Content,
		Color:      in.Color,
		IsTodoList: in.IsTodoList,
	}})
	if err != nil {
		return nil, err
	}

	match := session.Match(reply.Notes, session.Fields{Title: in.Title, Content: in.Content, Color: in.Color})
	if match == nil {
		return nil, nil
	}
	out := match.Clone()
	return &out, nil
}

func (r remoteNotes) Update(ctx context.Context, id string, patch records.NotePatch) (*records.Note, error) {
	n := &records.Note{ID: id}
	if patch.Title != nil {
		n.Title = *patch.Title
	}
	if patch.Content != nil {
		n.Content = *patch.Content
	}
	if patch.Color != nil {
		n.Color = *patch.Color
	}
	if patch.IsTodoList != nil {
		n.IsTodoList = *patch.IsTodoList
	}

	reply, err := r.c.call(ctx, Request{Channel: ChannelSaveNote, Note: n})
	if err != nil {
		return nil, err
	}
	for _, stored := range reply.Notes {
		if stored.ID == id {
			out := stored.Clone()
			return &out, nil
		}
	}
	return nil, records.ErrNotFound
}

func (r remoteNotes) Delete(ctx context.Context, id string) (bool, error) {
	known := r.c.cached(id)
	reply, err := r.c.call(ctx, Request{Channel: ChannelDeleteNote, ID: id})
	if err != nil {
		return false, err
	}
	still := slices.ContainsFunc(reply.Notes, func(n *records.Note) bool { return n.ID == id })
	return known && !still, nil
}
