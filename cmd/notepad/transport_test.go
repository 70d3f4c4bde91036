package main

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"notedash/cmd/server/handlers/bridge"
	"notedash/cmd/server/testutil"
	"notedash/internal/ipc"
	"notedash/internal/services/records"
	"notedash/internal/services/session"

	"github.com/gofiber/contrib/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveIPC starts a server exposing the note bridge and returns its socket URL
func serveIPC(t *testing.T) (string, *records.Store) {
	t.Helper()
	store := testutil.OpenTestStore(t)
	app := testutil.CreateTestApp(t)
	h := bridge.NewHandlers(ipc.NewBridge(store.Notes, nil))
	app.Get("/ipc", h.WSUpgrade, websocket.New(h.WSServe))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return fmt.Sprintf("ws://%s/ipc", ln.Addr().String()), store
}

func dialTest(t *testing.T, url string) *wsTransport {
	t.Helper()
	var tr *wsTransport
	require.Eventually(t, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		var err error
		tr, err = dialTransport(ctx, url)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func TestWSTransport_ClientSavesThroughServer(t *testing.T) {
	url, store := serveIPC(t)
	ctx := context.Background()

	client := ipc.NewClient(dialTest(t, url), sessionOptions(testConfig(20), discardLogger(), nil)...)
	defer client.Close()
	s := client.Session()

	notes, err := client.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)

	require.NoError(t, s.StartNew(ctx, records.NoteInput{Title: "Remote"}, session.SwitchDiscard))
	require.NoError(t, s.Edit(session.FieldContent, "<p>over the wire</p>"))

	require.Eventually(t, func() bool { return s.State() == session.StateEditing }, 2*time.Second, 10*time.Millisecond,
		"autosave binds the stored note")
	stored := store.Notes.List()
	require.Len(t, stored, 1)
	assert.Equal(t, s.Current().ID, stored[0].ID)
	assert.Equal(t, "<p>over the wire</p>", stored[0].Content)

	removed, err := s.Delete(ctx)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, store.Notes.List())
}

func TestDialTransport_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = dialTransport(ctx, "ws://"+addr+"/ipc")
	assert.Error(t, err)
}

func TestWSTransport_HonorsContextDeadline(t *testing.T) {
	url, _ := serveIPC(t)
	tr := dialTest(t, url)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	_, err := tr.RoundTrip(ctx, []byte(`{"channel":"get-notes"}`))
	assert.Error(t, err)
}
