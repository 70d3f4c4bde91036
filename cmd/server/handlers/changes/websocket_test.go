package changes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"notedash/cmd/server/testutil"
	"notedash/internal/services/records"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wsMaxIncomingBytes = 1 << 20 // 1 MiB

func TestParseKinds(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []records.Kind
		wantErr bool
	}{
		{name: "empty means all", raw: "", want: nil},
		{name: "single", raw: "notes", want: []records.Kind{records.KindNote}},
		{name: "several with spaces", raw: "notes, travel_entries", want: []records.Kind{records.KindNote, records.KindTravel}},
		{name: "unknown", raw: "notes,users", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseKinds(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWSUpgradeRejections(t *testing.T) {
	app := testutil.CreateTestApp(t)
	h := NewWebSocketHandlers(records.NewHub(4), 0)
	app.Get("/ws/changes", h.WSUpgrade, websocket.New(h.WSChangesStream))

	t.Run("plain request", func(t *testing.T) {
		resp, err := app.Test(testutil.CreateJSONRequest("GET", "/ws/changes", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown kind", func(t *testing.T) {
		resp, err := app.Test(testutil.CreateWebSocketRequest("/ws/changes?kinds=users"))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

// serve starts app on a random local port and returns the ws base URL
func serve(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return fmt.Sprintf("ws://%s", ln.Addr().String())
}

func dial(t *testing.T, url string) *gorillaws.Conn {
	t.Helper()
	var conn *gorillaws.Conn
	require.Eventually(t, func() bool {
		c, _, err := gorillaws.DefaultDialer.Dial(url, nil)
		if err != nil {
			return false
		}
		conn = c
		return true
	}, 2*time.Second, 20*time.Millisecond)
	conn.SetReadLimit(wsMaxIncomingBytes)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestWSChangesStream_FiltersByKind(t *testing.T) {
	hub := records.NewHub(8)
	store := testutil.OpenTestStore(t, records.WithBus(hub))

	app := testutil.CreateTestApp(t)
	h := NewWebSocketHandlers(hub, 0)
	app.Get("/ws/changes", h.WSUpgrade, websocket.New(h.WSChangesStream))

	conn := dial(t, serve(t, app)+"/ws/changes?kinds=notes")
	require.Eventually(t, func() bool {
		n, _ := hub.Stats()
		return n == 1
	}, 2*time.Second, 10*time.Millisecond)

	ctx := context.Background()
	_, err := store.Posts.Create(ctx, records.PostInput{Title: "T", Excerpt: "E", Content: "C"})
	require.NoError(t, err)
	note, err := store.Notes.Create(ctx, records.NoteInput{Title: "Hello"})
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev records.ChangeEvent
	require.NoError(t, json.Unmarshal(raw, &ev))
	assert.Equal(t, records.KindNote, ev.Kind)
	assert.Equal(t, records.EventCreated, ev.Type)
	assert.Equal(t, note.ID, ev.ID)

	var snapshot []records.Note
	require.NoError(t, json.Unmarshal(ev.Snapshot, &snapshot))
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Hello", snapshot[0].Title)
}

func TestWSSessionTimeout(t *testing.T) {
	hub := records.NewHub(8)
	app := testutil.CreateTestApp(t)
	h := NewWebSocketHandlers(hub, 1)
	app.Get("/ws/changes", h.WSUpgrade, websocket.New(h.WSChangesStream))

	conn := dial(t, serve(t, app)+"/ws/changes")
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	start := time.Now()
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	elapsed := time.Since(start)

	var closeErr *gorillaws.CloseError
	if errors.As(err, &closeErr) {
		assert.Equal(t, WSClosePolicyViolation, closeErr.Code)
	}
	assert.Less(t, elapsed, 4*time.Second, "session should end promptly after the limit")

	require.Eventually(t, func() bool {
		n, _ := hub.Stats()
		return n == 0
	}, 2*time.Second, 10*time.Millisecond, "subscription released on close")
}
