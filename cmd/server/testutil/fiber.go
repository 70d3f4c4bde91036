package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"notedash/cmd/server/handlers/httperr"
	"notedash/internal/config"
	"notedash/internal/kv"
	"notedash/internal/logger"
	"notedash/internal/services/records"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// FixedNow is the clock every test store starts at
var FixedNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// CreateTestApp creates a basic Fiber app for testing with common configuration
func CreateTestApp(t *testing.T) *fiber.App {
	cfg := config.Config{LogLevel: "debug", LogFormat: "text"}
	_, err := logger.Init(cfg)
	require.NoError(t, err)

	return fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
	})
}

// CreateTestValidator creates a validator with the record rules registered
func CreateTestValidator(t *testing.T) *validator.Validate {
	t.Helper()
	return records.NewValidator()
}

// Clock hands out strictly increasing timestamps one minute apart
type Clock struct{ now time.Time }

// Now advances the clock and returns the new time
func (c *Clock) Now() time.Time {
	c.now = c.now.Add(time.Minute)
	return c.now
}

// OpenTestStore opens a record store over a fresh in-memory backend
func OpenTestStore(t *testing.T, opts ...records.Option) *records.Store {
	t.Helper()
	clock := &Clock{now: FixedNow}
	all := append([]records.Option{records.WithClock(clock.Now)}, opts...)
	s, err := records.Open(context.Background(), kv.NewMemory(), all...)
	require.NoError(t, err)
	return s
}

// CreateJSONRequest creates an HTTP request with JSON body
func CreateJSONRequest(method, url string, body any) *http.Request {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeJSON reads the response body into a value of type T
func DecodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	return out
}

// CreateWebSocketRequest creates an HTTP request with WebSocket upgrade headers
func CreateWebSocketRequest(url string) *http.Request {
	req := httptest.NewRequest("GET", url, nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	return req
}
