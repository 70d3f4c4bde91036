package middlewares

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHub struct {
	subscribers int
	dropped     uint64
}

func (s stubHub) Stats() (int, uint64) { return s.subscribers, s.dropped }

func TestRouteLabel(t *testing.T) {
	t.Run("matched route returns template", func(t *testing.T) {
		app := fiber.New()
		app.Get("/notes/:id", func(c *fiber.Ctx) error {
			assert.Equal(t, "/notes/:id", routeLabel(c))
			return c.SendString("ok")
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/notes/01HXAMPLE", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("unmatched route falls back to the path", func(t *testing.T) {
		app := fiber.New()
		app.Use(func(c *fiber.Ctx) error {
			assert.Equal(t, "/nonexistent", routeLabel(c))
			return c.SendStatus(404)
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/nonexistent", nil))
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{200, "2xx"},
		{204, "2xx"},
		{301, "301"},
		{404, "4xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusClass(tt.status))
	}
}

func scrape(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", MetricsPath, nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestAttachMetrics(t *testing.T) {
	app := fiber.New()
	AttachMetrics(app, stubHub{subscribers: 3, dropped: 7})
	app.Get("/posts/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusServiceUnavailable, "down") })

	_, err := app.Test(httptest.NewRequest("GET", "/posts/abc", nil))
	require.NoError(t, err)
	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	body := scrape(t, app)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/posts/:id",status="2xx"} 1`)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/boom",status="5xx"} 1`)
	assert.Contains(t, body, "notedash_change_subscribers 3")
	assert.Contains(t, body, "notedash_change_events_dropped_total 7")
}

func TestAttachMetricsWithoutHub(t *testing.T) {
	app := fiber.New()
	AttachMetrics(app, nil)

	body := scrape(t, app)
	assert.NotContains(t, body, "notedash_change_subscribers")
}
