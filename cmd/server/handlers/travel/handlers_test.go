package travel

import (
	"net/http"
	"testing"
	"time"

	"notedash/cmd/server/testutil"
	"notedash/internal/services/records"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const travelEndpoint = "/api/v1/travel"

func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	store := testutil.OpenTestStore(t, records.WithSampleData(true)).Travel
	app := testutil.CreateTestApp(t)
	h := NewHandlers(store, testutil.CreateTestValidator(t))

	grp := app.Group(travelEndpoint)
	grp.Get("/", h.List)
	grp.Post("/", h.Create)
	grp.Get("/:id", h.Get)
	grp.Patch("/:id", h.Update)
	grp.Delete("/:id", h.Delete)
	return app
}

func do(t *testing.T, app *fiber.App, method, url string, body any) *http.Response {
	t.Helper()
	resp, err := app.Test(testutil.CreateJSONRequest(method, url, body))
	require.NoError(t, err)
	return resp
}

func TestListTravel(t *testing.T) {
	app := setupApp(t)

	resp := do(t, app, http.MethodGet, travelEndpoint+"?limit=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := testutil.DecodeJSON[ListResponse](t, resp)
	require.Len(t, body.Entries, 2)
	assert.Equal(t, "Toronto, Canada", body.Entries[0].Name)
	assert.Equal(t, "Istanbul, Turkey", body.Entries[1].Name)
	assert.Equal(t, 6, body.TotalCount)

	resp = do(t, app, http.MethodGet, travelEndpoint+"?q=italy", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = testutil.DecodeJSON[ListResponse](t, resp)
	require.Len(t, body.Entries, 1)
	assert.Equal(t, "4", body.Entries[0].ID)
}

func TestCreateTravel(t *testing.T) {
	app := setupApp(t)
	visited := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{
			name:       "valid",
			body:       records.TravelInput{Name: "Lisbon", Date: &visited, Coordinates: records.At(38.72, -9.14)},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "null island is allowed",
			body:       records.TravelInput{Name: "Gulf of Guinea", Coordinates: records.At(0, 0)},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "empty coordinates object",
			body:       map[string]any{"name": "Nowhere", "coordinates": map[string]any{}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "null latitude",
			body:       map[string]any{"name": "Nowhere", "coordinates": map[string]any{"lat": nil, "lng": 3}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing coordinates",
			body:       records.TravelInput{Name: "Nowhere"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing name",
			body:       records.TravelInput{Coordinates: records.At(1, 1)},
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, app, http.MethodPost, travelEndpoint, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestUpdateGetDeleteTravel(t *testing.T) {
	app := setupApp(t)

	notes := "Go back in spring"
	resp := do(t, app, http.MethodPatch, travelEndpoint+"/6", records.TravelPatch{Notes: &notes})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, app, http.MethodGet, travelEndpoint+"/6", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	e := testutil.DecodeJSON[records.TravelEntry](t, resp)
	assert.Equal(t, notes, e.Notes)
	assert.Equal(t, "Paris, France", e.Name)

	resp = do(t, app, http.MethodPatch, travelEndpoint+"/6", map[string]any{"coordinates": map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = do(t, app, http.MethodPatch, travelEndpoint+"/6", map[string]any{"coordinates": map[string]any{"lat": nil, "lng": nil}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = do(t, app, http.MethodGet, travelEndpoint+"/6", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	e = testutil.DecodeJSON[records.TravelEntry](t, resp)
	assert.Equal(t, records.Coordinates{Lat: 48.8566, Lng: 2.3522}, e.Coordinates)

	resp = do(t, app, http.MethodDelete, travelEndpoint+"/6", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, app, http.MethodDelete, travelEndpoint+"/6", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = do(t, app, http.MethodPatch, travelEndpoint+"/6", records.TravelPatch{Notes: &notes})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
