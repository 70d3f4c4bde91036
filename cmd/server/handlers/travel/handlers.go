package travel

import (
	"context"

	"notedash/cmd/server/handlers/handlerutil"
	"notedash/cmd/server/handlers/httperr"
	"notedash/internal/services/query"
	"notedash/internal/services/records"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Store defines the travel entry operations the handlers need
type Store interface {
	List() []*records.TravelEntry
	Get(id string) (*records.TravelEntry, error)
	Create(ctx context.Context, in records.TravelInput) (*records.TravelEntry, error)
	Update(ctx context.Context, id string, patch records.TravelPatch) (*records.TravelEntry, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// ListRequest holds the query parameters of GET /travel
type ListRequest struct {
	Q     string `query:"q" validate:"max=200"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=1000"`
}

// ListResponse is the body of GET /travel
type ListResponse struct {
	Entries    []*records.TravelEntry `json:"entries"`
	TotalCount int                    `json:"total_count"`
}

// Handlers contains the travel map HTTP handlers
type Handlers struct {
	store     Store
	validator *validator.Validate
}

// NewHandlers creates new travel handlers. validator must have the record
// rules registered.
func NewHandlers(store Store, validator *validator.Validate) *Handlers {
	return &Handlers{
		store:     store,
		validator: validator,
	}
}

// List returns entries matching q, most recent visit first
func (h *Handlers) List(c *fiber.Ctx) error {
	var req ListRequest
	if err := handlerutil.ParseAndValidateQuery(c, &req, h.validator, "ListTravel"); err != nil {
		return err
	}

	matched := query.FilterByText(h.store.List(), req.Q, query.TravelText)
	resp := ListResponse{TotalCount: len(matched)}
	if req.Limit > 0 {
		resp.Entries = query.Recent(matched, query.TravelDate, req.Limit)
	} else {
		resp.Entries = query.SortByRecency(matched, query.TravelDate)
	}
	return c.JSON(resp)
}

// Get returns one entry
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := handlerutil.RecordID(c, "GetTravel")
	if err != nil {
		return err
	}

	e, err := h.store.Get(id)
	if err != nil {
		return handlerutil.HandleServiceError(err, "GetTravel", id)
	}
	return c.JSON(e)
}

// Create adds a visited place
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req records.TravelInput
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "CreateTravel"); err != nil {
		return err
	}

	e, err := h.store.Create(c.UserContext(), req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "CreateTravel", "")
	}
	return c.Status(fiber.StatusCreated).JSON(e)
}

// Update handles entry updates
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := handlerutil.RecordID(c, "UpdateTravel")
	if err != nil {
		return err
	}

	var req records.TravelPatch
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "UpdateTravel"); err != nil {
		return err
	}

	e, err := h.store.Update(c.UserContext(), id, req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "UpdateTravel", id)
	}
	return c.JSON(e)
}

// Delete handles entry deletion
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := handlerutil.RecordID(c, "DeleteTravel")
	if err != nil {
		return err
	}

	removed, err := h.store.Delete(c.UserContext(), id)
	if err != nil {
		return handlerutil.HandleServiceError(err, "DeleteTravel", id)
	}
	if !removed {
		return httperr.NotFound(records.ErrNotFound)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
