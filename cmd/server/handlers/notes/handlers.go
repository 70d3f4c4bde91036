package notes

import (
	"context"

	"notedash/cmd/server/handlers/handlerutil"
	"notedash/cmd/server/handlers/httperr"
	"notedash/internal/services/query"
	"notedash/internal/services/records"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Store defines the note operations the handlers need
type Store interface {
	List() []*records.Note
	Get(id string) (*records.Note, error)
	Create(ctx context.Context, in records.NoteInput) (*records.Note, error)
	Update(ctx context.Context, id string, patch records.NotePatch) (*records.Note, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// ListRequest holds the query parameters of GET /notes
type ListRequest struct {
	Q     string `query:"q" validate:"max=200"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=1000"`
}

// CreateRequest is the body of POST /notes
type CreateRequest struct {
	Title      string        `json:"title" validate:"max=200"`
	Content    string        `json:"content"`
	Color      records.Color `json:"color" validate:"omitempty,oneof=blue green yellow red purple orange pink gray"`
	IsTodoList bool          `json:"isTodoList"`
}

// UpdateRequest is the body of PATCH /notes/:id
type UpdateRequest struct {
	Title      *string        `json:"title,omitempty" validate:"omitempty,max=200"`
	Content    *string        `json:"content,omitempty"`
	Color      *records.Color `json:"color,omitempty" validate:"omitempty,oneof=blue green yellow red purple orange pink gray"`
	IsTodoList *bool          `json:"isTodoList,omitempty"`
}

// NoteResponse is a note plus its list preview
type NoteResponse struct {
	*records.Note
	Preview string `json:"preview"`
}

// ListResponse is the body of GET /notes
type ListResponse struct {
	Notes      []NoteResponse `json:"notes"`
	TotalCount int            `json:"total_count"`
}

func toResponse(n *records.Note) NoteResponse {
	return NoteResponse{Note: n, Preview: query.Preview(n.Content)}
}

// Handlers contains the notes HTTP handlers
type Handlers struct {
	store     Store
	validator *validator.Validate
}

// NewHandlers creates new notes handlers
func NewHandlers(store Store, validator *validator.Validate) *Handlers {
	return &Handlers{
		store:     store,
		validator: validator,
	}
}

// List returns notes matching q, most recently edited first
func (h *Handlers) List(c *fiber.Ctx) error {
	var req ListRequest
	if err := handlerutil.ParseAndValidateQuery(c, &req, h.validator, "ListNotes"); err != nil {
		return err
	}

	matched := query.FilterByText(h.store.List(), req.Q, query.NoteText)
	var sorted []*records.Note
	if req.Limit > 0 {
		sorted = query.Recent(matched, query.NoteDate, req.Limit)
	} else {
		sorted = query.SortByRecency(matched, query.NoteDate)
	}

	resp := ListResponse{
		Notes:      make([]NoteResponse, 0, len(sorted)),
		TotalCount: len(matched),
	}
	for _, n := range sorted {
		resp.Notes = append(resp.Notes, toResponse(n))
	}
	return c.JSON(resp)
}

// Get returns one note
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := handlerutil.RecordID(c, "GetNote")
	if err != nil {
		return err
	}

	n, err := h.store.Get(id)
	if err != nil {
		return handlerutil.HandleServiceError(err, "GetNote", id)
	}
	return c.JSON(toResponse(n))
}

// Create handles note creation
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "CreateNote"); err != nil {
		return err
	}

	n, err := h.store.Create(c.UserContext(), records.NoteInput{
		Title:      req.Title,
		Content:    req.Content,
		Color:      req.Color,
		IsTodoList: req.IsTodoList,
	})
	if err != nil {
		return handlerutil.HandleServiceError(err, "CreateNote", "")
	}
	return c.Status(fiber.StatusCreated).JSON(toResponse(n))
}

// Update handles note updates
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := handlerutil.RecordID(c, "UpdateNote")
	if err != nil {
		return err
	}

	var req UpdateRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "UpdateNote"); err != nil {
		return err
	}

	n, err := h.store.Update(c.UserContext(), id, records.NotePatch{
		Title:      req.Title,
		Content:    req.Content,
		Color:      req.Color,
		IsTodoList: req.IsTodoList,
	})
	if err != nil {
		return handlerutil.HandleServiceError(err, "UpdateNote", id)
	}
	return c.JSON(toResponse(n))
}

// Delete handles note deletion
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := handlerutil.RecordID(c, "DeleteNote")
	if err != nil {
		return err
	}

	removed, err := h.store.Delete(c.UserContext(), id)
	if err != nil {
		return handlerutil.HandleServiceError(err, "DeleteNote", id)
	}
	if !removed {
		return httperr.NotFound(records.ErrNotFound)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
