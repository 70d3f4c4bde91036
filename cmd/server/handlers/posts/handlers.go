package posts

import (
	"context"
	"time"

	"notedash/cmd/server/handlers/handlerutil"
	"notedash/cmd/server/handlers/httperr"
	"notedash/internal/services/query"
	"notedash/internal/services/records"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Store defines the post operations the handlers need
type Store interface {
	List() []*records.Post
	Get(id string) (*records.Post, error)
	Create(ctx context.Context, in records.PostInput) (*records.Post, error)
	Update(ctx context.Context, id string, patch records.PostPatch) (*records.Post, error)
	Delete(ctx context.Context, id string) (bool, error)
	React(ctx context.Context, id string, kind records.ReactionKind) (*records.Post, error)
	Like(ctx context.Context, id string) (*records.Post, error)
	AddComment(ctx context.Context, id string, in records.CommentInput) (*records.Post, error)
}

// ListRequest holds the query parameters of GET /posts
type ListRequest struct {
	Q     string `query:"q" validate:"max=200"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=1000"`
}

// ListResponse is the body of GET /posts
type ListResponse struct {
	Posts      []*records.Post `json:"posts"`
	TotalCount int             `json:"total_count"`
}

// PostSummary is a post without its body, as shown in lists
type PostSummary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Excerpt    string    `json:"excerpt"`
	CoverImage string    `json:"coverImage"`
	Date       time.Time `json:"date"`
}

// Handlers contains the blog post HTTP handlers
type Handlers struct {
	store     Store
	validator *validator.Validate
}

// NewHandlers creates new post handlers. validator must have the record
// rules registered.
func NewHandlers(store Store, validator *validator.Validate) *Handlers {
	return &Handlers{
		store:     store,
		validator: validator,
	}
}

// List returns posts matching q, newest first
func (h *Handlers) List(c *fiber.Ctx) error {
	var req ListRequest
	if err := handlerutil.ParseAndValidateQuery(c, &req, h.validator, "ListPosts"); err != nil {
		return err
	}

	matched := query.FilterByText(h.store.List(), req.Q, query.PostText)
	resp := ListResponse{TotalCount: len(matched)}
	if req.Limit > 0 {
		resp.Posts = query.Recent(matched, query.PostDate, req.Limit)
	} else {
		resp.Posts = query.SortByRecency(matched, query.PostDate)
	}
	return c.JSON(resp)
}

// Featured returns the newest post
func (h *Handlers) Featured(c *fiber.Ctx) error {
	p := query.Featured(h.store.List())
	if p == nil {
		return httperr.NotFound(records.ErrNotFound)
	}
	return c.JSON(p)
}

// Recent returns summaries of the newest posts, three unless limit says
// otherwise
func (h *Handlers) Recent(c *fiber.Ctx) error {
	var req ListRequest
	if err := handlerutil.ParseAndValidateQuery(c, &req, h.validator, "RecentPosts"); err != nil {
		return err
	}
	if req.Limit == 0 {
		req.Limit = 3
	}

	recent := query.Recent(h.store.List(), query.PostDate, req.Limit)
	out := make([]PostSummary, 0, len(recent))
	for _, p := range recent {
		out = append(out, PostSummary{ID: p.ID, Title: p.Title, Excerpt: p.Excerpt, CoverImage: p.CoverImage, Date: p.Date})
	}
	return c.JSON(out)
}

// Get returns one post
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := handlerutil.RecordID(c, "GetPost")
	if err != nil {
		return err
	}

	p, err := h.store.Get(id)
	if err != nil {
		return handlerutil.HandleServiceError(err, "GetPost", id)
	}
	return c.JSON(p)
}

// Create publishes a new post
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req records.PostInput
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "CreatePost"); err != nil {
		return err
	}

	p, err := h.store.Create(c.UserContext(), req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "CreatePost", "")
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// Update handles post updates
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := handlerutil.RecordID(c, "UpdatePost")
	if err != nil {
		return err
	}

	var req records.PostPatch
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "UpdatePost"); err != nil {
		return err
	}

	p, err := h.store.Update(c.UserContext(), id, req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "UpdatePost", id)
	}
	return c.JSON(p)
}

// Delete handles post deletion
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := handlerutil.RecordID(c, "DeletePost")
	if err != nil {
		return err
	}

	removed, err := h.store.Delete(c.UserContext(), id)
	if err != nil {
		return handlerutil.HandleServiceError(err, "DeletePost", id)
	}
	if !removed {
		return httperr.NotFound(records.ErrNotFound)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// React adds one reaction of the kind named in the path
func (h *Handlers) React(c *fiber.Ctx) error {
	id, err := handlerutil.RecordID(c, "ReactPost")
	if err != nil {
		return err
	}

	p, err := h.store.React(c.UserContext(), id, records.ReactionKind(c.Params("kind")))
	if err != nil {
		return handlerutil.HandleServiceError(err, "ReactPost", id)
	}
	return c.JSON(p)
}

// Like adds one like
func (h *Handlers) Like(c *fiber.Ctx) error {
	id, err := handlerutil.RecordID(c, "LikePost")
	if err != nil {
		return err
	}

	p, err := h.store.Like(c.UserContext(), id)
	if err != nil {
		return handlerutil.HandleServiceError(err, "LikePost", id)
	}
	return c.JSON(p)
}

// Comment appends a reader comment
func (h *Handlers) Comment(c *fiber.Ctx) error {
	id, err := handlerutil.RecordID(c, "CommentPost")
	if err != nil {
		return err
	}

	var req records.CommentInput
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "CommentPost"); err != nil {
		return err
	}

	p, err := h.store.AddComment(c.UserContext(), id, req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "CommentPost", id)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}
