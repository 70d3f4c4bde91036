package records

import (
	"context"
	"fmt"
	"time"

	"notedash/internal/kv"

	"github.com/go-playground/validator/v10"
)

// PostStore persists blog posts under the "blog_posts" key
type PostStore struct {
	c        *collection[Post]
	ids      IDGenerator
	now      func() time.Time
	validate *validator.Validate
}

func newPostStore(backend kv.Backend, o options) *PostStore {
	return &PostStore{
		c: newCollection(KindPost, backend, o.bus, o.log,
			func(p *Post) string { return p.ID },
			Post.Clone),
		ids:      o.ids,
		now:      o.now,
		validate: o.validate,
	}
}

// List returns every post in stored order
func (s *PostStore) List() []*Post {
	return s.c.list()
}

// Get returns the post with id or ErrNotFound
func (s *PostStore) Get(id string) (*Post, error) {
	return s.c.get(id)
}

// Create publishes a new post with zeroed reactions, no comments and no likes
func (s *PostStore) Create(ctx context.Context, in PostInput) (*Post, error) {
	if err := check(s.validate, in); err != nil {
		return nil, err
	}

	post := Post{
		ID:         s.ids.NewID(),
		Title:      in.Title,
		Excerpt:    in.Excerpt,
		Content:    in.Content,
		CoverImage: in.CoverImage,
		Date:       s.now().UTC(),
		Reactions:  NewReactions(),
		Comments:   []Comment{},
	}
	if post.CoverImage == "" {
		post.CoverImage = DefaultCoverImage
	}

	return s.c.create(ctx, post)
}

// Update merges the non-nil patch fields over the post. Date never changes.
func (s *PostStore) Update(ctx context.Context, id string, patch PostPatch) (*Post, error) {
	if err := check(s.validate, patch); err != nil {
		return nil, err
	}

	return s.c.update(ctx, id, func(p *Post) error {
		if patch.Title != nil {
			p.Title = *patch.Title
		}
		if patch.Excerpt != nil {
			p.Excerpt = *patch.Excerpt
		}
		if patch.Content != nil {
			p.Content = *patch.Content
		}
		if patch.CoverImage != nil {
			p.CoverImage = *patch.CoverImage
		}
		if patch.Likes != nil {
			p.Likes = *patch.Likes
		}
		if patch.Reactions != nil {
			p.Reactions = patch.Reactions.Clone()
		}
		if patch.Comments != nil {
			p.Comments = append([]Comment{}, (*patch.Comments)...)
		}
		return nil
	})
}

// Delete removes the post and reports whether it existed
func (s *PostStore) Delete(ctx context.Context, id string) (bool, error) {
	return s.c.remove(ctx, id)
}

// React increments one reaction counter
func (s *PostStore) React(ctx context.Context, id string, kind ReactionKind) (*Post, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown reaction %q", ErrValidation, kind)
	}
	return s.c.update(ctx, id, func(p *Post) error {
		p.Reactions = p.Reactions.Clone()
		p.Reactions[kind]++
		return nil
	})
}

// Like increments the like counter
func (s *PostStore) Like(ctx context.Context, id string) (*Post, error) {
	return s.c.update(ctx, id, func(p *Post) error {
		p.Likes++
		return nil
	})
}

// AddComment appends a comment to the post
func (s *PostStore) AddComment(ctx context.Context, id string, in CommentInput) (*Post, error) {
	if err := check(s.validate, in); err != nil {
		return nil, err
	}

	comment := Comment{
		ID:       s.ids.NewID(),
		UserName: in.UserName,
		Text:     in.Text,
		Date:     s.now().UTC(),
	}
	return s.c.update(ctx, id, func(p *Post) error {
		p.Comments = append(p.Comments, comment)
		return nil
	})
}
