package records

import (
	"encoding/json"
	"slices"
	"time"
)

// Kind names a record collection. The value doubles as its storage key.
type Kind string

// Record kinds
const (
	KindNote   Kind = "notes"
	KindPost   Kind = "blog_posts"
	KindTravel Kind = "travel_entries"
)

// Color is a note color from the fixed palette
type Color string

// Palette colors
const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
	ColorPurple Color = "purple"
	ColorOrange Color = "orange"
	ColorPink   Color = "pink"
	ColorGray   Color = "gray"
)

// DefaultColor is used when a note is created without a color
const DefaultColor = ColorBlue

// Palette lists every supported note color
var Palette = []Color{ColorBlue, ColorGreen, ColorYellow, ColorRed, ColorPurple, ColorOrange, ColorPink, ColorGray}

// Note is a plain or to-do note
type Note struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Color      Color      `json:"color"`
	IsTodoList bool       `json:"isTodoList"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// EffectiveDate is the last save time, or the creation time for a note that
// was never saved.
func (n Note) EffectiveDate() time.Time {
	if n.UpdatedAt != nil {
		return *n.UpdatedAt
	}
	return n.CreatedAt
}

// Clone returns a deep copy of n
func (n Note) Clone() Note {
	if n.UpdatedAt != nil {
		ts := *n.UpdatedAt
		n.UpdatedAt = &ts
	}
	return n
}

// NoteInput holds the caller-supplied fields of a new note
type NoteInput struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Color      Color  `json:"color"`
	IsTodoList bool   `json:"isTodoList"`
}

// NotePatch holds the fields to change on a note; nil fields are left alone
type NotePatch struct {
	Title      *string `json:"title,omitempty"`
	Content    *string `json:"content,omitempty"`
	Color      *Color  `json:"color,omitempty"`
	IsTodoList *bool   `json:"isTodoList,omitempty"`
}

// ReactionKind is one of the fixed post reactions
type ReactionKind string

// Reaction kinds
const (
	ReactionLove  ReactionKind = "Love"
	ReactionLike  ReactionKind = "Like"
	ReactionLaugh ReactionKind = "Laugh"
	ReactionWow   ReactionKind = "Wow"
	ReactionSad   ReactionKind = "Sad"
)

// ReactionKinds lists every reaction in display order
var ReactionKinds = []ReactionKind{ReactionLove, ReactionLike, ReactionLaugh, ReactionWow, ReactionSad}

// Valid reports whether k is one of ReactionKinds
func (k ReactionKind) Valid() bool {
	return slices.Contains(ReactionKinds, k)
}

// Reactions maps each reaction kind to its count
type Reactions map[ReactionKind]int

// NewReactions returns reactions with every kind at zero
func NewReactions() Reactions {
	r := make(Reactions, len(ReactionKinds))
	for _, k := range ReactionKinds {
		r[k] = 0
	}
	return r
}

// Clone returns a copy of r that always carries every kind
func (r Reactions) Clone() Reactions {
	out := NewReactions()
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Comment is a reader comment on a post
type Comment struct {
	ID       string    `json:"id"`
	UserName string    `json:"userName"`
	Text     string    `json:"text"`
	Date     time.Time `json:"date"`
}

// Post is a blog post
type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Excerpt    string    `json:"excerpt"`
	Content    string    `json:"content"`
	CoverImage string    `json:"coverImage"`
	Date       time.Time `json:"date"`
	Likes      int       `json:"likes"`
	Reactions  Reactions `json:"reactions"`
	Comments   []Comment `json:"comments"`
}

// Clone returns a deep copy of p
func (p Post) Clone() Post {
	p.Reactions = p.Reactions.Clone()
	p.Comments = append(make([]Comment, 0, len(p.Comments)), p.Comments...)
	return p
}

// DefaultCoverImage is used when a post is created without a cover image
const DefaultCoverImage = "https://via.placeholder.com/800x400"

// PostInput holds the caller-supplied fields of a new post
type PostInput struct {
	Title      string `json:"title" validate:"required"`
	Excerpt    string `json:"excerpt" validate:"required"`
	Content    string `json:"content" validate:"required"`
	CoverImage string `json:"coverImage"`
}

// PostPatch holds the fields to change on a post. Reactions and Comments
// replace the stored values wholesale.
type PostPatch struct {
	Title      *string    `json:"title,omitempty" validate:"omitempty,min=1"`
	Excerpt    *string    `json:"excerpt,omitempty" validate:"omitempty,min=1"`
	Content    *string    `json:"content,omitempty" validate:"omitempty,min=1"`
	CoverImage *string    `json:"coverImage,omitempty"`
	Likes      *int       `json:"likes,omitempty" validate:"omitempty,min=0"`
	Reactions  Reactions  `json:"reactions,omitempty" validate:"omitempty,dive,keys,reaction,endkeys,min=0"`
	Comments   *[]Comment `json:"comments,omitempty"`
}

// CommentInput holds a new comment
type CommentInput struct {
	UserName string `json:"userName" validate:"required"`
	Text     string `json:"text" validate:"required"`
}

// Coordinates is a point on the map
type Coordinates struct {
	Lat float64 `json:"lat" validate:"finite"`
	Lng float64 `json:"lng" validate:"finite"`
}

// Point is caller-supplied coordinates. Both members must be present and
// finite; a missing or null member is rejected rather than read as zero.
type Point struct {
	Lat *float64 `json:"lat" validate:"required,finite"`
	Lng *float64 `json:"lng" validate:"required,finite"`
}

// At returns a Point for lat, lng
func At(lat, lng float64) *Point {
	return &Point{Lat: &lat, Lng: &lng}
}

// coordinates assumes p has been validated
func (p Point) coordinates() Coordinates {
	return Coordinates{Lat: *p.Lat, Lng: *p.Lng}
}

// TravelEntry is a visited place on the travel map
type TravelEntry struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Date        time.Time   `json:"date"`
	Notes       string      `json:"notes"`
	Image       string      `json:"image,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
}

// Clone returns a copy of e
func (e TravelEntry) Clone() TravelEntry {
	return e
}

// TravelInput holds the caller-supplied fields of a new travel entry
type TravelInput struct {
	Name        string     `json:"name" validate:"required"`
	Date        *time.Time `json:"date,omitempty"`
	Notes       string     `json:"notes"`
	Image       string     `json:"image,omitempty"`
	Coordinates *Point     `json:"coordinates" validate:"required"`
}

// TravelPatch holds the fields to change on a travel entry
type TravelPatch struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=1"`
	Date        *time.Time `json:"date,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	Image       *string    `json:"image,omitempty"`
	Coordinates *Point     `json:"coordinates,omitempty"`
}

// EventType describes what happened to a collection
type EventType string

// Change event types
const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// ChangeEvent is published after every successful mutation. Snapshot is the
// full collection exactly as it was persisted.
type ChangeEvent struct {
	Kind     Kind            `json:"kind"`
	Type     EventType       `json:"type"`
	ID       string          `json:"id"`
	Snapshot json.RawMessage `json:"snapshot"`
}
