// Package kv defines the durable key-value boundary the record store persists
// through, plus the in-process and file-backed implementations.
package kv

import (
	"context"
	"errors"
)

// Keys under which each record collection is stored.
const (
	KeyNotes         = "notes"
	KeyPosts         = "blog_posts"
	KeyTravelEntries = "travel_entries"
)

// ErrInvalidKey is returned for keys that cannot be stored by a backend.
var ErrInvalidKey = errors.New("invalid key")

// Backend stores opaque JSON documents by key.
//
// Read reports ok=false when the key has never been written. Write replaces
// the whole value and is all-or-nothing: after an error the previous value is
// still the one Read returns.
type Backend interface {
	Read(ctx context.Context, key string) (value []byte, ok bool, err error)
	Write(ctx context.Context, key string, value []byte) error
}
