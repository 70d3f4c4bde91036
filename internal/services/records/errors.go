package records

import "errors"

// ErrNotFound is returned when an id matches no stored record.
var ErrNotFound = errors.New("record not found")

// ErrValidation is returned when input is rejected before any write.
var ErrValidation = errors.New("validation failed")

// ErrPersistence is returned when the backend could not be read or written.
var ErrPersistence = errors.New("persistence failed")

// errNoChange aborts a mutation without writing anything.
var errNoChange = errors.New("no change")
