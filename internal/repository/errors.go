package repository

import "errors"

// ErrNotFound indicates an entity was not located.
var ErrNotFound = errors.New("repository: not found")

// ErrConflict indicates a uniqueness violation, currently only one
// aggregate per email address.
var ErrConflict = errors.New("repository: conflict")
