package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when a unique key is already taken,
// e.g. registering a username that is present in the credential store.
var ErrAlreadyExists = errors.New("already exists")
