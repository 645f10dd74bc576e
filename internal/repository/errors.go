package repository

import "errors"

// ErrNotFound is returned when a report does not exist in the store.
var ErrNotFound = errors.New("report not found")
