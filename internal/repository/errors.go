package repository

import "errors"

// ErrNotFound indicates an entity was not located.
var ErrNotFound = errors.New("repository: not found")

// ErrUnreachable indicates a connectivity failure talking to the remote
// store: retryable, and the trigger for local buffering.
var ErrUnreachable = errors.New("repository: remote unreachable")
