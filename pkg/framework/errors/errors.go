package errors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalid         = errors.New("invalid")
	ErrInvalidYAML     = errors.New("invalid yaml")
	ErrStorage         = errors.New("storage error")
	ErrEventStore      = errors.New("event store error")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInvalidStoreURL = errors.New("invalid store url")
	ErrTimeout         = errors.New("timed out")
	ErrFetch           = errors.New("fetch error")
)
