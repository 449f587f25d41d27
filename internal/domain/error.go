package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("job not found")
	ErrAlreadyExists   = errors.New("job already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrCapacity        = errors.New("too many jobs in flight")
)
