package domain

import "errors"

var (
	// ErrNotFound is returned by stores when no document matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned by stores when a unique key already exists.
	ErrDuplicate = errors.New("duplicate key")
	// ErrConflict is returned when a conditional update matched nothing.
	ErrConflict = errors.New("conditional update did not match")
)
