// Package sentinel names the storage facts services translate into coded
// domain errors. Stores return them, possibly wrapped; input validation
// belongs in pkg/domain-errors instead.
package sentinel

import "errors"

var (
	// ErrNotFound: no row, key or candidate under that id.
	ErrNotFound = errors.New("not found")
	// ErrConflict: optimistic version mismatch or a unique record key taken
	// by a concurrent writer. Callers retry.
	ErrConflict = errors.New("conflict")
	// ErrExpired: a pending candidate outlived its retention window.
	ErrExpired = errors.New("expired")
	// ErrInvalidState: the row exists but cannot take the requested change.
	ErrInvalidState = errors.New("invalid state")
	// ErrUnavailable: the backend could not be reached.
	ErrUnavailable = errors.New("unavailable")
)
