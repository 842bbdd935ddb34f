// Package sentinel holds the storage-level errors menu stores return. The
// service maps them onto domain errors; handlers never see them directly.
package sentinel

import "errors"

var (
	// ErrNotFound: no row with the requested key.
	ErrNotFound = errors.New("not found")
	// ErrConflict: the unique menu name constraint rejected a write.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable: the backing database or cache could not be reached.
	ErrUnavailable = errors.New("unavailable")
)
