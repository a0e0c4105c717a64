// Package apperr defines the sentinel errors shared by the core packages.
// Callers should use errors.Is to match these values; operations wrap them
// with fmt.Errorf("%w: ...") to add detail.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// Validation errors (malformed VIN, storage code, zone index or date).
	ErrValidation = errors.New("validation failed")

	// Conflict errors raised by the occupancy store. The specific variants
	// wrap ErrConflict, so errors.Is matches either level.
	ErrConflict         = errors.New("conflict")
	ErrDuplicateVIN     = fmt.Errorf("%w: vin already parked", ErrConflict)
	ErrCapacityExceeded = fmt.Errorf("%w: capacity exceeded", ErrConflict)

	// Lookup errors (unknown record id).
	ErrNotFound = errors.New("not found")

	// Extraction errors (no identifiers found in recognized text).
	ErrExtraction = errors.New("no identifiers found")
)
