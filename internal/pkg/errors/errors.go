package errors

import "errors"

var (
	// ErrNotFound is returned when a recompute or traversal targets a
	// node/edge that does not exist.
	ErrNotFound = errors.New("target not found")
	// ErrInvalidParameter is returned for depth/limit/threshold values
	// outside their documented bounds. Out-of-range input is a caller
	// error and is never silently clamped.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrStoreUnavailable wraps adapter I/O failures. Traversal reads are
	// side-effect-free and safe for the caller to retry.
	ErrStoreUnavailable = errors.New("graph store unavailable")
	// ErrCycleDetected marks a malformed provenance loop. The ancestry
	// walk terminates and reports the partial chain alongside this.
	ErrCycleDetected = errors.New("provenance cycle detected")
)
