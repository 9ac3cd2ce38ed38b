package raster

import "errors"

// Error taxonomy shared by every algorithm package. Callers match with errors.Is.
var (
	// ErrInvalidArgument reports a parameter outside its documented domain.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState reports an input buffer in the wrong state, e.g. not binary.
	ErrInvalidState = errors.New("invalid state")
	// ErrDegenerateGeometry reports a point set with no solvable transform.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)
