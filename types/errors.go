package types

import "errors"

// Shared failure classes, wrapped with context at the point of detection.
var (
	// ErrInvalidInput indicates malformed tabulated data or a control of the wrong length.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDimensionMismatch indicates arrays whose lengths must agree but do not.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)
