package dataset

import "errors"

var (
	// ErrInsufficientData is returned when a derivation needs more distinct
	// values than the frame provides.
	ErrInsufficientData = errors.New("insufficient data")
	ErrColumnNotFound   = errors.New("column not found")
	ErrUnknownView      = errors.New("unknown derived view")
)
