package measurement

import "errors"

var (
	// ErrNotFound is returned when a sensor has no reading to return.
	ErrNotFound = errors.New("measurement: reading not found")

	// ErrReadingExists is returned when appending a reading whose ID is taken.
	ErrReadingExists = errors.New("measurement: reading already exists")

	// ErrUnmappedFunctionality is returned when a functionality has no route.
	// It indicates a configuration defect.
	ErrUnmappedFunctionality = errors.New("measurement: unmapped functionality")

	// ErrInvalidRange is returned when a window ends before it starts.
	ErrInvalidRange = errors.New("measurement: invalid range")

	// ErrMalformedReading is returned when a reading's value is not a number
	// or its timing is incomplete.
	ErrMalformedReading = errors.New("measurement: malformed reading")

	// ErrShapeMismatch is returned when a reading's shape differs from the
	// shape its sensor's functionality routes to.
	ErrShapeMismatch = errors.New("measurement: shape mismatch")

	// ErrUnknownShape is returned for a shape name outside the fixed set.
	ErrUnknownShape = errors.New("measurement: unknown shape")
)
