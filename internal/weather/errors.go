package weather

import "errors"

var (
	// ErrUnavailable is returned when the weather service cannot answer.
	ErrUnavailable = errors.New("weather: service unavailable")

	// ErrInvalidHour is returned for an hour outside 0-23.
	ErrInvalidHour = errors.New("weather: hour must be between 0 and 23")

	// ErrInvalidOption is returned for a sun event other than sunrise or sunset.
	ErrInvalidOption = errors.New("weather: option must be sunrise or sunset")
)
