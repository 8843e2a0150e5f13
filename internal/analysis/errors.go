package analysis

import "errors"

var (
	// ErrGridMeterNotFound is returned when the configured grid meter device
	// or its power sensor does not exist.
	ErrGridMeterNotFound = errors.New("analysis: grid meter not found")

	// ErrWeatherDisabled is returned by weather comparisons when no weather
	// source is configured.
	ErrWeatherDisabled = errors.New("analysis: weather service disabled")
)
