package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/analysis"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/device"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/location"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/measurement"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/reservation"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/weather"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeInternal     = "internal_error"
	ErrCodeValidation   = "validation_error"
	ErrCodeUpstream     = "upstream_error"
	ErrCodeUnavailable  = "service_unavailable"
	ErrCodeDataDefect   = "data_defect"
	ErrCodeInvalidRange = "invalid_range"
)

// errorMapping translates a domain sentinel into a response status.
type errorMapping struct {
	err    error
	status int
	code   string
}

// domainErrors is checked in order; the first match wins.
var domainErrors = []errorMapping{
	{device.ErrDeviceNotFound, http.StatusNotFound, ErrCodeNotFound},
	{device.ErrSensorNotFound, http.StatusNotFound, ErrCodeNotFound},
	{device.ErrActuatorNotFound, http.StatusNotFound, ErrCodeNotFound},
	{device.ErrRoomNotFound, http.StatusNotFound, ErrCodeNotFound},
	{location.ErrHouseNotFound, http.StatusNotFound, ErrCodeNotFound},
	{location.ErrRoomNotFound, http.StatusNotFound, ErrCodeNotFound},
	{measurement.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
	{analysis.ErrGridMeterNotFound, http.StatusNotFound, ErrCodeNotFound},

	{measurement.ErrInvalidRange, http.StatusBadRequest, ErrCodeInvalidRange},
	{measurement.ErrShapeMismatch, http.StatusBadRequest, ErrCodeValidation},
	{device.ErrInvalidDevice, http.StatusBadRequest, ErrCodeValidation},
	{device.ErrInvalidSensor, http.StatusBadRequest, ErrCodeValidation},
	{device.ErrInvalidActuator, http.StatusBadRequest, ErrCodeValidation},
	{device.ErrUnknownFunctionality, http.StatusBadRequest, ErrCodeValidation},
	{device.ErrValueOutOfRange, http.StatusBadRequest, ErrCodeValidation},
	{location.ErrInvalidLocation, http.StatusBadRequest, ErrCodeValidation},
	{location.ErrInvalidRoom, http.StatusBadRequest, ErrCodeValidation},
	{weather.ErrInvalidHour, http.StatusBadRequest, ErrCodeValidation},
	{weather.ErrInvalidOption, http.StatusBadRequest, ErrCodeValidation},

	{reservation.ErrNotReserved, http.StatusConflict, ErrCodeConflict},
	{device.ErrDeviceInactive, http.StatusConflict, ErrCodeConflict},
	{device.ErrDeviceExists, http.StatusConflict, ErrCodeConflict},
	{device.ErrSensorExists, http.StatusConflict, ErrCodeConflict},
	{device.ErrActuatorExists, http.StatusConflict, ErrCodeConflict},
	{location.ErrHouseExists, http.StatusConflict, ErrCodeConflict},
	{location.ErrRoomExists, http.StatusConflict, ErrCodeConflict},
	{measurement.ErrReadingExists, http.StatusConflict, ErrCodeConflict},

	{weather.ErrUnavailable, http.StatusBadGateway, ErrCodeUpstream},
	{analysis.ErrWeatherDisabled, http.StatusServiceUnavailable, ErrCodeUnavailable},

	{measurement.ErrUnmappedFunctionality, http.StatusInternalServerError, ErrCodeDataDefect},
	{measurement.ErrMalformedReading, http.StatusInternalServerError, ErrCodeDataDefect},
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDomainError maps err to a status through domainErrors. Unknown
// errors are logged and reported as a 500 with the fallback message so
// internal details do not leak.
func (s *Server) writeDomainError(w http.ResponseWriter, err error, fallback string) {
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				s.logger.Error(fallback, "error", err)
			}
			writeError(w, m.status, m.code, err.Error())
			return
		}
	}
	s.logger.Error(fallback, "error", err)
	writeInternalError(w, fallback)
}

// statusFor returns the status writeDomainError would use for err.
func statusFor(err error) int {
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}
