package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/location"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/measurement"
)

// readingRequest is the body of POST /readings. Value may be a JSON number
// or a numeric string.
type readingRequest struct {
	ID       string        `json:"id"`
	SensorID string        `json:"sensor_id"`
	Value    json.Number   `json:"value"`
	Unit     string        `json:"unit"`
	Start    *time.Time    `json:"start"`
	Time     time.Time     `json:"time"`
	Location *location.GPS `json:"location"`
}

// handleIngestReading stores one reading. A malformed reading is the
// caller's fault here and is reported as 400.
func (s *Server) handleIngestReading(w http.ResponseWriter, r *http.Request) {
	var req readingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.SensorID == "" {
		writeBadRequest(w, "sensor_id is required")
		return
	}

	stored, err := s.measurements.Ingest(r.Context(), measurement.Reading{
		ID:       req.ID,
		SensorID: req.SensorID,
		Value:    req.Value.String(),
		Unit:     req.Unit,
		Start:    req.Start,
		Time:     req.Time,
		Location: req.Location,
	})
	if err != nil {
		if errors.Is(err, measurement.ErrMalformedReading) {
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
			return
		}
		s.writeDomainError(w, err, "failed to ingest reading")
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

// handleDeviceMeasurements returns a device's readings in [start, end]
// grouped by functionality.
func (s *Server) handleDeviceMeasurements(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseRange(w, r)
	if !ok {
		return
	}
	deviceID := chi.URLParam(r, "id")

	grouped, err := s.aggregator.Aggregate(r.Context(), deviceID, start, end)
	if err != nil {
		s.writeDomainError(w, err, "failed to aggregate measurements")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"device_id":    deviceID,
		"start":        start,
		"end":          end,
		"measurements": grouped,
	})
}

// handleLastMeasurement returns the latest reading of a device for
// ?functionality=.
func (s *Server) handleLastMeasurement(w http.ResponseWriter, r *http.Request) {
	functionality := r.URL.Query().Get("functionality")
	if functionality == "" {
		writeBadRequest(w, "functionality query parameter is required")
		return
	}

	reading, err := s.measurements.LastMeasurement(r.Context(), chi.URLParam(r, "id"), functionality)
	if err != nil {
		s.writeDomainError(w, err, "failed to get last measurement")
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// handleSensorReadings returns a sensor's readings in [start, end].
func (s *Server) handleSensorReadings(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseRange(w, r)
	if !ok {
		return
	}

	readings, err := s.measurements.Readings(r.Context(), chi.URLParam(r, "id"), start, end)
	if err != nil {
		s.writeDomainError(w, err, "failed to list readings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"readings": readings, "count": len(readings)})
}

// parseRange reads the start and end query parameters as RFC 3339
// timestamps. It writes a 400 and reports false when either is missing or
// malformed.
func parseRange(w http.ResponseWriter, r *http.Request) (start, end time.Time, ok bool) {
	start, err := parseTimeParam(r, "start")
	if err != nil {
		writeBadRequest(w, err.Error())
		return time.Time{}, time.Time{}, false
	}
	end, err = parseTimeParam(r, "end")
	if err != nil {
		writeBadRequest(w, err.Error())
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func parseTimeParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s query parameter is required", name)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be an RFC 3339 timestamp", name)
	}
	return t, nil
}
