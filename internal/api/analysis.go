package api

import (
	"net/http"
)

// handlePeakPower returns the highest grid power plus source consumption
// within [start, end].
func (s *Server) handlePeakPower(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseRange(w, r)
	if !ok {
		return
	}

	peak, err := s.peak.PeakConsumption(r.Context(), start, end)
	if err != nil {
		s.writeDomainError(w, err, "failed to compute peak power")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"start": start,
		"end":   end,
		"peak":  peak,
	})
}

// handleTemperatureDifference compares two temperature sensors.
func (s *Server) handleTemperatureDifference(w http.ResponseWriter, r *http.Request) {
	inside, outside := r.URL.Query().Get("inside"), r.URL.Query().Get("outside")
	if inside == "" || outside == "" {
		writeBadRequest(w, "inside and outside query parameters are required")
		return
	}
	start, end, ok := parseRange(w, r)
	if !ok {
		return
	}

	diff, err := s.temperature.MaxDifferenceBetweenSensors(r.Context(), inside, outside, start, end)
	if err != nil {
		s.writeDomainError(w, err, "failed to compare temperatures")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"inside":     inside,
		"outside":    outside,
		"difference": diff,
	})
}

// handleWeatherTemperatureDifference compares an inside sensor with the
// weather service's hourly temperature at the house.
func (s *Server) handleWeatherTemperatureDifference(w http.ResponseWriter, r *http.Request) {
	inside := r.URL.Query().Get("inside")
	if inside == "" {
		writeBadRequest(w, "inside query parameter is required")
		return
	}
	start, end, ok := parseRange(w, r)
	if !ok {
		return
	}

	diff, err := s.temperature.MaxDifferenceWithWeather(r.Context(), inside, start, end)
	if err != nil {
		s.writeDomainError(w, err, "failed to compare with weather")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"inside":     inside,
		"difference": diff,
	})
}
