package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/location"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/weather"
)

// handleWeatherTemperature returns the outside temperature at the house for ?hour=.
func (s *Server) handleWeatherTemperature(w http.ResponseWriter, r *http.Request) {
	s.hourlyWeather(w, r, func(ctx context.Context, gps location.GPS, hour int) (weather.Observation, error) {
		return s.weather.InstantaneousTemperature(ctx, gps, hour)
	})
}

// handleWeatherWind returns wind speed and direction at the house for ?hour=.
func (s *Server) handleWeatherWind(w http.ResponseWriter, r *http.Request) {
	s.hourlyWeather(w, r, func(ctx context.Context, gps location.GPS, hour int) (weather.Observation, error) {
		return s.weather.InstantaneousWindSpeedAndDirection(ctx, gps, hour)
	})
}

// handleWeatherSun returns today's sunrise or sunset at the house for
// ?event=sunrise|sunset.
func (s *Server) handleWeatherSun(w http.ResponseWriter, r *http.Request) {
	if s.weather == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "weather service disabled")
		return
	}
	gps, ok := s.houseGPS(w, r)
	if !ok {
		return
	}

	obs, err := s.weather.SunriseOrSunset(r.Context(), gps, weather.SunEvent(r.URL.Query().Get("event")))
	if err != nil {
		s.writeDomainError(w, err, "failed to query weather service")
		return
	}
	writeJSON(w, http.StatusOK, obs)
}

func (s *Server) hourlyWeather(w http.ResponseWriter, r *http.Request,
	query func(ctx context.Context, gps location.GPS, hour int) (weather.Observation, error)) {
	if s.weather == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "weather service disabled")
		return
	}
	hour, err := strconv.Atoi(r.URL.Query().Get("hour"))
	if err != nil {
		writeBadRequest(w, "hour query parameter must be an integer")
		return
	}
	gps, ok := s.houseGPS(w, r)
	if !ok {
		return
	}

	obs, err := query(r.Context(), gps, hour)
	if err != nil {
		s.writeDomainError(w, err, "failed to query weather service")
		return
	}
	writeJSON(w, http.StatusOK, obs)
}

func (s *Server) houseGPS(w http.ResponseWriter, r *http.Request) (location.GPS, bool) {
	house, err := s.houses.GetByID(r.Context(), s.houseID)
	if err != nil {
		s.writeDomainError(w, err, "failed to get house")
		return location.GPS{}, false
	}
	return house.Location.GPS, true
}
