package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/house", func(r chi.Router) {
			r.Get("/", s.handleGetHouse)
			r.Put("/location", s.handleUpdateHouseLocation)
		})

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", s.handleListRooms)
			r.Post("/", s.handleCreateRoom)
			r.Get("/{id}", s.handleGetRoom)
			r.Patch("/{id}", s.handleUpdateRoomDimensions)
		})

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Post("/", s.handleCreateDevice)
			r.Get("/by-functionality", s.handleDevicesByFunctionality)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Post("/deactivate", s.handleDeactivateDevice)
				r.Get("/measurements", s.handleDeviceMeasurements)
				r.Get("/measurements/last", s.handleLastMeasurement)
			})
		})

		r.Route("/sensors", func(r chi.Router) {
			r.Get("/", s.handleListSensors)
			r.Post("/", s.handleCreateSensor)
			r.Get("/{id}", s.handleGetSensor)
			r.Get("/{id}/readings", s.handleSensorReadings)
		})

		r.Route("/actuators", func(r chi.Router) {
			r.Get("/", s.handleListActuators)
			r.Post("/", s.handleCreateActuator)
			r.Get("/devices", s.handleDevicesWithActuator)
			r.Get("/{id}", s.handleGetActuator)
			r.Post("/{id}/value", s.handleSetActuatorValue)
		})

		r.Get("/functionalities", s.handleListFunctionalities)
		r.Post("/readings", s.handleIngestReading)

		r.Route("/analysis", func(r chi.Router) {
			r.Get("/peak-power", s.handlePeakPower)
			r.Get("/temperature-difference", s.handleTemperatureDifference)
			r.Get("/temperature-difference/weather", s.handleWeatherTemperatureDifference)
		})

		r.Route("/weather", func(r chi.Router) {
			r.Get("/temperature", s.handleWeatherTemperature)
			r.Get("/wind", s.handleWeatherWind)
			r.Get("/sun", s.handleWeatherSun)
		})

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
