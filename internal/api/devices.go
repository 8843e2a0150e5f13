package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/device"
)

// handleListDevices returns all devices, or those of one room with ?room_id=.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		devices []device.Device
		err     error
	)
	if roomID := r.URL.Query().Get("room_id"); roomID != "" {
		devices, err = s.registry.DevicesByRoom(ctx, roomID)
	} else {
		devices, err = s.registry.ListDevices(ctx)
	}
	if err != nil {
		s.writeDomainError(w, err, "failed to list devices")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleGetDevice returns a single device by ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	dev, err := s.registry.GetDevice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err, "failed to get device")
		return
	}
	writeJSON(w, http.StatusOK, dev)
}

// handleCreateDevice creates a new device in an existing room.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var dev device.Device
	if err := json.NewDecoder(r.Body).Decode(&dev); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := s.registry.CreateDevice(r.Context(), &dev); err != nil {
		s.writeDomainError(w, err, "failed to create device")
		return
	}
	writeJSON(w, http.StatusCreated, dev)
}

// handleDeactivateDevice takes a device out of service.
func (s *Server) handleDeactivateDevice(w http.ResponseWriter, r *http.Request) {
	dev, err := s.registry.DeactivateDevice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err, "failed to deactivate device")
		return
	}
	writeJSON(w, http.StatusOK, dev)
}

// handleDevicesByFunctionality groups device IDs by functionality and room.
func (s *Server) handleDevicesByFunctionality(w http.ResponseWriter, r *http.Request) {
	groups, err := s.registry.GroupByFunctionality(r.Context())
	if err != nil {
		s.writeDomainError(w, err, "failed to group devices")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"functionalities": groups})
}

// handleListSensors returns all sensors, or those of one device with ?device_id=.
func (s *Server) handleListSensors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		sensors []device.Sensor
		err     error
	)
	if deviceID := r.URL.Query().Get("device_id"); deviceID != "" {
		sensors, err = s.registry.SensorsOfDevice(ctx, deviceID)
	} else {
		sensors, err = s.registry.ListSensors(ctx)
	}
	if err != nil {
		s.writeDomainError(w, err, "failed to list sensors")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sensors": sensors, "count": len(sensors)})
}

// handleCreateSensor attaches a sensor to an active device.
func (s *Server) handleCreateSensor(w http.ResponseWriter, r *http.Request) {
	var sensor device.Sensor
	if err := json.NewDecoder(r.Body).Decode(&sensor); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := s.registry.AddSensor(r.Context(), &sensor); err != nil {
		s.writeDomainError(w, err, "failed to create sensor")
		return
	}
	writeJSON(w, http.StatusCreated, sensor)
}

// handleGetSensor returns a single sensor by ID.
func (s *Server) handleGetSensor(w http.ResponseWriter, r *http.Request) {
	sensor, err := s.registry.GetSensor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err, "failed to get sensor")
		return
	}
	writeJSON(w, http.StatusOK, sensor)
}

// handleListActuators returns all actuators, or those of one device with ?device_id=.
func (s *Server) handleListActuators(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		actuators []device.Actuator
		err       error
	)
	if deviceID := r.URL.Query().Get("device_id"); deviceID != "" {
		actuators, err = s.registry.ActuatorsOfDevice(ctx, deviceID)
	} else {
		actuators, err = s.registry.ListActuators(ctx)
	}
	if err != nil {
		s.writeDomainError(w, err, "failed to list actuators")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"actuators": actuators, "count": len(actuators)})
}

// handleCreateActuator attaches an actuator to an active device.
func (s *Server) handleCreateActuator(w http.ResponseWriter, r *http.Request) {
	var act device.Actuator
	if err := json.NewDecoder(r.Body).Decode(&act); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := s.registry.AddActuator(r.Context(), &act); err != nil {
		s.writeDomainError(w, err, "failed to create actuator")
		return
	}
	writeJSON(w, http.StatusCreated, act)
}

// handleGetActuator returns a single actuator by ID.
func (s *Server) handleGetActuator(w http.ResponseWriter, r *http.Request) {
	act, err := s.registry.GetActuator(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err, "failed to get actuator")
		return
	}
	writeJSON(w, http.StatusOK, act)
}

// actuatorValueRequest is the body of POST /actuators/{id}/value. Value may
// be a JSON number or a numeric string.
type actuatorValueRequest struct {
	Value *decimal.Decimal `json:"value"`
}

// handleSetActuatorValue stores a new setting for an actuator.
func (s *Server) handleSetActuatorValue(w http.ResponseWriter, r *http.Request) {
	var req actuatorValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Value == nil {
		writeBadRequest(w, "value is required")
		return
	}

	act, err := s.registry.SetActuatorValue(r.Context(), chi.URLParam(r, "id"), *req.Value)
	if err != nil {
		s.writeDomainError(w, err, "failed to set actuator value")
		return
	}
	writeJSON(w, http.StatusOK, act)
}

// handleDevicesWithActuator lists the active devices carrying an actuator
// of ?functionality=, with their rooms.
func (s *Server) handleDevicesWithActuator(w http.ResponseWriter, r *http.Request) {
	functionality := r.URL.Query().Get("functionality")
	if functionality == "" {
		writeBadRequest(w, "functionality query parameter is required")
		return
	}
	devices, err := s.registry.DevicesWithActuator(r.Context(), functionality)
	if err != nil {
		s.writeDomainError(w, err, "failed to list devices")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"functionality": functionality,
		"devices":       devices,
		"count":         len(devices),
	})
}

// handleListFunctionalities returns the functionality catalogue with the
// shape and unit of each sensor functionality, plus the actuator
// functionalities.
func (s *Server) handleListFunctionalities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sensors":   s.router.Routes(),
		"actuators": s.registry.ActuatorFunctionalities(),
	})
}
