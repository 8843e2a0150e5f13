package device

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/location"
)

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// RoomLookup resolves the room a device is installed in.
type RoomLookup interface {
	GetByID(ctx context.Context, id string) (*location.Room, error)
}

// Catalog reports whether a sensor functionality is configured.
type Catalog interface {
	Known(functionality string) bool
}

// Registry coordinates devices, sensors and actuators and answers the
// directory lookups used by ingestion and analysis.
//
// All public methods are safe for concurrent use.
type Registry struct {
	devices   DeviceRepository
	sensors   SensorRepository
	actuators ActuatorRepository
	rooms     RoomLookup
	catalog   Catalog
	actuation map[string]bool
	logger    Logger
}

// NewRegistry creates a device registry.
//
// Parameters:
//   - catalog: the sensor functionalities readings can be routed for
//   - actuatorFunctionalities: the functionalities an actuator may declare
func NewRegistry(devices DeviceRepository, sensors SensorRepository, actuators ActuatorRepository,
	rooms RoomLookup, catalog Catalog, actuatorFunctionalities []string) *Registry {
	actuation := make(map[string]bool, len(actuatorFunctionalities))
	for _, name := range actuatorFunctionalities {
		actuation[name] = true
	}
	return &Registry{
		devices:   devices,
		sensors:   sensors,
		actuators: actuators,
		rooms:     rooms,
		catalog:   catalog,
		actuation: actuation,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// CreateDevice validates and stores a new active device.
// Returns ErrRoomNotFound if the room does not exist.
func (r *Registry) CreateDevice(ctx context.Context, d *Device) error {
	if d.Status == "" {
		d.Status = StatusActive
	}
	if d.Status != StatusActive {
		return fmt.Errorf("%w: new devices must be active", ErrInvalidDevice)
	}
	if err := ValidateDevice(d); err != nil {
		return err
	}
	if _, err := r.rooms.GetByID(ctx, d.RoomID); err != nil {
		if errors.Is(err, location.ErrRoomNotFound) {
			return fmt.Errorf("device %s: %w", d.ID, ErrRoomNotFound)
		}
		return err
	}
	if err := r.devices.Create(ctx, d); err != nil {
		return err
	}
	r.logger.Info("device created", "device_id", d.ID, "room_id", d.RoomID)
	return nil
}

// GetDevice retrieves a device by ID.
func (r *Registry) GetDevice(ctx context.Context, id string) (*Device, error) {
	return r.devices.GetByID(ctx, id)
}

// ListDevices returns every device.
func (r *Registry) ListDevices(ctx context.Context) ([]Device, error) {
	return r.devices.List(ctx)
}

// DevicesByRoom returns the devices in one room.
func (r *Registry) DevicesByRoom(ctx context.Context, roomID string) ([]Device, error) {
	return r.devices.ListByRoom(ctx, roomID)
}

// DeactivateDevice takes a device out of service. The device is reserved
// first and written back through the reservation guard.
// Returns ErrDeviceInactive if it was already deactivated.
func (r *Registry) DeactivateDevice(ctx context.Context, id string) (*Device, error) {
	d, tok, err := r.devices.FindAndReserve(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.IsActive() {
		return nil, fmt.Errorf("device %s: %w", id, ErrDeviceInactive)
	}
	d.Status = StatusDeactivated
	updated, err := r.devices.UpdateReserved(ctx, tok, d)
	if err != nil {
		return nil, fmt.Errorf("deactivating device %s: %w", id, err)
	}
	r.logger.Info("device deactivated", "device_id", id)
	return updated, nil
}

// AddSensor attaches a sensor to an active device. An empty ID is replaced
// with a generated one.
func (r *Registry) AddSensor(ctx context.Context, s *Sensor) error {
	if s.ID == "" {
		s.ID = GenerateID()
	}
	if err := ValidateSensor(s); err != nil {
		return err
	}
	if !r.catalog.Known(s.Functionality) {
		return fmt.Errorf("sensor %s: %w %q", s.ID, ErrUnknownFunctionality, s.Functionality)
	}
	if err := r.requireActive(ctx, s.DeviceID); err != nil {
		return err
	}
	if err := r.sensors.Create(ctx, s); err != nil {
		return err
	}
	r.logger.Info("sensor added", "sensor_id", s.ID, "device_id", s.DeviceID, "functionality", s.Functionality)
	return nil
}

// GetSensor retrieves a sensor by ID.
func (r *Registry) GetSensor(ctx context.Context, id string) (*Sensor, error) {
	return r.sensors.GetByID(ctx, id)
}

// ListSensors returns every sensor.
func (r *Registry) ListSensors(ctx context.Context) ([]Sensor, error) {
	return r.sensors.List(ctx)
}

// SensorsOfDevice returns every sensor owned by a device.
// Returns ErrDeviceNotFound if the device does not exist.
func (r *Registry) SensorsOfDevice(ctx context.Context, deviceID string) ([]Sensor, error) {
	if _, err := r.devices.GetByID(ctx, deviceID); err != nil {
		return nil, err
	}
	return r.sensors.ListByDevice(ctx, deviceID)
}

// SensorsByFunctionality returns every sensor of a functionality, across devices.
func (r *Registry) SensorsByFunctionality(ctx context.Context, functionality string) ([]Sensor, error) {
	return r.sensors.ListByFunctionality(ctx, functionality)
}

// SensorsOfDeviceWithFunctionality returns the sensors of one device that
// measure functionality.
func (r *Registry) SensorsOfDeviceWithFunctionality(ctx context.Context, deviceID, functionality string) ([]Sensor, error) {
	if _, err := r.devices.GetByID(ctx, deviceID); err != nil {
		return nil, err
	}
	return r.sensors.ListByDeviceAndFunctionality(ctx, deviceID, functionality)
}

// DeviceOfSensor returns the device that owns a sensor.
func (r *Registry) DeviceOfSensor(ctx context.Context, sensorID string) (*Device, error) {
	s, err := r.sensors.GetByID(ctx, sensorID)
	if err != nil {
		return nil, err
	}
	return r.devices.GetByID(ctx, s.DeviceID)
}

// AddActuator attaches an actuator to an active device.
func (r *Registry) AddActuator(ctx context.Context, a *Actuator) error {
	if a.ID == "" {
		a.ID = GenerateID()
	}
	a.Value, a.ValueSetAt = nil, nil
	if err := ValidateActuator(a); err != nil {
		return err
	}
	if !r.actuation[a.Functionality] {
		return fmt.Errorf("actuator %s: %w %q", a.ID, ErrUnknownFunctionality, a.Functionality)
	}
	if err := r.requireActive(ctx, a.DeviceID); err != nil {
		return err
	}
	if err := r.actuators.Create(ctx, a); err != nil {
		return err
	}
	r.logger.Info("actuator added", "actuator_id", a.ID, "device_id", a.DeviceID, "functionality", a.Functionality)
	return nil
}

// ActuatorFunctionalities returns the functionalities actuators may
// declare, sorted by name.
func (r *Registry) ActuatorFunctionalities() []string {
	names := make([]string, 0, len(r.actuation))
	for name := range r.actuation {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// GetActuator retrieves an actuator by ID.
func (r *Registry) GetActuator(ctx context.Context, id string) (*Actuator, error) {
	return r.actuators.GetByID(ctx, id)
}

// ListActuators returns every actuator.
func (r *Registry) ListActuators(ctx context.Context) ([]Actuator, error) {
	return r.actuators.List(ctx)
}

// ActuatorsOfDevice returns the actuators of one device.
func (r *Registry) ActuatorsOfDevice(ctx context.Context, deviceID string) ([]Actuator, error) {
	if _, err := r.devices.GetByID(ctx, deviceID); err != nil {
		return nil, err
	}
	return r.actuators.ListByDevice(ctx, deviceID)
}

// SetActuatorValue stores a new setting for an actuator. The actuator is
// reserved first and written back through the reservation guard.
//
// Returns ErrDeviceInactive if its device is deactivated and
// ErrValueOutOfRange if the actuator rejects v.
func (r *Registry) SetActuatorValue(ctx context.Context, id string, v decimal.Decimal) (*Actuator, error) {
	a, tok, err := r.actuators.FindAndReserve(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.requireActive(ctx, a.DeviceID); err != nil {
		return nil, fmt.Errorf("actuator %s: %w", id, err)
	}
	if err := a.CheckValue(v); err != nil {
		return nil, fmt.Errorf("actuator %s: %w", id, err)
	}

	now := time.Now().UTC()
	a.Value, a.ValueSetAt = &v, &now
	updated, err := r.actuators.UpdateReserved(ctx, tok, a)
	if err != nil {
		return nil, fmt.Errorf("setting actuator %s: %w", id, err)
	}
	r.logger.Info("actuator value set", "actuator_id", id, "device_id", a.DeviceID, "value", v.String())
	return updated, nil
}

// DeviceRoom places a device in its room.
type DeviceRoom struct {
	DeviceID string `json:"device_id"`
	RoomID   string `json:"room_id"`
}

// DevicesWithActuator returns the active devices carrying an actuator of
// functionality, with their rooms, in actuator creation order. Each device
// appears once.
//
// Returns ErrUnknownFunctionality if actuators cannot declare functionality.
func (r *Registry) DevicesWithActuator(ctx context.Context, functionality string) ([]DeviceRoom, error) {
	if !r.actuation[functionality] {
		return nil, fmt.Errorf("%w %q", ErrUnknownFunctionality, functionality)
	}
	actuators, err := r.actuators.ListByFunctionality(ctx, functionality)
	if err != nil {
		return nil, fmt.Errorf("listing actuators: %w", err)
	}

	out := []DeviceRoom{}
	seen := make(map[string]bool)
	for _, a := range actuators {
		if seen[a.DeviceID] {
			continue
		}
		seen[a.DeviceID] = true
		d, err := r.devices.GetByID(ctx, a.DeviceID)
		if err != nil {
			return nil, err
		}
		if d.IsActive() {
			out = append(out, DeviceRoom{DeviceID: d.ID, RoomID: d.RoomID})
		}
	}
	return out, nil
}

// GroupByFunctionality maps each functionality carried by a sensor or an
// actuator to the rooms holding such devices and, per room, the device IDs.
// A device appears once per functionality and room, in creation order.
func (r *Registry) GroupByFunctionality(ctx context.Context) (map[string]map[string][]string, error) {
	devices, err := r.devices.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	sensors, err := r.sensors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sensors: %w", err)
	}
	actuators, err := r.actuators.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing actuators: %w", err)
	}

	byDevice := make(map[string][]string)
	for _, s := range sensors {
		byDevice[s.DeviceID] = append(byDevice[s.DeviceID], s.Functionality)
	}
	for _, a := range actuators {
		byDevice[a.DeviceID] = append(byDevice[a.DeviceID], a.Functionality)
	}

	groups := make(map[string]map[string][]string)
	for _, d := range devices {
		for _, fn := range byDevice[d.ID] {
			rooms, ok := groups[fn]
			if !ok {
				rooms = make(map[string][]string)
				groups[fn] = rooms
			}
			if !slices.Contains(rooms[d.RoomID], d.ID) {
				rooms[d.RoomID] = append(rooms[d.RoomID], d.ID)
			}
		}
	}
	return groups, nil
}

func (r *Registry) requireActive(ctx context.Context, deviceID string) error {
	d, err := r.devices.GetByID(ctx, deviceID)
	if err != nil {
		return err
	}
	if !d.IsActive() {
		return fmt.Errorf("device %s: %w", deviceID, ErrDeviceInactive)
	}
	return nil
}
