package device

import (
	"context"
	"time"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/memstore"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/reservation"
)

// MemoryDeviceRepository keeps devices in process memory.
type MemoryDeviceRepository struct {
	devices *memstore.Ordered[string, Device]
	slot    *reservation.Slot[string, *Device]
}

// NewMemoryDeviceRepository creates an empty in-memory device repository.
func NewMemoryDeviceRepository() *MemoryDeviceRepository {
	r := &MemoryDeviceRepository{devices: memstore.New[string, Device]()}
	r.slot = reservation.New[string, *Device](reservation.Funcs[string, *Device]{
		Find:  r.GetByID,
		Store: r.replace,
	}, deviceID)
	return r
}

// Create stores a new device.
func (r *MemoryDeviceRepository) Create(_ context.Context, d *Device) error {
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	if !r.devices.Insert(d.ID, *d) {
		return ErrDeviceExists
	}
	return nil
}

// GetByID returns a copy of the device.
func (r *MemoryDeviceRepository) GetByID(_ context.Context, id string) (*Device, error) {
	d, ok := r.devices.Get(id)
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return &d, nil
}

// List returns every device in insertion order.
func (r *MemoryDeviceRepository) List(_ context.Context) ([]Device, error) {
	return r.devices.Filter(nil), nil
}

// ListByRoom returns the devices installed in one room.
func (r *MemoryDeviceRepository) ListByRoom(_ context.Context, roomID string) ([]Device, error) {
	return r.devices.Filter(func(d Device) bool { return d.RoomID == roomID }), nil
}

// FindAndReserve fetches a device and makes it the current reservation.
func (r *MemoryDeviceRepository) FindAndReserve(ctx context.Context, id string) (*Device, reservation.Token[string], error) {
	return r.slot.FindAndReserve(ctx, id)
}

// UpdateReserved writes d back if tok is the current reservation.
func (r *MemoryDeviceRepository) UpdateReserved(ctx context.Context, tok reservation.Token[string], d *Device) (*Device, error) {
	return r.slot.UpdateReserved(ctx, tok, d)
}

func (r *MemoryDeviceRepository) replace(_ context.Context, d *Device) error {
	d.UpdatedAt = time.Now().UTC()
	if !r.devices.Replace(d.ID, *d) {
		return ErrDeviceNotFound
	}
	return nil
}

// MemorySensorRepository keeps sensors in process memory.
type MemorySensorRepository struct {
	sensors *memstore.Ordered[string, Sensor]
	slot    *reservation.Slot[string, *Sensor]
}

// NewMemorySensorRepository creates an empty in-memory sensor repository.
func NewMemorySensorRepository() *MemorySensorRepository {
	r := &MemorySensorRepository{sensors: memstore.New[string, Sensor]()}
	r.slot = reservation.New[string, *Sensor](reservation.Funcs[string, *Sensor]{
		Find:  r.GetByID,
		Store: r.replace,
	}, sensorID)
	return r
}

// Create stores a new sensor.
func (r *MemorySensorRepository) Create(_ context.Context, s *Sensor) error {
	s.CreatedAt = time.Now().UTC()
	if !r.sensors.Insert(s.ID, *s) {
		return ErrSensorExists
	}
	return nil
}

// GetByID returns a copy of the sensor.
func (r *MemorySensorRepository) GetByID(_ context.Context, id string) (*Sensor, error) {
	s, ok := r.sensors.Get(id)
	if !ok {
		return nil, ErrSensorNotFound
	}
	return &s, nil
}

// List returns every sensor in insertion order.
func (r *MemorySensorRepository) List(_ context.Context) ([]Sensor, error) {
	return r.sensors.Filter(nil), nil
}

// ListByDevice returns the sensors of one device.
func (r *MemorySensorRepository) ListByDevice(_ context.Context, deviceID string) ([]Sensor, error) {
	return r.sensors.Filter(func(s Sensor) bool { return s.DeviceID == deviceID }), nil
}

// ListByFunctionality returns every sensor measuring functionality.
func (r *MemorySensorRepository) ListByFunctionality(_ context.Context, functionality string) ([]Sensor, error) {
	return r.sensors.Filter(func(s Sensor) bool { return s.Functionality == functionality }), nil
}

// ListByDeviceAndFunctionality returns the sensors of one device measuring functionality.
func (r *MemorySensorRepository) ListByDeviceAndFunctionality(_ context.Context, deviceID, functionality string) ([]Sensor, error) {
	return r.sensors.Filter(func(s Sensor) bool {
		return s.DeviceID == deviceID && s.Functionality == functionality
	}), nil
}

// FindAndReserve fetches a sensor and makes it the current reservation.
func (r *MemorySensorRepository) FindAndReserve(ctx context.Context, id string) (*Sensor, reservation.Token[string], error) {
	return r.slot.FindAndReserve(ctx, id)
}

// UpdateReserved writes s back if tok is the current reservation.
func (r *MemorySensorRepository) UpdateReserved(ctx context.Context, tok reservation.Token[string], s *Sensor) (*Sensor, error) {
	return r.slot.UpdateReserved(ctx, tok, s)
}

func (r *MemorySensorRepository) replace(_ context.Context, s *Sensor) error {
	if !r.sensors.Replace(s.ID, *s) {
		return ErrSensorNotFound
	}
	return nil
}

// MemoryActuatorRepository keeps actuators in process memory.
type MemoryActuatorRepository struct {
	actuators *memstore.Ordered[string, Actuator]
	slot      *reservation.Slot[string, *Actuator]
}

// NewMemoryActuatorRepository creates an empty in-memory actuator repository.
func NewMemoryActuatorRepository() *MemoryActuatorRepository {
	r := &MemoryActuatorRepository{actuators: memstore.New[string, Actuator]()}
	r.slot = reservation.New[string, *Actuator](reservation.Funcs[string, *Actuator]{
		Find:  r.GetByID,
		Store: r.replace,
	}, actuatorID)
	return r
}

// Create stores a new actuator.
func (r *MemoryActuatorRepository) Create(_ context.Context, a *Actuator) error {
	a.CreatedAt = time.Now().UTC()
	if !r.actuators.Insert(a.ID, *a) {
		return ErrActuatorExists
	}
	return nil
}

// GetByID returns a copy of the actuator. Properties and the value are
// shared with the stored copy; they are replaced, never mutated in place.
func (r *MemoryActuatorRepository) GetByID(_ context.Context, id string) (*Actuator, error) {
	a, ok := r.actuators.Get(id)
	if !ok {
		return nil, ErrActuatorNotFound
	}
	return &a, nil
}

// List returns every actuator in insertion order.
func (r *MemoryActuatorRepository) List(_ context.Context) ([]Actuator, error) {
	return r.actuators.Filter(nil), nil
}

// ListByDevice returns the actuators of one device.
func (r *MemoryActuatorRepository) ListByDevice(_ context.Context, deviceID string) ([]Actuator, error) {
	return r.actuators.Filter(func(a Actuator) bool { return a.DeviceID == deviceID }), nil
}

// ListByFunctionality returns every actuator with the given functionality.
func (r *MemoryActuatorRepository) ListByFunctionality(_ context.Context, functionality string) ([]Actuator, error) {
	return r.actuators.Filter(func(a Actuator) bool { return a.Functionality == functionality }), nil
}

// FindAndReserve fetches an actuator and makes it the current reservation.
func (r *MemoryActuatorRepository) FindAndReserve(ctx context.Context, id string) (*Actuator, reservation.Token[string], error) {
	return r.slot.FindAndReserve(ctx, id)
}

// UpdateReserved writes a back if tok is the current reservation.
func (r *MemoryActuatorRepository) UpdateReserved(ctx context.Context, tok reservation.Token[string], a *Actuator) (*Actuator, error) {
	return r.slot.UpdateReserved(ctx, tok, a)
}

func (r *MemoryActuatorRepository) replace(_ context.Context, a *Actuator) error {
	if !r.actuators.Replace(a.ID, *a) {
		return ErrActuatorNotFound
	}
	return nil
}
