package device

import (
	"context"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/reservation"
)

// DeviceRepository defines device persistence.
type DeviceRepository interface {
	Create(ctx context.Context, d *Device) error
	GetByID(ctx context.Context, id string) (*Device, error)
	List(ctx context.Context) ([]Device, error)
	ListByRoom(ctx context.Context, roomID string) ([]Device, error)

	// FindAndReserve fetches a device and reserves it for a later UpdateReserved.
	FindAndReserve(ctx context.Context, id string) (*Device, reservation.Token[string], error)

	// UpdateReserved writes d if tok is the current reservation for d.ID.
	UpdateReserved(ctx context.Context, tok reservation.Token[string], d *Device) (*Device, error)
}

// SensorRepository defines sensor persistence.
type SensorRepository interface {
	Create(ctx context.Context, s *Sensor) error
	GetByID(ctx context.Context, id string) (*Sensor, error)
	List(ctx context.Context) ([]Sensor, error)
	ListByDevice(ctx context.Context, deviceID string) ([]Sensor, error)
	ListByFunctionality(ctx context.Context, functionality string) ([]Sensor, error)
	ListByDeviceAndFunctionality(ctx context.Context, deviceID, functionality string) ([]Sensor, error)

	FindAndReserve(ctx context.Context, id string) (*Sensor, reservation.Token[string], error)
	UpdateReserved(ctx context.Context, tok reservation.Token[string], s *Sensor) (*Sensor, error)
}

// ActuatorRepository defines actuator persistence.
type ActuatorRepository interface {
	Create(ctx context.Context, a *Actuator) error
	GetByID(ctx context.Context, id string) (*Actuator, error)
	List(ctx context.Context) ([]Actuator, error)
	ListByDevice(ctx context.Context, deviceID string) ([]Actuator, error)
	ListByFunctionality(ctx context.Context, functionality string) ([]Actuator, error)

	FindAndReserve(ctx context.Context, id string) (*Actuator, reservation.Token[string], error)
	UpdateReserved(ctx context.Context, tok reservation.Token[string], a *Actuator) (*Actuator, error)
}

func deviceID(d *Device) string     { return d.ID }
func sensorID(s *Sensor) string     { return s.ID }
func actuatorID(a *Actuator) string { return a.ID }
