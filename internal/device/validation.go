package device

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const maxNameLength = 100

// ValidateDevice checks a device before it is stored.
func ValidateDevice(d *Device) error {
	if err := validateName(d.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDevice, err)
	}
	if strings.TrimSpace(d.Model) == "" {
		return fmt.Errorf("%w: model is required", ErrInvalidDevice)
	}
	if d.RoomID == "" {
		return fmt.Errorf("%w: room_id is required", ErrInvalidDevice)
	}
	switch d.Status {
	case StatusActive, StatusDeactivated:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidDevice, d.Status)
	}
	return nil
}

// ValidateSensor checks a sensor's own fields. Whether the device exists and
// the functionality is known is checked by the Registry.
func ValidateSensor(s *Sensor) error {
	if s.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidSensor)
	}
	if s.DeviceID == "" {
		return fmt.Errorf("%w: device_id is required", ErrInvalidSensor)
	}
	if s.Functionality == "" {
		return fmt.Errorf("%w: functionality is required", ErrInvalidSensor)
	}
	return nil
}

// ValidateActuator checks an actuator's own fields and its properties.
func ValidateActuator(a *Actuator) error {
	if a.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidActuator)
	}
	if a.DeviceID == "" {
		return fmt.Errorf("%w: device_id is required", ErrInvalidActuator)
	}
	if a.Functionality == "" {
		return fmt.Errorf("%w: functionality is required", ErrInvalidActuator)
	}
	if a.Properties == nil {
		return nil
	}

	p := a.Properties
	switch {
	case p.Integer != nil && p.Decimal != nil:
		return fmt.Errorf("%w: properties carry both an integer and a decimal range", ErrInvalidActuator)
	case p.Integer != nil:
		if p.Integer.Min >= p.Integer.Max {
			return fmt.Errorf("%w: integer range min must be below max", ErrInvalidActuator)
		}
	case p.Decimal != nil:
		if !p.Decimal.Min.LessThan(p.Decimal.Max) {
			return fmt.Errorf("%w: decimal range min must be below max", ErrInvalidActuator)
		}
		if p.Decimal.Precision < 0 {
			return fmt.Errorf("%w: decimal precision must not be negative", ErrInvalidActuator)
		}
	}
	return nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("name exceeds %d characters", maxNameLength)
	}
	return nil
}

// GenerateID creates a new random identifier for sensors and actuators.
func GenerateID() string {
	return uuid.New().String()
}
