package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a device ID does not exist.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrDeviceExists is returned when creating a device with an ID that already exists.
	ErrDeviceExists = errors.New("device: already exists")

	// ErrDeviceInactive is returned when an operation needs an active device.
	ErrDeviceInactive = errors.New("device: deactivated")

	// ErrInvalidDevice is returned when device validation fails.
	ErrInvalidDevice = errors.New("device: invalid")

	// ErrRoomNotFound is returned when a referenced room does not exist.
	ErrRoomNotFound = errors.New("device: room not found")

	// ErrSensorNotFound is returned when a sensor ID does not exist, or a
	// device has no sensor of the requested functionality.
	ErrSensorNotFound = errors.New("device: sensor not found")

	// ErrSensorExists is returned when creating a sensor with an ID that already exists.
	ErrSensorExists = errors.New("device: sensor already exists")

	// ErrInvalidSensor is returned when sensor validation fails.
	ErrInvalidSensor = errors.New("device: invalid sensor")

	// ErrActuatorNotFound is returned when an actuator ID does not exist.
	ErrActuatorNotFound = errors.New("device: actuator not found")

	// ErrActuatorExists is returned when creating an actuator with an ID that already exists.
	ErrActuatorExists = errors.New("device: actuator already exists")

	// ErrInvalidActuator is returned when actuator validation fails.
	ErrInvalidActuator = errors.New("device: invalid actuator")

	// ErrValueOutOfRange is returned when an actuator rejects a setting.
	ErrValueOutOfRange = errors.New("device: actuator value out of range")

	// ErrUnknownFunctionality is returned when a functionality is not in the catalogue.
	ErrUnknownFunctionality = errors.New("device: unknown functionality")
)
