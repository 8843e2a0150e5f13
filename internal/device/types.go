package device

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a device.
type Status string

const (
	// StatusActive devices accept readings and new sensors.
	StatusActive Status = "active"

	// StatusDeactivated devices are kept for history only.
	StatusDeactivated Status = "deactivated"
)

// Device is a piece of equipment installed in a room. Its ID is the device name.
type Device struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	RoomID    string    `json:"room_id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the device is still in service.
func (d *Device) IsActive() bool {
	return d.Status == StatusActive
}

// Sensor measures one functionality on behalf of a device.
type Sensor struct {
	ID            string    `json:"id"`
	DeviceID      string    `json:"device_id"`
	Functionality string    `json:"functionality"`
	CreatedAt     time.Time `json:"created_at"`
}

// BlindRollerFunctionality is the actuator functionality of blind rollers.
// Their value is a whole percentage of closure.
const BlindRollerFunctionality = "BlindRollerSetter"

var percentRange = IntRange{Min: 0, Max: 100}

// Actuator acts on one functionality on behalf of a device. Value is the
// last accepted setting; it is nil until one is set.
type Actuator struct {
	ID            string              `json:"id"`
	DeviceID      string              `json:"device_id"`
	Functionality string              `json:"functionality"`
	Properties    *ActuatorProperties `json:"properties,omitempty"`
	Value         *decimal.Decimal    `json:"value,omitempty"`
	ValueSetAt    *time.Time          `json:"value_set_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// CheckValue reports whether v is a setting the actuator accepts.
//
// An integer range admits whole numbers inside it and a decimal range
// admits numbers inside it with at most its precision. A blind roller
// without properties admits whole percentages. Any other actuator without
// properties admits every value.
//
// Returns an error wrapping ErrValueOutOfRange when v is rejected.
func (a *Actuator) CheckValue(v decimal.Decimal) error {
	switch {
	case a.Properties != nil && a.Properties.Integer != nil:
		return a.Properties.Integer.check(v)
	case a.Properties != nil && a.Properties.Decimal != nil:
		if !a.Properties.Decimal.Accepts(v) {
			return fmt.Errorf("%w: %s is outside [%s, %s] or has more than %d decimal places",
				ErrValueOutOfRange, v, a.Properties.Decimal.Min, a.Properties.Decimal.Max, a.Properties.Decimal.Precision)
		}
		return nil
	case a.Functionality == BlindRollerFunctionality:
		return percentRange.check(v)
	default:
		return nil
	}
}

// ActuatorProperties bound the values an actuator accepts. At most one
// range is set.
type ActuatorProperties struct {
	Integer *IntRange     `json:"integer,omitempty"`
	Decimal *DecimalRange `json:"decimal,omitempty"`
}

// IntRange is an inclusive integer interval.
type IntRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (r IntRange) check(v decimal.Decimal) error {
	if !v.IsInteger() || v.LessThan(decimal.NewFromInt(int64(r.Min))) || v.GreaterThan(decimal.NewFromInt(int64(r.Max))) {
		return fmt.Errorf("%w: %s is not a whole number in [%d, %d]", ErrValueOutOfRange, v, r.Min, r.Max)
	}
	return nil
}

// DecimalRange is an inclusive decimal interval with a fixed number of
// fractional digits.
type DecimalRange struct {
	Min       decimal.Decimal `json:"min"`
	Max       decimal.Decimal `json:"max"`
	Precision int32           `json:"precision"`
}

// Accepts reports whether v lies in the range and has no more fractional
// digits than the precision allows.
func (r DecimalRange) Accepts(v decimal.Decimal) bool {
	if v.LessThan(r.Min) || v.GreaterThan(r.Max) {
		return false
	}
	return v.Equal(v.Round(r.Precision))
}
