package measurement

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/location"
)

// Shape is the storage shape of a reading.
type Shape string

const (
	ShapeInstant         Shape = "instant"
	ShapeInterval        Shape = "interval"
	ShapeInstantLocation Shape = "instant_location"
)

// Shapes lists every shape in a fixed order.
var Shapes = []Shape{ShapeInstant, ShapeInterval, ShapeInstantLocation}

// ParseShape validates a shape name.
func ParseShape(s string) (Shape, error) {
	switch sh := Shape(s); sh {
	case ShapeInstant, ShapeInterval, ShapeInstantLocation:
		return sh, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownShape, s)
	}
}

// Reading is one immutable measurement. Value is kept as text exactly as
// reported and parsed on use.
//
// Time is the reading's timestamp; for an interval reading it is the end of
// the interval and Start is the beginning. Location is set only on
// instant_location readings.
type Reading struct {
	ID       string        `json:"id"`
	SensorID string        `json:"sensor_id"`
	Value    string        `json:"value"`
	Unit     string        `json:"unit"`
	Start    *time.Time    `json:"start,omitempty"`
	Time     time.Time     `json:"time"`
	Location *location.GPS `json:"location,omitempty"`
}

// Shape derives the reading's shape from the fields it carries.
func (r Reading) Shape() Shape {
	switch {
	case r.Start != nil:
		return ShapeInterval
	case r.Location != nil:
		return ShapeInstantLocation
	default:
		return ShapeInstant
	}
}

// Number parses the reading's value.
func (r Reading) Number() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(r.Value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: reading %s value %q", ErrMalformedReading, r.ID, r.Value)
	}
	return d, nil
}

// Within reports whether the reading lies in [start, end]. Interval
// readings must be fully contained.
func (r Reading) Within(start, end time.Time) bool {
	from := r.Time
	if r.Start != nil {
		from = *r.Start
	}
	return !from.Before(start) && !r.Time.After(end)
}

// CheckRange returns ErrInvalidRange when end precedes start.
func CheckRange(start, end time.Time) error {
	if end.Before(start) {
		return fmt.Errorf("%w: end %s precedes start %s", ErrInvalidRange,
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return nil
}
