package analysis

import (
	"context"
	"time"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/device"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/measurement"
)

// SensorLister enumerates the sensors of a device.
type SensorLister interface {
	SensorsOfDevice(ctx context.Context, deviceID string) ([]device.Sensor, error)
}

// Aggregator groups a device's readings by functionality.
type Aggregator struct {
	sensors SensorLister
	router  *measurement.Router
	stores  *measurement.Stores
}

// NewAggregator creates an Aggregator.
func NewAggregator(sensors SensorLister, router *measurement.Router, stores *measurement.Stores) *Aggregator {
	return &Aggregator{sensors: sensors, router: router, stores: stores}
}

// Aggregate returns, for every functionality among the device's sensors,
// the readings of those sensors within [start, end]. Every functionality
// is present as a key, with an empty slice when nothing was recorded.
//
// Every sensor is routed before any store is read, so an unmapped
// functionality fails the whole call with measurement.ErrUnmappedFunctionality.
func (a *Aggregator) Aggregate(ctx context.Context, deviceID string, start, end time.Time) (map[string][]measurement.Reading, error) {
	if err := measurement.CheckRange(start, end); err != nil {
		return nil, err
	}
	sensors, err := a.sensors.SensorsOfDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	stores := make([]measurement.Store, len(sensors))
	for i, s := range sensors {
		st, err := a.router.Resolve(a.stores, s.Functionality)
		if err != nil {
			return nil, err
		}
		stores[i] = st
	}

	result := make(map[string][]measurement.Reading)
	for i, s := range sensors {
		readings, err := stores[i].FindBySensorInRange(ctx, s.ID, start, end)
		if err != nil {
			return nil, err
		}
		bucket, ok := result[s.Functionality]
		if !ok {
			bucket = []measurement.Reading{}
		}
		result[s.Functionality] = append(bucket, readings...)
	}
	return result, nil
}
