package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/device"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/measurement"
)

// PowerDirectory finds the grid meter sensor and the power source sensors.
type PowerDirectory interface {
	SensorsOfDeviceWithFunctionality(ctx context.Context, deviceID, functionality string) ([]device.Sensor, error)
	SensorsByFunctionality(ctx context.Context, functionality string) ([]device.Sensor, error)
}

// PeakConfig identifies the grid meter and the sampling cadence.
type PeakConfig struct {
	GridDeviceID        string
	GridFunctionality   string
	SourceFunctionality string
	Cadence             time.Duration
}

// PeakCalculator computes the house's peak power consumption.
type PeakCalculator struct {
	dir    PowerDirectory
	router *measurement.Router
	stores *measurement.Stores
	cfg    PeakConfig
}

// NewPeakCalculator creates a PeakCalculator.
func NewPeakCalculator(dir PowerDirectory, router *measurement.Router, stores *measurement.Stores, cfg PeakConfig) *PeakCalculator {
	return &PeakCalculator{dir: dir, router: router, stores: stores, cfg: cfg}
}

// PeakConsumption returns the largest grid interval value plus the source
// readings taken during [end of interval - cadence, end of interval], over
// the grid intervals contained in [start, end]. It returns zero when no grid
// interval was recorded.
//
// Source readings are keyed by device and timestamp; a later reading of the
// same device at the same instant replaces the earlier one.
func (p *PeakCalculator) PeakConsumption(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	if err := measurement.CheckRange(start, end); err != nil {
		return decimal.Zero, err
	}

	grid, err := p.gridReadings(ctx, start, end)
	if err != nil {
		return decimal.Zero, err
	}
	sources, err := p.sourceReadings(ctx, start, end)
	if err != nil {
		return decimal.Zero, err
	}

	peak := decimal.Zero
	for _, g := range grid {
		sum, err := g.Number()
		if err != nil {
			return decimal.Zero, err
		}
		from := g.Time.Add(-p.cfg.Cadence).UnixNano()
		to := g.Time.UnixNano()
		for _, byTime := range sources {
			for ts, v := range byTime {
				if ts >= from && ts <= to {
					sum = sum.Add(v)
				}
			}
		}
		if sum.GreaterThan(peak) {
			peak = sum
		}
	}
	return peak, nil
}

func (p *PeakCalculator) gridReadings(ctx context.Context, start, end time.Time) ([]measurement.Reading, error) {
	sensors, err := p.dir.SensorsOfDeviceWithFunctionality(ctx, p.cfg.GridDeviceID, p.cfg.GridFunctionality)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrGridMeterNotFound, err)
		}
		return nil, err
	}
	if len(sensors) == 0 {
		return nil, fmt.Errorf("%w: device %s has no %s sensor",
			ErrGridMeterNotFound, p.cfg.GridDeviceID, p.cfg.GridFunctionality)
	}
	store, err := p.router.Resolve(p.stores, p.cfg.GridFunctionality)
	if err != nil {
		return nil, err
	}
	return store.FindBySensorInRange(ctx, sensors[0].ID, start, end)
}

// sourceReadings returns source values keyed by device ID and unix nanoseconds.
func (p *PeakCalculator) sourceReadings(ctx context.Context, start, end time.Time) (map[string]map[int64]decimal.Decimal, error) {
	sensors, err := p.dir.SensorsByFunctionality(ctx, p.cfg.SourceFunctionality)
	if err != nil {
		return nil, err
	}
	out := make(map[string]map[int64]decimal.Decimal)
	if len(sensors) == 0 {
		return out, nil
	}
	store, err := p.router.Resolve(p.stores, p.cfg.SourceFunctionality)
	if err != nil {
		return nil, err
	}
	for _, s := range sensors {
		readings, err := store.FindBySensorInRange(ctx, s.ID, start, end)
		if err != nil {
			return nil, err
		}
		byTime, ok := out[s.DeviceID]
		if !ok {
			byTime = make(map[int64]decimal.Decimal)
			out[s.DeviceID] = byTime
		}
		for _, r := range readings {
			v, err := r.Number()
			if err != nil {
				return nil, err
			}
			byTime[r.Time.UnixNano()] = v
		}
	}
	return out, nil
}
