package analysis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/device"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/measurement"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func at(minutes int) time.Time { return t0.Add(time.Duration(minutes) * time.Minute) }

func instant(sensor, value string, minutes int) measurement.Reading {
	return measurement.Reading{SensorID: sensor, Value: value, Time: at(minutes)}
}

func interval(sensor, value string, fromMin, toMin int) measurement.Reading {
	start := at(fromMin)
	return measurement.Reading{SensorID: sensor, Value: value, Start: &start, Time: at(toMin)}
}

func testRouter(t *testing.T) *measurement.Router {
	t.Helper()
	r, err := measurement.NewRouter([]measurement.Route{
		{Functionality: "TemperatureCelsius", Shape: measurement.ShapeInstant, Unit: "C"},
		{Functionality: "HumidityPercentage", Shape: measurement.ShapeInstant, Unit: "%"},
		{Functionality: "PowerAverage", Shape: measurement.ShapeInterval, Unit: "W"},
		{Functionality: "SpecificTimePowerConsumption", Shape: measurement.ShapeInstant, Unit: "W"},
		{Functionality: "Sunrise", Shape: measurement.ShapeInstantLocation, Unit: "h"},
	})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	return r
}

// fakeDirectory is an in-memory sensor directory.
type fakeDirectory struct {
	sensors []device.Sensor
	devices map[string]bool
}

func newFakeDirectory(sensors ...device.Sensor) *fakeDirectory {
	d := &fakeDirectory{sensors: sensors, devices: make(map[string]bool)}
	for _, s := range sensors {
		d.devices[s.DeviceID] = true
	}
	return d
}

func (d *fakeDirectory) SensorsOfDevice(_ context.Context, deviceID string) ([]device.Sensor, error) {
	if !d.devices[deviceID] {
		return nil, device.ErrDeviceNotFound
	}
	var out []device.Sensor
	for _, s := range d.sensors {
		if s.DeviceID == deviceID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (d *fakeDirectory) SensorsOfDeviceWithFunctionality(ctx context.Context, deviceID, functionality string) ([]device.Sensor, error) {
	all, err := d.SensorsOfDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	var out []device.Sensor
	for _, s := range all {
		if s.Functionality == functionality {
			out = append(out, s)
		}
	}
	return out, nil
}

func (d *fakeDirectory) SensorsByFunctionality(_ context.Context, functionality string) ([]device.Sensor, error) {
	var out []device.Sensor
	for _, s := range d.sensors {
		if s.Functionality == functionality {
			out = append(out, s)
		}
	}
	return out, nil
}

func (d *fakeDirectory) GetSensor(_ context.Context, id string) (*device.Sensor, error) {
	for _, s := range d.sensors {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, device.ErrSensorNotFound
}

// appendAll stores readings, assigning IDs in order.
func appendAll(t *testing.T, stores *measurement.Stores, readings ...measurement.Reading) {
	t.Helper()
	for i, r := range readings {
		if r.ID == "" {
			r.ID = fmt.Sprintf("%s-%d", r.SensorID, i)
		}
		st, err := stores.For(r.Shape())
		if err != nil {
			t.Fatalf("For(%s) error = %v", r.Shape(), err)
		}
		if err := st.Append(context.Background(), r); err != nil {
			t.Fatalf("Append(%s) error = %v", r.ID, err)
		}
	}
}
