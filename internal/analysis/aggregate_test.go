package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/device"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/measurement"
)

func TestAggregate(t *testing.T) {
	dir := newFakeDirectory(
		device.Sensor{ID: "t1", DeviceID: "heater", Functionality: "TemperatureCelsius"},
		device.Sensor{ID: "t2", DeviceID: "heater", Functionality: "TemperatureCelsius"},
		device.Sensor{ID: "h1", DeviceID: "heater", Functionality: "HumidityPercentage"},
		device.Sensor{ID: "p1", DeviceID: "heater", Functionality: "PowerAverage"},
		device.Sensor{ID: "other", DeviceID: "fridge", Functionality: "TemperatureCelsius"},
	)
	stores := measurement.NewMemoryStores()
	appendAll(t, stores,
		instant("t1", "20", 0),
		instant("t1", "21", 30),
		instant("t1", "22", 90), // outside
		instant("t2", "19", 60),
		instant("other", "5", 10),
		interval("p1", "100", 0, 15),
		interval("p1", "110", 50, 65), // ends outside
	)
	agg := NewAggregator(dir, testRouter(t), stores)

	got, err := agg.Aggregate(context.Background(), "heater", at(0), at(60))
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	want := map[string]int{"TemperatureCelsius": 3, "HumidityPercentage": 0, "PowerAverage": 1}
	if len(got) != len(want) {
		t.Errorf("Aggregate() returned %d keys, want %d: %v", len(got), len(want), got)
	}
	for fn, n := range want {
		bucket, ok := got[fn]
		if !ok {
			t.Errorf("missing key %s", fn)
			continue
		}
		if bucket == nil {
			t.Errorf("%s bucket is nil, want empty slice", fn)
		}
		if len(bucket) != n {
			t.Errorf("%s has %d readings, want %d", fn, len(bucket), n)
		}
		for _, r := range bucket {
			if !r.Within(at(0), at(60)) {
				t.Errorf("%s: reading at %s outside window", fn, r.Time)
			}
		}
	}
}

func TestAggregate_Errors(t *testing.T) {
	dir := newFakeDirectory(
		device.Sensor{ID: "t1", DeviceID: "heater", Functionality: "TemperatureCelsius"},
		device.Sensor{ID: "x1", DeviceID: "heater", Functionality: "Smell"},
		device.Sensor{ID: "t9", DeviceID: "lamp", Functionality: "TemperatureCelsius"},
	)
	agg := NewAggregator(dir, testRouter(t), measurement.NewMemoryStores())
	ctx := context.Background()

	tests := []struct {
		name     string
		deviceID string
		start    int
		end      int
		wantErr  error
	}{
		{"unmapped functionality", "heater", 0, 60, measurement.ErrUnmappedFunctionality},
		{"unknown device", "ghost", 0, 60, device.ErrDeviceNotFound},
		{"inverted window", "lamp", 60, 0, measurement.ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := agg.Aggregate(ctx, tt.deviceID, at(tt.start), at(tt.end))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Aggregate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	got, err := agg.Aggregate(ctx, "lamp", at(0), at(60))
	if err != nil {
		t.Fatalf("Aggregate(lamp) error = %v", err)
	}
	if bucket, ok := got["TemperatureCelsius"]; !ok || len(bucket) != 0 {
		t.Errorf("Aggregate(lamp) = %v, want one empty bucket", got)
	}
}
