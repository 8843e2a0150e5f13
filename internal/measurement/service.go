package measurement

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/device"
)

// Logger defines the logging interface used by the Service.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Directory answers the sensor and device lookups the Service needs.
// *device.Registry implements it.
type Directory interface {
	GetSensor(ctx context.Context, id string) (*device.Sensor, error)
	GetDevice(ctx context.Context, id string) (*device.Device, error)
	SensorsOfDeviceWithFunctionality(ctx context.Context, deviceID, functionality string) ([]device.Sensor, error)
}

// Event describes an accepted reading.
type Event struct {
	Reading       Reading `json:"reading"`
	DeviceID      string  `json:"device_id"`
	Functionality string  `json:"functionality"`
	Shape         Shape   `json:"shape"`
}

// Listener is notified after a reading is stored. Listeners run
// synchronously on the ingesting goroutine and must not block.
type Listener interface {
	ReadingIngested(ctx context.Context, e Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(ctx context.Context, e Event)

// ReadingIngested calls f.
func (f ListenerFunc) ReadingIngested(ctx context.Context, e Event) { f(ctx, e) }

// Service ingests readings and looks up the latest reading of a device.
type Service struct {
	dir    Directory
	router *Router
	stores *Stores
	logger Logger

	mu        sync.RWMutex
	listeners []Listener
}

// NewService creates a measurement service.
func NewService(dir Directory, router *Router, stores *Stores) *Service {
	return &Service{dir: dir, router: router, stores: stores, logger: noopLogger{}}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	s.logger = logger
}

// AddListener registers l for every subsequently accepted reading.
func (s *Service) AddListener(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// Ingest validates and stores a reading.
//
// The sensor must exist, its device must be active and the reading must
// have the shape its functionality routes to. The value must parse as a
// number and an interval must not end before it starts. A missing ID is
// generated and a missing unit defaults to the route's unit.
//
// Returns the stored reading.
func (s *Service) Ingest(ctx context.Context, r Reading) (Reading, error) {
	sensor, err := s.dir.GetSensor(ctx, r.SensorID)
	if err != nil {
		return Reading{}, err
	}
	dev, err := s.dir.GetDevice(ctx, sensor.DeviceID)
	if err != nil {
		return Reading{}, err
	}
	if !dev.IsActive() {
		return Reading{}, fmt.Errorf("sensor %s: %w", sensor.ID, device.ErrDeviceInactive)
	}

	route, err := s.router.Route(sensor.Functionality)
	if err != nil {
		return Reading{}, err
	}
	if r.Shape() != route.Shape {
		return Reading{}, fmt.Errorf("%w: sensor %s expects %s readings, got %s",
			ErrShapeMismatch, sensor.ID, route.Shape, r.Shape())
	}
	if r.Time.IsZero() {
		return Reading{}, fmt.Errorf("%w: timestamp is required", ErrMalformedReading)
	}
	if _, err := r.Number(); err != nil {
		return Reading{}, err
	}
	if r.Start != nil {
		if err := CheckRange(*r.Start, r.Time); err != nil {
			return Reading{}, err
		}
	}
	if r.Location != nil {
		if err := r.Location.Validate(); err != nil {
			return Reading{}, fmt.Errorf("%w: %v", ErrMalformedReading, err)
		}
	}

	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Unit == "" {
		r.Unit = route.Unit
	}
	r.Time = r.Time.UTC()
	if r.Start != nil {
		start := r.Start.UTC()
		r.Start = &start
	}

	store, err := s.stores.For(route.Shape)
	if err != nil {
		return Reading{}, err
	}
	if err := store.Append(ctx, r); err != nil {
		return Reading{}, err
	}

	s.logger.Debug("reading ingested", "reading_id", r.ID, "sensor_id", r.SensorID, "shape", route.Shape)
	s.notify(ctx, Event{Reading: r, DeviceID: dev.ID, Functionality: sensor.Functionality, Shape: route.Shape})
	return r, nil
}

// LastMeasurement returns the latest reading of the first sensor of a
// device that measures functionality.
//
// Returns device.ErrSensorNotFound if the device has no such sensor and
// ErrNotFound if the sensor has no readings.
func (s *Service) LastMeasurement(ctx context.Context, deviceID, functionality string) (Reading, error) {
	sensors, err := s.dir.SensorsOfDeviceWithFunctionality(ctx, deviceID, functionality)
	if err != nil {
		return Reading{}, err
	}
	if len(sensors) == 0 {
		return Reading{}, fmt.Errorf("device %s has no %s sensor: %w", deviceID, functionality, device.ErrSensorNotFound)
	}
	store, err := s.router.Resolve(s.stores, functionality)
	if err != nil {
		return Reading{}, err
	}
	return store.FindLastBySensor(ctx, sensors[0].ID)
}

// Readings returns a sensor's readings within [start, end].
func (s *Service) Readings(ctx context.Context, sensorID string, start, end time.Time) ([]Reading, error) {
	if err := CheckRange(start, end); err != nil {
		return nil, err
	}
	sensor, err := s.dir.GetSensor(ctx, sensorID)
	if err != nil {
		return nil, err
	}
	store, err := s.router.Resolve(s.stores, sensor.Functionality)
	if err != nil {
		return nil, err
	}
	return store.FindBySensorInRange(ctx, sensorID, start, end)
}

func (s *Service) notify(ctx context.Context, e Event) {
	s.mu.RLock()
	listeners := s.listeners
	s.mu.RUnlock()
	for _, l := range listeners {
		l.ReadingIngested(ctx, e)
	}
}
