package measurement

import (
	"context"
	"fmt"
	"time"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/memstore"
)

// MemoryStore keeps readings of one shape in process memory.
type MemoryStore struct {
	shape    Shape
	readings *memstore.Ordered[string, Reading]
}

// NewMemoryStore creates an empty store for shape.
func NewMemoryStore(shape Shape) *MemoryStore {
	return &MemoryStore{shape: shape, readings: memstore.New[string, Reading]()}
}

// Shape returns the store's shape.
func (m *MemoryStore) Shape() Shape { return m.shape }

// Append adds a reading.
func (m *MemoryStore) Append(_ context.Context, r Reading) error {
	if r.Shape() != m.shape {
		return fmt.Errorf("%w: %s reading in %s store", ErrShapeMismatch, r.Shape(), m.shape)
	}
	if !m.readings.Insert(r.ID, r) {
		return fmt.Errorf("%w: %s", ErrReadingExists, r.ID)
	}
	return nil
}

// FindBySensor returns all readings of a sensor.
func (m *MemoryStore) FindBySensor(_ context.Context, sensorID string) ([]Reading, error) {
	return m.readings.Filter(func(r Reading) bool { return r.SensorID == sensorID }), nil
}

// FindBySensorInRange returns the sensor's readings within [start, end].
func (m *MemoryStore) FindBySensorInRange(_ context.Context, sensorID string, start, end time.Time) ([]Reading, error) {
	if err := CheckRange(start, end); err != nil {
		return nil, err
	}
	return m.readings.Filter(func(r Reading) bool {
		return r.SensorID == sensorID && r.Within(start, end)
	}), nil
}

// FindLastBySensor returns the sensor's latest reading.
func (m *MemoryStore) FindLastBySensor(ctx context.Context, sensorID string) (Reading, error) {
	readings, _ := m.FindBySensor(ctx, sensorID)
	if len(readings) == 0 {
		return Reading{}, fmt.Errorf("%w: sensor %s", ErrNotFound, sensorID)
	}
	last := readings[0]
	for _, r := range readings[1:] {
		if !r.Time.Before(last.Time) {
			last = r
		}
	}
	return last, nil
}
