package measurement

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Store holds the readings of one shape.
type Store interface {
	// Shape returns the shape of every reading in the store.
	Shape() Shape

	// Append adds a reading. Readings are never modified afterwards.
	Append(ctx context.Context, r Reading) error

	// FindBySensor returns all readings of a sensor in insertion order.
	FindBySensor(ctx context.Context, sensorID string) ([]Reading, error)

	// FindBySensorInRange returns the sensor's readings within [start, end],
	// in insertion order.
	FindBySensorInRange(ctx context.Context, sensorID string, start, end time.Time) ([]Reading, error)

	// FindLastBySensor returns the sensor's reading with the latest
	// timestamp, or ErrNotFound. Among equal timestamps the later insertion wins.
	FindLastBySensor(ctx context.Context, sensorID string) (Reading, error)
}

// Stores holds one Store per shape.
type Stores struct {
	byShape map[Shape]Store
}

// NewStores groups stores by their shape. Every shape must be covered
// exactly once.
func NewStores(stores ...Store) (*Stores, error) {
	byShape := make(map[Shape]Store, len(stores))
	for _, s := range stores {
		if _, dup := byShape[s.Shape()]; dup {
			return nil, fmt.Errorf("measurement: duplicate store for shape %s", s.Shape())
		}
		byShape[s.Shape()] = s
	}
	for _, sh := range Shapes {
		if _, ok := byShape[sh]; !ok {
			return nil, fmt.Errorf("measurement: no store for shape %s", sh)
		}
	}
	return &Stores{byShape: byShape}, nil
}

// NewMemoryStores returns in-memory stores for every shape.
func NewMemoryStores() *Stores {
	byShape := make(map[Shape]Store, len(Shapes))
	for _, sh := range Shapes {
		byShape[sh] = NewMemoryStore(sh)
	}
	return &Stores{byShape: byShape}
}

// NewSQLiteStores returns SQLite stores for every shape over db.
func NewSQLiteStores(db *sql.DB) *Stores {
	byShape := make(map[Shape]Store, len(Shapes))
	for _, sh := range Shapes {
		byShape[sh] = NewSQLiteStore(db, sh)
	}
	return &Stores{byShape: byShape}
}

// For returns the store of a shape.
func (s *Stores) For(shape Shape) (Store, error) {
	st, ok := s.byShape[shape]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, shape)
	}
	return st, nil
}
