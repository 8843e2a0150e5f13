package measurement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/database"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/location"
)

// SQLiteStore keeps readings of one shape in its own table. Timestamps are
// stored as unix nanoseconds.
type SQLiteStore struct {
	db      *sql.DB
	shape   Shape
	table   string
	columns string
}

// NewSQLiteStore creates a store for shape over db. The schema comes from
// the readings migration.
func NewSQLiteStore(db *sql.DB, shape Shape) *SQLiteStore {
	s := &SQLiteStore{db: db, shape: shape}
	switch shape {
	case ShapeInterval:
		s.table = "interval_readings"
		s.columns = "id, sensor_id, value, unit, recorded_at, started_at"
	case ShapeInstantLocation:
		s.table = "location_readings"
		s.columns = "id, sensor_id, value, unit, recorded_at, latitude, longitude"
	default:
		s.shape = ShapeInstant
		s.table = "instant_readings"
		s.columns = "id, sensor_id, value, unit, recorded_at"
	}
	return s
}

// Shape returns the store's shape.
func (s *SQLiteStore) Shape() Shape { return s.shape }

// Append inserts a reading.
func (s *SQLiteStore) Append(ctx context.Context, r Reading) error {
	if r.Shape() != s.shape {
		return fmt.Errorf("%w: %s reading in %s store", ErrShapeMismatch, r.Shape(), s.shape)
	}

	args := []any{r.ID, r.SensorID, r.Value, r.Unit, r.Time.UnixNano()}
	placeholders := "?, ?, ?, ?, ?"
	switch s.shape {
	case ShapeInterval:
		args = append(args, r.Start.UnixNano())
		placeholders += ", ?"
	case ShapeInstantLocation:
		args = append(args, r.Location.Latitude, r.Location.Longitude)
		placeholders += ", ?, ?"
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO `+s.table+` (`+s.columns+`) VALUES (`+placeholders+`)`, args...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrReadingExists, r.ID)
		}
		return fmt.Errorf("inserting reading %s: %w", r.ID, err)
	}
	return nil
}

// FindBySensor returns all readings of a sensor.
func (s *SQLiteStore) FindBySensor(ctx context.Context, sensorID string) ([]Reading, error) {
	return s.query(ctx, `SELECT `+s.columns+` FROM `+s.table+` WHERE sensor_id = ? ORDER BY seq`, sensorID)
}

// FindBySensorInRange returns the sensor's readings within [start, end].
func (s *SQLiteStore) FindBySensorInRange(ctx context.Context, sensorID string, start, end time.Time) ([]Reading, error) {
	if err := CheckRange(start, end); err != nil {
		return nil, err
	}
	from := "recorded_at"
	if s.shape == ShapeInterval {
		from = "started_at"
	}
	return s.query(ctx, `SELECT `+s.columns+` FROM `+s.table+`
		WHERE sensor_id = ? AND `+from+` >= ? AND recorded_at <= ? ORDER BY seq`,
		sensorID, start.UnixNano(), end.UnixNano())
}

// FindLastBySensor returns the sensor's latest reading.
func (s *SQLiteStore) FindLastBySensor(ctx context.Context, sensorID string) (Reading, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+s.columns+` FROM `+s.table+`
		WHERE sensor_id = ? ORDER BY recorded_at DESC, seq DESC LIMIT 1`, sensorID)
	r, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Reading{}, fmt.Errorf("%w: sensor %s", ErrNotFound, sensorID)
	}
	return r, err
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]Reading, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", s.table, err)
	}
	defer rows.Close()

	readings := []Reading{}
	for rows.Next() {
		r, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", s.table, err)
	}
	return readings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scan(row rowScanner) (Reading, error) {
	var r Reading
	var recordedAt, startedAt int64
	var gps location.GPS

	dest := []any{&r.ID, &r.SensorID, &r.Value, &r.Unit, &recordedAt}
	switch s.shape {
	case ShapeInterval:
		dest = append(dest, &startedAt)
	case ShapeInstantLocation:
		dest = append(dest, &gps.Latitude, &gps.Longitude)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Reading{}, err
		}
		return Reading{}, fmt.Errorf("scanning %s: %w", s.table, err)
	}

	r.Time = time.Unix(0, recordedAt).UTC()
	switch s.shape {
	case ShapeInterval:
		start := time.Unix(0, startedAt).UTC()
		r.Start = &start
	case ShapeInstantLocation:
		r.Location = &gps
	}
	return r, nil
}
