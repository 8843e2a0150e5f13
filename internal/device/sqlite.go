package device

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/database"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/reservation"
)

// SQLiteDeviceRepository implements DeviceRepository using SQLite.
type SQLiteDeviceRepository struct {
	db   *sql.DB
	slot *reservation.Slot[string, *Device]
}

// NewSQLiteDeviceRepository creates a SQLite-backed device repository.
func NewSQLiteDeviceRepository(db *sql.DB) *SQLiteDeviceRepository {
	r := &SQLiteDeviceRepository{db: db}
	r.slot = reservation.New[string, *Device](reservation.Funcs[string, *Device]{
		Find:  r.GetByID,
		Store: r.update,
	}, deviceID)
	return r
}

const deviceColumns = `id, model, room_id, status, created_at, updated_at`

// Create inserts a new device.
func (r *SQLiteDeviceRepository) Create(ctx context.Context, d *Device) error {
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	_, err := r.db.ExecContext(ctx, `INSERT INTO devices (`+deviceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.Model, d.RoomID, string(d.Status), formatTime(now), formatTime(now))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDeviceExists
		}
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("device %s: %w", d.ID, ErrRoomNotFound)
		}
		return fmt.Errorf("inserting device %s: %w", d.ID, err)
	}
	return nil
}

// GetByID returns a single device.
func (r *SQLiteDeviceRepository) GetByID(ctx context.Context, id string) (*Device, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+deviceColumns+` FROM devices WHERE id = ?`, id)
	d, err := scanDevice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDeviceNotFound
	}
	return d, err
}

// List returns every device in creation order.
func (r *SQLiteDeviceRepository) List(ctx context.Context) ([]Device, error) {
	return r.queryDevices(ctx, `SELECT `+deviceColumns+` FROM devices ORDER BY rowid`)
}

// ListByRoom returns the devices installed in one room.
func (r *SQLiteDeviceRepository) ListByRoom(ctx context.Context, roomID string) ([]Device, error) {
	return r.queryDevices(ctx, `SELECT `+deviceColumns+` FROM devices WHERE room_id = ? ORDER BY rowid`, roomID)
}

// FindAndReserve fetches a device and makes it the current reservation.
func (r *SQLiteDeviceRepository) FindAndReserve(ctx context.Context, id string) (*Device, reservation.Token[string], error) {
	return r.slot.FindAndReserve(ctx, id)
}

// UpdateReserved writes d back if tok is the current reservation.
func (r *SQLiteDeviceRepository) UpdateReserved(ctx context.Context, tok reservation.Token[string], d *Device) (*Device, error) {
	return r.slot.UpdateReserved(ctx, tok, d)
}

func (r *SQLiteDeviceRepository) update(ctx context.Context, d *Device) error {
	d.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `UPDATE devices SET model = ?, room_id = ?, status = ?,
		updated_at = ? WHERE id = ?`,
		d.Model, d.RoomID, string(d.Status), formatTime(d.UpdatedAt), d.ID)
	if err != nil {
		return fmt.Errorf("updating device %s: %w", d.ID, err)
	}
	return requireOneRow(result, ErrDeviceNotFound)
}

func (r *SQLiteDeviceRepository) queryDevices(ctx context.Context, query string, args ...any) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

// SQLiteSensorRepository implements SensorRepository using SQLite.
type SQLiteSensorRepository struct {
	db   *sql.DB
	slot *reservation.Slot[string, *Sensor]
}

// NewSQLiteSensorRepository creates a SQLite-backed sensor repository.
func NewSQLiteSensorRepository(db *sql.DB) *SQLiteSensorRepository {
	r := &SQLiteSensorRepository{db: db}
	r.slot = reservation.New[string, *Sensor](reservation.Funcs[string, *Sensor]{
		Find:  r.GetByID,
		Store: r.update,
	}, sensorID)
	return r
}

const sensorColumns = `id, device_id, functionality, created_at`

// Create inserts a new sensor.
func (r *SQLiteSensorRepository) Create(ctx context.Context, s *Sensor) error {
	s.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `INSERT INTO sensors (`+sensorColumns+`) VALUES (?, ?, ?, ?)`,
		s.ID, s.DeviceID, s.Functionality, formatTime(s.CreatedAt))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrSensorExists
		}
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("sensor %s: %w", s.ID, ErrDeviceNotFound)
		}
		return fmt.Errorf("inserting sensor %s: %w", s.ID, err)
	}
	return nil
}

// GetByID returns a single sensor.
func (r *SQLiteSensorRepository) GetByID(ctx context.Context, id string) (*Sensor, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sensorColumns+` FROM sensors WHERE id = ?`, id)
	s, err := scanSensor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSensorNotFound
	}
	return s, err
}

// List returns every sensor in creation order.
func (r *SQLiteSensorRepository) List(ctx context.Context) ([]Sensor, error) {
	return r.querySensors(ctx, `SELECT `+sensorColumns+` FROM sensors ORDER BY rowid`)
}

// ListByDevice returns the sensors of one device.
func (r *SQLiteSensorRepository) ListByDevice(ctx context.Context, deviceID string) ([]Sensor, error) {
	return r.querySensors(ctx, `SELECT `+sensorColumns+` FROM sensors WHERE device_id = ? ORDER BY rowid`, deviceID)
}

// ListByFunctionality returns every sensor measuring functionality.
func (r *SQLiteSensorRepository) ListByFunctionality(ctx context.Context, functionality string) ([]Sensor, error) {
	return r.querySensors(ctx, `SELECT `+sensorColumns+` FROM sensors WHERE functionality = ? ORDER BY rowid`, functionality)
}

// ListByDeviceAndFunctionality returns the sensors of one device measuring functionality.
func (r *SQLiteSensorRepository) ListByDeviceAndFunctionality(ctx context.Context, deviceID, functionality string) ([]Sensor, error) {
	return r.querySensors(ctx, `SELECT `+sensorColumns+` FROM sensors
		WHERE device_id = ? AND functionality = ? ORDER BY rowid`, deviceID, functionality)
}

// FindAndReserve fetches a sensor and makes it the current reservation.
func (r *SQLiteSensorRepository) FindAndReserve(ctx context.Context, id string) (*Sensor, reservation.Token[string], error) {
	return r.slot.FindAndReserve(ctx, id)
}

// UpdateReserved writes s back if tok is the current reservation.
func (r *SQLiteSensorRepository) UpdateReserved(ctx context.Context, tok reservation.Token[string], s *Sensor) (*Sensor, error) {
	return r.slot.UpdateReserved(ctx, tok, s)
}

func (r *SQLiteSensorRepository) update(ctx context.Context, s *Sensor) error {
	result, err := r.db.ExecContext(ctx, `UPDATE sensors SET device_id = ?, functionality = ? WHERE id = ?`,
		s.DeviceID, s.Functionality, s.ID)
	if err != nil {
		return fmt.Errorf("updating sensor %s: %w", s.ID, err)
	}
	return requireOneRow(result, ErrSensorNotFound)
}

func (r *SQLiteSensorRepository) querySensors(ctx context.Context, query string, args ...any) ([]Sensor, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sensors: %w", err)
	}
	defer rows.Close()

	var sensors []Sensor
	for rows.Next() {
		s, err := scanSensor(rows)
		if err != nil {
			return nil, err
		}
		sensors = append(sensors, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sensors: %w", err)
	}
	return sensors, nil
}

// SQLiteActuatorRepository implements ActuatorRepository using SQLite.
// Properties are stored as a JSON document and the value as a decimal string.
type SQLiteActuatorRepository struct {
	db   *sql.DB
	slot *reservation.Slot[string, *Actuator]
}

// NewSQLiteActuatorRepository creates a SQLite-backed actuator repository.
func NewSQLiteActuatorRepository(db *sql.DB) *SQLiteActuatorRepository {
	r := &SQLiteActuatorRepository{db: db}
	r.slot = reservation.New[string, *Actuator](reservation.Funcs[string, *Actuator]{
		Find:  r.GetByID,
		Store: r.update,
	}, actuatorID)
	return r
}

const actuatorColumns = `id, device_id, functionality, properties, value, value_set_at, created_at`

// Create inserts a new actuator.
func (r *SQLiteActuatorRepository) Create(ctx context.Context, a *Actuator) error {
	props, err := marshalProperties(a.Properties)
	if err != nil {
		return err
	}
	value, setAt := actuatorValueColumns(a)
	a.CreatedAt = time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `INSERT INTO actuators (`+actuatorColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.DeviceID, a.Functionality, props, value, setAt, formatTime(a.CreatedAt))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrActuatorExists
		}
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("actuator %s: %w", a.ID, ErrDeviceNotFound)
		}
		return fmt.Errorf("inserting actuator %s: %w", a.ID, err)
	}
	return nil
}

// GetByID returns a single actuator.
func (r *SQLiteActuatorRepository) GetByID(ctx context.Context, id string) (*Actuator, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+actuatorColumns+` FROM actuators WHERE id = ?`, id)
	a, err := scanActuator(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActuatorNotFound
	}
	return a, err
}

// List returns every actuator in creation order.
func (r *SQLiteActuatorRepository) List(ctx context.Context) ([]Actuator, error) {
	return r.queryActuators(ctx, `SELECT `+actuatorColumns+` FROM actuators ORDER BY rowid`)
}

// ListByDevice returns the actuators of one device.
func (r *SQLiteActuatorRepository) ListByDevice(ctx context.Context, deviceID string) ([]Actuator, error) {
	return r.queryActuators(ctx, `SELECT `+actuatorColumns+` FROM actuators WHERE device_id = ? ORDER BY rowid`, deviceID)
}

// ListByFunctionality returns every actuator with the given functionality.
func (r *SQLiteActuatorRepository) ListByFunctionality(ctx context.Context, functionality string) ([]Actuator, error) {
	return r.queryActuators(ctx, `SELECT `+actuatorColumns+` FROM actuators WHERE functionality = ? ORDER BY rowid`, functionality)
}

// FindAndReserve fetches an actuator and makes it the current reservation.
func (r *SQLiteActuatorRepository) FindAndReserve(ctx context.Context, id string) (*Actuator, reservation.Token[string], error) {
	return r.slot.FindAndReserve(ctx, id)
}

// UpdateReserved writes a back if tok is the current reservation.
func (r *SQLiteActuatorRepository) UpdateReserved(ctx context.Context, tok reservation.Token[string], a *Actuator) (*Actuator, error) {
	return r.slot.UpdateReserved(ctx, tok, a)
}

func (r *SQLiteActuatorRepository) update(ctx context.Context, a *Actuator) error {
	props, err := marshalProperties(a.Properties)
	if err != nil {
		return err
	}
	value, setAt := actuatorValueColumns(a)
	result, err := r.db.ExecContext(ctx, `UPDATE actuators SET device_id = ?, functionality = ?,
		properties = ?, value = ?, value_set_at = ? WHERE id = ?`, a.DeviceID, a.Functionality, props, value, setAt, a.ID)
	if err != nil {
		return fmt.Errorf("updating actuator %s: %w", a.ID, err)
	}
	return requireOneRow(result, ErrActuatorNotFound)
}

func (r *SQLiteActuatorRepository) queryActuators(ctx context.Context, query string, args ...any) ([]Actuator, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying actuators: %w", err)
	}
	defer rows.Close()

	var actuators []Actuator
	for rows.Next() {
		a, err := scanActuator(rows)
		if err != nil {
			return nil, err
		}
		actuators = append(actuators, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating actuators: %w", err)
	}
	return actuators, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (*Device, error) {
	var d Device
	var status, createdAt, updatedAt string
	if err := row.Scan(&d.ID, &d.Model, &d.RoomID, &status, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning device: %w", err)
	}
	d.Status = Status(status)
	d.CreatedAt = parseTime(createdAt)
	d.UpdatedAt = parseTime(updatedAt)
	return &d, nil
}

func scanSensor(row rowScanner) (*Sensor, error) {
	var s Sensor
	var createdAt string
	if err := row.Scan(&s.ID, &s.DeviceID, &s.Functionality, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning sensor: %w", err)
	}
	s.CreatedAt = parseTime(createdAt)
	return &s, nil
}

func scanActuator(row rowScanner) (*Actuator, error) {
	var a Actuator
	var props, value, setAt sql.NullString
	var createdAt string
	if err := row.Scan(&a.ID, &a.DeviceID, &a.Functionality, &props, &value, &setAt, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning actuator: %w", err)
	}
	if props.Valid && props.String != "" {
		var p ActuatorProperties
		if err := json.Unmarshal([]byte(props.String), &p); err != nil {
			return nil, fmt.Errorf("decoding properties of actuator %s: %w", a.ID, err)
		}
		a.Properties = &p
	}
	if value.Valid {
		v, err := decimal.NewFromString(value.String)
		if err != nil {
			return nil, fmt.Errorf("decoding value of actuator %s: %w", a.ID, err)
		}
		a.Value = &v
	}
	if setAt.Valid {
		t := parseTime(setAt.String)
		a.ValueSetAt = &t
	}
	a.CreatedAt = parseTime(createdAt)
	return &a, nil
}

func actuatorValueColumns(a *Actuator) (value, setAt sql.NullString) {
	if a.Value != nil {
		value = sql.NullString{String: a.Value.String(), Valid: true}
	}
	if a.ValueSetAt != nil {
		setAt = sql.NullString{String: formatTime(*a.ValueSetAt), Valid: true}
	}
	return value, setAt
}

func marshalProperties(p *ActuatorProperties) (sql.NullString, error) {
	if p == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding actuator properties: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func requireOneRow(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
