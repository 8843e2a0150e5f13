package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/database"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/reservation"
)

// SQLiteHouseRepository implements HouseRepository using SQLite.
type SQLiteHouseRepository struct {
	db   *sql.DB
	slot *reservation.Slot[string, *House]
}

// NewSQLiteHouseRepository creates a SQLite-backed house repository.
func NewSQLiteHouseRepository(db *sql.DB) *SQLiteHouseRepository {
	r := &SQLiteHouseRepository{db: db}
	r.slot = reservation.New[string, *House](reservation.Funcs[string, *House]{
		Find:  r.GetByID,
		Store: r.update,
	}, houseID)
	return r
}

const houseColumns = `id, street, door, zip_code, city, country, latitude, longitude, created_at, updated_at`

// Create inserts a new house.
func (r *SQLiteHouseRepository) Create(ctx context.Context, h *House) error {
	now := time.Now().UTC()
	h.CreatedAt, h.UpdatedAt = now, now
	a := h.Location.Address
	_, err := r.db.ExecContext(ctx, `INSERT INTO houses (`+houseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, a.Street, a.Door, a.ZipCode, a.City, a.Country,
		h.Location.GPS.Latitude, h.Location.GPS.Longitude,
		formatTime(now), formatTime(now))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrHouseExists
		}
		return fmt.Errorf("inserting house %s: %w", h.ID, err)
	}
	return nil
}

// GetByID returns a single house.
func (r *SQLiteHouseRepository) GetByID(ctx context.Context, id string) (*House, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+houseColumns+` FROM houses WHERE id = ?`, id)
	h, err := scanHouse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHouseNotFound
	}
	return h, err
}

// List returns every house in creation order.
func (r *SQLiteHouseRepository) List(ctx context.Context) ([]House, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+houseColumns+` FROM houses ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying houses: %w", err)
	}
	defer rows.Close()

	var houses []House
	for rows.Next() {
		h, err := scanHouse(rows)
		if err != nil {
			return nil, err
		}
		houses = append(houses, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating houses: %w", err)
	}
	return houses, nil
}

// FindAndReserve fetches a house and makes it the current reservation.
func (r *SQLiteHouseRepository) FindAndReserve(ctx context.Context, id string) (*House, reservation.Token[string], error) {
	return r.slot.FindAndReserve(ctx, id)
}

// UpdateReserved writes h back if tok is the current reservation.
func (r *SQLiteHouseRepository) UpdateReserved(ctx context.Context, tok reservation.Token[string], h *House) (*House, error) {
	return r.slot.UpdateReserved(ctx, tok, h)
}

func (r *SQLiteHouseRepository) update(ctx context.Context, h *House) error {
	h.UpdatedAt = time.Now().UTC()
	a := h.Location.Address
	result, err := r.db.ExecContext(ctx, `UPDATE houses SET street = ?, door = ?, zip_code = ?,
		city = ?, country = ?, latitude = ?, longitude = ?, updated_at = ? WHERE id = ?`,
		a.Street, a.Door, a.ZipCode, a.City, a.Country,
		h.Location.GPS.Latitude, h.Location.GPS.Longitude, formatTime(h.UpdatedAt), h.ID)
	if err != nil {
		return fmt.Errorf("updating house %s: %w", h.ID, err)
	}
	return requireOneRow(result, ErrHouseNotFound)
}

// SQLiteRoomRepository implements RoomRepository using SQLite.
type SQLiteRoomRepository struct {
	db   *sql.DB
	slot *reservation.Slot[string, *Room]
}

// NewSQLiteRoomRepository creates a SQLite-backed room repository.
func NewSQLiteRoomRepository(db *sql.DB) *SQLiteRoomRepository {
	r := &SQLiteRoomRepository{db: db}
	r.slot = reservation.New[string, *Room](reservation.Funcs[string, *Room]{
		Find:  r.GetByID,
		Store: r.update,
	}, roomID)
	return r
}

const roomColumns = `id, house_id, floor, length, width, height, created_at, updated_at`

// Create inserts a new room.
func (r *SQLiteRoomRepository) Create(ctx context.Context, rm *Room) error {
	now := time.Now().UTC()
	rm.CreatedAt, rm.UpdatedAt = now, now
	_, err := r.db.ExecContext(ctx, `INSERT INTO rooms (`+roomColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rm.ID, rm.HouseID, rm.Floor,
		rm.Dimensions.Length, rm.Dimensions.Width, rm.Dimensions.Height,
		formatTime(now), formatTime(now))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrRoomExists
		}
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("room %s: %w", rm.ID, ErrHouseNotFound)
		}
		return fmt.Errorf("inserting room %s: %w", rm.ID, err)
	}
	return nil
}

// GetByID returns a single room.
func (r *SQLiteRoomRepository) GetByID(ctx context.Context, id string) (*Room, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
	rm, err := scanRoom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	return rm, err
}

// List returns every room in creation order.
func (r *SQLiteRoomRepository) List(ctx context.Context) ([]Room, error) {
	return r.queryRooms(ctx, `SELECT `+roomColumns+` FROM rooms ORDER BY rowid`)
}

// ListByHouse returns the rooms of one house.
func (r *SQLiteRoomRepository) ListByHouse(ctx context.Context, houseID string) ([]Room, error) {
	return r.queryRooms(ctx, `SELECT `+roomColumns+` FROM rooms WHERE house_id = ? ORDER BY rowid`, houseID)
}

// FindAndReserve fetches a room and makes it the current reservation.
func (r *SQLiteRoomRepository) FindAndReserve(ctx context.Context, id string) (*Room, reservation.Token[string], error) {
	return r.slot.FindAndReserve(ctx, id)
}

// UpdateReserved writes rm back if tok is the current reservation.
func (r *SQLiteRoomRepository) UpdateReserved(ctx context.Context, tok reservation.Token[string], rm *Room) (*Room, error) {
	return r.slot.UpdateReserved(ctx, tok, rm)
}

func (r *SQLiteRoomRepository) update(ctx context.Context, rm *Room) error {
	rm.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `UPDATE rooms SET floor = ?, length = ?, width = ?,
		height = ?, updated_at = ? WHERE id = ?`,
		rm.Floor, rm.Dimensions.Length, rm.Dimensions.Width, rm.Dimensions.Height,
		formatTime(rm.UpdatedAt), rm.ID)
	if err != nil {
		return fmt.Errorf("updating room %s: %w", rm.ID, err)
	}
	return requireOneRow(result, ErrRoomNotFound)
}

func (r *SQLiteRoomRepository) queryRooms(ctx context.Context, query string, args ...any) ([]Room, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *rm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rooms: %w", err)
	}
	return rooms, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanHouse(row rowScanner) (*House, error) {
	var h House
	var createdAt, updatedAt string
	a := &h.Location.Address
	err := row.Scan(&h.ID, &a.Street, &a.Door, &a.ZipCode, &a.City, &a.Country,
		&h.Location.GPS.Latitude, &h.Location.GPS.Longitude, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning house: %w", err)
	}
	h.CreatedAt = parseTime(createdAt)
	h.UpdatedAt = parseTime(updatedAt)
	return &h, nil
}

func scanRoom(row rowScanner) (*Room, error) {
	var rm Room
	var createdAt, updatedAt string
	err := row.Scan(&rm.ID, &rm.HouseID, &rm.Floor,
		&rm.Dimensions.Length, &rm.Dimensions.Width, &rm.Dimensions.Height,
		&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning room: %w", err)
	}
	rm.CreatedAt = parseTime(createdAt)
	rm.UpdatedAt = parseTime(updatedAt)
	return &rm, nil
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

// parseTime returns the zero time for values not written by formatTime.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
