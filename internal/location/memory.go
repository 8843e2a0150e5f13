package location

import (
	"context"
	"time"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/memstore"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/reservation"
)

// MemoryHouseRepository keeps houses in process memory.
type MemoryHouseRepository struct {
	houses *memstore.Ordered[string, House]
	slot   *reservation.Slot[string, *House]
}

// NewMemoryHouseRepository creates an empty in-memory house repository.
func NewMemoryHouseRepository() *MemoryHouseRepository {
	r := &MemoryHouseRepository{houses: memstore.New[string, House]()}
	r.slot = reservation.New[string, *House](reservation.Funcs[string, *House]{
		Find:  r.GetByID,
		Store: r.replace,
	}, houseID)
	return r
}

// Create stores a new house.
func (r *MemoryHouseRepository) Create(_ context.Context, h *House) error {
	now := time.Now().UTC()
	h.CreatedAt, h.UpdatedAt = now, now
	if !r.houses.Insert(h.ID, *h) {
		return ErrHouseExists
	}
	return nil
}

// GetByID returns a copy of the house.
func (r *MemoryHouseRepository) GetByID(_ context.Context, id string) (*House, error) {
	h, ok := r.houses.Get(id)
	if !ok {
		return nil, ErrHouseNotFound
	}
	return &h, nil
}

// List returns every house in insertion order.
func (r *MemoryHouseRepository) List(_ context.Context) ([]House, error) {
	return r.houses.Filter(nil), nil
}

// FindAndReserve fetches a house and makes it the current reservation.
func (r *MemoryHouseRepository) FindAndReserve(ctx context.Context, id string) (*House, reservation.Token[string], error) {
	return r.slot.FindAndReserve(ctx, id)
}

// UpdateReserved writes h back if tok is the current reservation.
func (r *MemoryHouseRepository) UpdateReserved(ctx context.Context, tok reservation.Token[string], h *House) (*House, error) {
	return r.slot.UpdateReserved(ctx, tok, h)
}

func (r *MemoryHouseRepository) replace(_ context.Context, h *House) error {
	h.UpdatedAt = time.Now().UTC()
	if !r.houses.Replace(h.ID, *h) {
		return ErrHouseNotFound
	}
	return nil
}

// MemoryRoomRepository keeps rooms in process memory.
type MemoryRoomRepository struct {
	rooms *memstore.Ordered[string, Room]
	slot  *reservation.Slot[string, *Room]
}

// NewMemoryRoomRepository creates an empty in-memory room repository.
func NewMemoryRoomRepository() *MemoryRoomRepository {
	r := &MemoryRoomRepository{rooms: memstore.New[string, Room]()}
	r.slot = reservation.New[string, *Room](reservation.Funcs[string, *Room]{
		Find:  r.GetByID,
		Store: r.replace,
	}, roomID)
	return r
}

// Create stores a new room.
func (r *MemoryRoomRepository) Create(_ context.Context, rm *Room) error {
	now := time.Now().UTC()
	rm.CreatedAt, rm.UpdatedAt = now, now
	if !r.rooms.Insert(rm.ID, *rm) {
		return ErrRoomExists
	}
	return nil
}

// GetByID returns a copy of the room.
func (r *MemoryRoomRepository) GetByID(_ context.Context, id string) (*Room, error) {
	rm, ok := r.rooms.Get(id)
	if !ok {
		return nil, ErrRoomNotFound
	}
	return &rm, nil
}

// List returns every room in insertion order.
func (r *MemoryRoomRepository) List(_ context.Context) ([]Room, error) {
	return r.rooms.Filter(nil), nil
}

// ListByHouse returns the rooms of one house.
func (r *MemoryRoomRepository) ListByHouse(_ context.Context, houseID string) ([]Room, error) {
	return r.rooms.Filter(func(rm Room) bool { return rm.HouseID == houseID }), nil
}

// FindAndReserve fetches a room and makes it the current reservation.
func (r *MemoryRoomRepository) FindAndReserve(ctx context.Context, id string) (*Room, reservation.Token[string], error) {
	return r.slot.FindAndReserve(ctx, id)
}

// UpdateReserved writes rm back if tok is the current reservation.
func (r *MemoryRoomRepository) UpdateReserved(ctx context.Context, tok reservation.Token[string], rm *Room) (*Room, error) {
	return r.slot.UpdateReserved(ctx, tok, rm)
}

func (r *MemoryRoomRepository) replace(_ context.Context, rm *Room) error {
	rm.UpdatedAt = time.Now().UTC()
	if !r.rooms.Replace(rm.ID, *rm) {
		return ErrRoomNotFound
	}
	return nil
}
