package location

import (
	"context"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/reservation"
)

// HouseRepository defines house persistence.
type HouseRepository interface {
	Create(ctx context.Context, h *House) error
	GetByID(ctx context.Context, id string) (*House, error)
	List(ctx context.Context) ([]House, error)

	// FindAndReserve fetches a house and reserves it for a later UpdateReserved.
	FindAndReserve(ctx context.Context, id string) (*House, reservation.Token[string], error)

	// UpdateReserved writes h if tok is the current reservation for h.ID.
	UpdateReserved(ctx context.Context, tok reservation.Token[string], h *House) (*House, error)
}

// RoomRepository defines room persistence.
type RoomRepository interface {
	Create(ctx context.Context, r *Room) error
	GetByID(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context) ([]Room, error)
	ListByHouse(ctx context.Context, houseID string) ([]Room, error)

	FindAndReserve(ctx context.Context, id string) (*Room, reservation.Token[string], error)
	UpdateReserved(ctx context.Context, tok reservation.Token[string], r *Room) (*Room, error)
}

func houseID(h *House) string { return h.ID }
func roomID(r *Room) string   { return r.ID }
