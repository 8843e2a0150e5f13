package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/location"
)

// handleGetHouse returns the managed house.
func (s *Server) handleGetHouse(w http.ResponseWriter, r *http.Request) {
	house, err := s.houses.GetByID(r.Context(), s.houseID)
	if err != nil {
		s.writeDomainError(w, err, "failed to get house")
		return
	}
	writeJSON(w, http.StatusOK, house)
}

// handleUpdateHouseLocation replaces the house address and coordinates.
// The house is reserved before the update so a concurrent writer loses
// with 409 instead of being overwritten.
func (s *Server) handleUpdateHouseLocation(w http.ResponseWriter, r *http.Request) {
	var loc location.Location
	if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := loc.Validate(); err != nil {
		s.writeDomainError(w, err, "invalid location")
		return
	}

	ctx := r.Context()
	house, tok, err := s.houses.FindAndReserve(ctx, s.houseID)
	if err != nil {
		s.writeDomainError(w, err, "failed to get house")
		return
	}
	house.Location = loc
	updated, err := s.houses.UpdateReserved(ctx, tok, house)
	if err != nil {
		s.writeDomainError(w, err, "failed to update house location")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleListRooms returns the rooms of the house.
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.rooms.ListByHouse(r.Context(), s.houseID)
	if err != nil {
		s.writeDomainError(w, err, "failed to list rooms")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms, "count": len(rooms)})
}

// handleCreateRoom adds a room to the house.
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var room location.Room
	if err := json.NewDecoder(r.Body).Decode(&room); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	room.HouseID = s.houseID
	if err := location.ValidateRoom(&room); err != nil {
		s.writeDomainError(w, err, "invalid room")
		return
	}
	if err := s.rooms.Create(r.Context(), &room); err != nil {
		s.writeDomainError(w, err, "failed to create room")
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

// handleGetRoom returns a single room by ID.
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.rooms.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err, "failed to get room")
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// handleUpdateRoomDimensions replaces a room's dimensions through its
// reservation.
func (s *Server) handleUpdateRoomDimensions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Dimensions location.Dimensions `json:"dimensions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := req.Dimensions.Validate(); err != nil {
		s.writeDomainError(w, err, "invalid dimensions")
		return
	}

	ctx := r.Context()
	room, tok, err := s.rooms.FindAndReserve(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err, "failed to get room")
		return
	}
	room.Dimensions = req.Dimensions
	updated, err := s.rooms.UpdateReserved(ctx, tok, room)
	if err != nil {
		s.writeDomainError(w, err, "failed to update room")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
