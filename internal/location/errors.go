package location

import "errors"

var (
	// ErrHouseNotFound is returned when a house ID does not exist.
	ErrHouseNotFound = errors.New("location: house not found")

	// ErrHouseExists is returned when creating a house whose ID is taken.
	ErrHouseExists = errors.New("location: house already exists")

	// ErrRoomNotFound is returned when a room ID does not exist.
	ErrRoomNotFound = errors.New("location: room not found")

	// ErrRoomExists is returned when creating a room whose ID is taken.
	ErrRoomExists = errors.New("location: room already exists")

	// ErrInvalidLocation is returned for an incomplete address or out-of-range coordinates.
	ErrInvalidLocation = errors.New("location: invalid location")

	// ErrInvalidRoom is returned when a room fails validation.
	ErrInvalidRoom = errors.New("location: invalid room")
)
