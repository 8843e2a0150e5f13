package location

import (
	"fmt"
	"strings"
)

const maxNameLength = 100

// Validate checks that the coordinate is on the globe.
func (g GPS) Validate() error {
	if g.Latitude < -90 || g.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidLocation, g.Latitude)
	}
	if g.Longitude < -180 || g.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidLocation, g.Longitude)
	}
	return nil
}

// Validate checks that every address field is filled in.
func (a Address) Validate() error {
	fields := []struct {
		name, value string
	}{
		{"street", a.Street},
		{"door", a.Door},
		{"zip_code", a.ZipCode},
		{"city", a.City},
		{"country", a.Country},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidLocation, f.name)
		}
	}
	return nil
}

// Validate checks both the address and the coordinate.
func (l Location) Validate() error {
	if err := l.Address.Validate(); err != nil {
		return err
	}
	return l.GPS.Validate()
}

// ValidateHouse checks a house before it is stored.
func ValidateHouse(h *House) error {
	if strings.TrimSpace(h.ID) == "" {
		return fmt.Errorf("%w: house id is required", ErrInvalidLocation)
	}
	return h.Location.Validate()
}

// ValidateRoom checks a room before it is stored. The floor may be negative
// for basements; every dimension must be positive.
func ValidateRoom(r *Room) error {
	name := strings.TrimSpace(r.ID)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidRoom)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidRoom, maxNameLength)
	}
	if r.HouseID == "" {
		return fmt.Errorf("%w: house_id is required", ErrInvalidRoom)
	}
	return r.Dimensions.Validate()
}

// Validate checks that every dimension is positive.
func (d Dimensions) Validate() error {
	if d.Length <= 0 || d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: dimensions must be positive", ErrInvalidRoom)
	}
	return nil
}
