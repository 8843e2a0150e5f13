// Package location provides the house and its rooms.
//
// A deployment manages one House, identified by its postal address and GPS
// coordinates. Rooms belong to the house and carry a floor number and their
// dimensions.
//
// Both repositories come in two flavours: an in-memory one that keeps
// insertion order, and a SQLite one. Each composes a reservation.Slot so
// handlers can find an entity and later write it back only if nothing else
// was reserved in between.
//
// # Thread Safety
//
// All repositories are safe for concurrent use.
package location
