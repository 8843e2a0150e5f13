// Package api implements the HTTP REST API and WebSocket feed of the
// smart-home backend.
//
// This package provides:
//   - REST endpoints for the house, rooms, devices, sensors and actuators
//   - Reading ingestion and per-device measurement queries
//   - Analysis endpoints (peak power, temperature differences)
//   - Pass-through weather lookups for the house location
//   - A WebSocket hub pushing every accepted reading to subscribers
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Error mapping
//
// Handlers translate domain sentinel errors into status codes: missing
// entities are 404, validation failures 400, lost reservations and
// duplicates 409, and unmapped functionalities or stored data that does
// not parse are 500.
package api
