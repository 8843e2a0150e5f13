// Package measurement stores sensor readings and routes each sensor to the
// store that holds its readings.
//
// Readings come in three fixed shapes: instant (one timestamp), interval
// (start and end) and instant_location (one timestamp plus a coordinate).
// A sensor's functionality decides its shape through the Router, a closed
// table built from configuration at startup. An unmapped functionality is
// an error, never a guess.
//
// Every Store keeps insertion order. Range queries are inclusive on both
// ends; an interval reading is in range when it lies entirely inside the
// window.
//
// Service validates and appends incoming readings and answers "latest
// reading of this kind for this device". Listeners registered on the
// Service see every accepted reading.
package measurement
