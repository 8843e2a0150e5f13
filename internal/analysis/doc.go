// Package analysis computes results across reading series: per-device
// aggregation by functionality, maximum temperature difference between two
// correlated series, and peak power consumption of the house.
//
// All services read through measurement.Router and measurement.Stores and
// never modify readings. Windows are inclusive on both ends and a window
// that ends before it starts is rejected with measurement.ErrInvalidRange
// before any store is queried.
package analysis
