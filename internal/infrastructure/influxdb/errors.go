package influxdb

import "errors"

// Sentinel errors for InfluxDB operations.
var (
	// ErrNotConnected indicates the client is not connected to InfluxDB.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the initial ping failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled indicates InfluxDB integration is disabled in config.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
