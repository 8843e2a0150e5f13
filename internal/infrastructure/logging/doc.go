// Package logging provides structured logging for the smart-home backend.
//
// It wraps log/slog so every entry carries the service name and build
// version. JSON output is the default; text is available for local runs.
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Reading values are not secrets, but MQTT and InfluxDB credentials are.
// Never log them.
package logging
