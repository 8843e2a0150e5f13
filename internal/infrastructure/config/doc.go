// Package config handles loading and validating the smart-home backend configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Reading a local .env file before environment overrides
//   - Overriding with SMARTHOME_* environment variables
//   - Validation of required fields and the functionality routing table
//
// The measurement section carries the correlation tolerance, the grid meter
// cadence, and the grid meter device identity. They are read once here and
// handed to the analysis components at construction time.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Measurement.Tolerance())
package config
