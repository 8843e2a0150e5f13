package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backends accepted by StorageConfig.Backend.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Reading shapes accepted by FunctionalityConfig.Shape.
const (
	ShapeInstant         = "instant"
	ShapeInterval        = "interval"
	ShapeInstantLocation = "instant_location"
)

// Correlation tie-break policies accepted by MeasurementConfig.CorrelationPolicy.
const (
	PolicyLast    = "last"
	PolicyClosest = "closest"
)

// Config is the root configuration structure for the smart-home backend.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	House           HouseConfig           `yaml:"house"`
	Database        DatabaseConfig        `yaml:"database"`
	Storage         StorageConfig         `yaml:"storage"`
	API             APIConfig             `yaml:"api"`
	Measurement     MeasurementConfig     `yaml:"measurement"`
	Functionalities []FunctionalityConfig `yaml:"functionalities"`
	Actuators       []string              `yaml:"actuator_functionalities"`
	Weather         WeatherConfig         `yaml:"weather"`
	MQTT            MQTTConfig            `yaml:"mqtt"`
	InfluxDB        InfluxDBConfig        `yaml:"influxdb"`
	Logging         LoggingConfig         `yaml:"logging"`
}

// HouseConfig describes the single house this backend manages.
type HouseConfig struct {
	ID       string         `yaml:"id"`
	Timezone string         `yaml:"timezone"`
	Location LocationConfig `yaml:"location"`
}

// LocationConfig contains the postal address and GPS coordinates of the house.
type LocationConfig struct {
	Street    string  `yaml:"street"`
	Door      string  `yaml:"door"`
	ZipCode   string  `yaml:"zip_code"`
	City      string  `yaml:"city"`
	Country   string  `yaml:"country"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// StorageConfig selects the repository implementation.
type StorageConfig struct {
	Backend string `yaml:"backend"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host         string           `yaml:"host"`
	Port         int              `yaml:"port"`
	Timeouts     APITimeoutConfig `yaml:"timeouts"`
	CORS         CORSConfig       `yaml:"cors"`
	MaxBodyBytes int64            `yaml:"max_body_bytes"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// MeasurementConfig holds the correlation and peak-consumption parameters.
type MeasurementConfig struct {
	// ToleranceMS is the largest gap, in milliseconds, between two readings
	// that still counts as the same instant.
	ToleranceMS int64 `yaml:"tolerance_ms"`

	// GridMeterCadenceMS is the sampling interval of the grid power meter
	// and the width of the peak-consumption window.
	GridMeterCadenceMS int64 `yaml:"grid_meter_cadence_ms"`

	GridMeterDeviceID               string `yaml:"grid_meter_device_id"`
	GridMeterFunctionality          string `yaml:"grid_meter_functionality"`
	SourceFunctionality             string `yaml:"source_functionality"`
	OutsideTemperatureFunctionality string `yaml:"outside_temperature_functionality"`
	CorrelationPolicy               string `yaml:"correlation_policy"`
}

// FunctionalityConfig maps a sensor functionality to the shape of its readings.
type FunctionalityConfig struct {
	Name  string `yaml:"name"`
	Shape string `yaml:"shape"`
	Unit  string `yaml:"unit"`
}

// WeatherConfig contains the external weather service settings.
type WeatherConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BaseURL     string `yaml:"base_url"`
	GroupNumber int    `yaml:"group_number"`
	Timeout     int    `yaml:"timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled     bool                `yaml:"enabled"`
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
	TopicPrefix string              `yaml:"topic_prefix"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. A .env file in the working directory, if present
//  3. YAML file values (override defaults)
//  4. Environment variables (override file values)
//
// Environment variables follow the pattern: SMARTHOME_SECTION_KEY
// For example: SMARTHOME_DATABASE_PATH, SMARTHOME_MEASUREMENT_TOLERANCE_MS
//
// Parameters:
//   - path: Path to the YAML configuration file, or "" to use defaults only
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	// A missing .env is normal; variables already set in the process win.
	_ = godotenv.Load()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		House: HouseConfig{
			ID:       "house-001",
			Timezone: "UTC",
			Location: LocationConfig{
				Street:    "Rua Dr. António Bernardino de Almeida",
				Door:      "431",
				ZipCode:   "4249-015",
				City:      "Porto",
				Country:   "Portugal",
				Latitude:  41.178,
				Longitude: -8.608,
			},
		},
		Database: DatabaseConfig{
			Path:        "./data/smarthome.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Storage: StorageConfig{Backend: BackendMemory},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
			MaxBodyBytes: 1 << 20,
		},
		Measurement: MeasurementConfig{
			ToleranceMS:                     300000,
			GridMeterCadenceMS:              900000,
			GridMeterDeviceID:               "GridPowerMeter",
			GridMeterFunctionality:          "PowerAverage",
			SourceFunctionality:             "SpecificTimePowerConsumption",
			OutsideTemperatureFunctionality: "TemperatureCelsius",
			CorrelationPolicy:               PolicyLast,
		},
		Functionalities: []FunctionalityConfig{
			{Name: "TemperatureCelsius", Shape: ShapeInstant, Unit: "C"},
			{Name: "HumidityPercentage", Shape: ShapeInstant, Unit: "%"},
			{Name: "PowerAverage", Shape: ShapeInterval, Unit: "W"},
			{Name: "SpecificTimePowerConsumption", Shape: ShapeInstant, Unit: "W"},
			{Name: "BinaryStatus", Shape: ShapeInstant, Unit: "bool"},
			{Name: "Scale", Shape: ShapeInstant, Unit: "%"},
			{Name: "Sunrise", Shape: ShapeInstantLocation, Unit: "h"},
			{Name: "Sunset", Shape: ShapeInstantLocation, Unit: "h"},
			{Name: "WindSpeedAndDirection", Shape: ShapeInstantLocation, Unit: "km/h"},
		},
		Actuators: []string{"BlindRollerSetter", "Switch", "IntegerValueSetter", "DecimalValueSetter"},
		Weather: WeatherConfig{
			BaseURL:     "http://localhost:8081/WeatherServices",
			GroupNumber: 1,
			Timeout:     10,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "smarthome-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			TopicPrefix: "smarthome",
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SMARTHOME_SECTION_KEY
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SMARTHOME_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("SMARTHOME_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}

	if v := os.Getenv("SMARTHOME_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if err := envInt("SMARTHOME_API_PORT", &cfg.API.Port); err != nil {
		return err
	}

	if err := envInt64("SMARTHOME_MEASUREMENT_TOLERANCE_MS", &cfg.Measurement.ToleranceMS); err != nil {
		return err
	}
	if err := envInt64("SMARTHOME_MEASUREMENT_GRID_METER_CADENCE_MS", &cfg.Measurement.GridMeterCadenceMS); err != nil {
		return err
	}
	if v := os.Getenv("SMARTHOME_MEASUREMENT_GRID_METER_DEVICE_ID"); v != "" {
		cfg.Measurement.GridMeterDeviceID = v
	}

	if v := os.Getenv("SMARTHOME_WEATHER_BASE_URL"); v != "" {
		cfg.Weather.BaseURL = v
	}

	if v := os.Getenv("SMARTHOME_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("SMARTHOME_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("SMARTHOME_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("SMARTHOME_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	if v := os.Getenv("SMARTHOME_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", key, err)
	}
	*dst = n
	return nil
}

func envInt64(key string, dst *int64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", key, err)
	}
	*dst = n
	return nil
}

// Validate checks the configuration for errors.
//
// Every problem is collected so an operator sees them all at once.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.House.ID == "" {
		errs = append(errs, "house.id is required")
	}
	if _, err := time.LoadLocation(c.House.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("house.timezone %q is not a known zone", c.House.Timezone))
	}
	if lat := c.House.Location.Latitude; lat < -90 || lat > 90 {
		errs = append(errs, "house.location.latitude must be between -90 and 90")
	}
	if lon := c.House.Location.Longitude; lon < -180 || lon > 180 {
		errs = append(errs, "house.location.longitude must be between -180 and 180")
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Database.Path == "" {
			errs = append(errs, "database.path is required for the sqlite backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("storage.backend must be %q or %q", BackendMemory, BackendSQLite))
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	m := c.Measurement
	if m.ToleranceMS <= 0 {
		errs = append(errs, "measurement.tolerance_ms must be positive")
	}
	if m.GridMeterCadenceMS <= 0 {
		errs = append(errs, "measurement.grid_meter_cadence_ms must be positive")
	}
	if m.GridMeterDeviceID == "" {
		errs = append(errs, "measurement.grid_meter_device_id is required")
	}
	if m.CorrelationPolicy != PolicyLast && m.CorrelationPolicy != PolicyClosest {
		errs = append(errs, fmt.Sprintf("measurement.correlation_policy must be %q or %q", PolicyLast, PolicyClosest))
	}

	seen := make(map[string]bool, len(c.Functionalities))
	for i, f := range c.Functionalities {
		if f.Name == "" {
			errs = append(errs, fmt.Sprintf("functionalities[%d].name is required", i))
			continue
		}
		if seen[f.Name] {
			errs = append(errs, fmt.Sprintf("functionality %q is declared twice", f.Name))
		}
		seen[f.Name] = true
		switch f.Shape {
		case ShapeInstant, ShapeInterval, ShapeInstantLocation:
		default:
			errs = append(errs, fmt.Sprintf("functionality %q has unknown shape %q", f.Name, f.Shape))
		}
	}
	for _, name := range []string{m.GridMeterFunctionality, m.SourceFunctionality} {
		if !seen[name] {
			errs = append(errs, fmt.Sprintf("functionality %q used by measurement is not declared", name))
		}
	}

	if c.Weather.Enabled && c.Weather.BaseURL == "" {
		errs = append(errs, "weather.base_url is required when weather is enabled")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Tolerance returns the correlation tolerance as a Duration.
func (m MeasurementConfig) Tolerance() time.Duration {
	return time.Duration(m.ToleranceMS) * time.Millisecond
}

// Cadence returns the grid meter cadence as a Duration.
func (m MeasurementConfig) Cadence() time.Duration {
	return time.Duration(m.GridMeterCadenceMS) * time.Millisecond
}

// TimeLocation returns the house time zone, falling back to UTC.
func (h HouseConfig) TimeLocation() *time.Location {
	loc, err := time.LoadLocation(h.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
