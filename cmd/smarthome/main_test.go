package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/config"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/database"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/logging"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/location"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/measurement"
)

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, "version: dev") {
		t.Errorf("output = %q, want version line", out)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	opts := &rootOptions{configPath: "/nonexistent/path/config.yaml"}
	if _, err := opts.loadConfig(); err == nil {
		t.Fatal("loadConfig() should fail with a missing file")
	}
}

func TestLoadConfig_EnvPathAndLogLevel(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "house:\n  id: casa\n")
	t.Setenv(configEnvVar, path)

	cfg, err := (&rootOptions{logLevel: "debug"}).loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.House.ID != "casa" {
		t.Errorf("House.ID = %q, want casa", cfg.House.ID)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestMigrateCommands(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "smarthome.db")
	path := writeConfig(t, dir, "database:\n  path: \""+dbPath+"\"\n  wal_mode: true\n  busy_timeout: 5\n")

	out, err := execute(t, "--config", path, "migrate", "status")
	if err != nil {
		t.Fatalf("migrate status error = %v", err)
	}
	if strings.Contains(out, "applied") || !strings.Contains(out, "pending") {
		t.Errorf("fresh status = %q, want only pending", out)
	}

	if _, err := execute(t, "--config", path, "migrate", "up"); err != nil {
		t.Fatalf("migrate up error = %v", err)
	}
	out, _ = execute(t, "--config", path, "migrate", "status")
	if strings.Contains(out, "pending") {
		t.Errorf("status after up = %q, want nothing pending", out)
	}

	if _, err := execute(t, "--config", path, "migrate", "down"); err != nil {
		t.Fatalf("migrate down error = %v", err)
	}
	out, _ = execute(t, "--config", path, "migrate", "status")
	if strings.Count(out, "pending") != 1 {
		t.Errorf("status after down = %q, want one pending migration", out)
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.API.Host = "127.0.0.1"
	cfg.API.Port = 0
	cfg.Database.Path = filepath.Join(t.TempDir(), "smarthome.db")
	return cfg
}

func TestServe_MemoryBackend(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := serve(ctx, testConfig(t), logging.Discard()); err != nil {
		t.Fatalf("serve() error = %v", err)
	}
}

func TestServe_SQLiteBackendSeedsHouseOnce(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = config.BackendSQLite

	for i := 0; i < 2; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		err := serve(ctx, cfg, logging.Discard())
		cancel()
		if err != nil {
			t.Fatalf("serve() run %d error = %v", i+1, err)
		}
	}

	ctx := context.Background()
	db, err := database.Open(ctx, database.ConfigFrom(cfg.Database))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	houses, err := location.NewSQLiteHouseRepository(db.DB).List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(houses) != 1 || houses[0].ID != cfg.House.ID {
		t.Errorf("houses = %+v, want only %s", houses, cfg.House.ID)
	}
}

func TestServe_InvalidRoutes(t *testing.T) {
	cfg := testConfig(t)
	cfg.Functionalities = append(cfg.Functionalities, config.FunctionalityConfig{Name: "Colour", Shape: "spectrum"})

	if err := serve(context.Background(), cfg, logging.Discard()); err == nil {
		t.Fatal("serve() should fail with an unknown shape")
	}
}

func TestEnsureHouse(t *testing.T) {
	ctx := context.Background()
	houses := location.NewMemoryHouseRepository()
	cfg := config.Default().House

	if err := ensureHouse(ctx, houses, cfg); err != nil {
		t.Fatalf("ensureHouse() error = %v", err)
	}
	stored, err := houses.GetByID(ctx, cfg.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Location.Address.City != cfg.Location.City || stored.Location.GPS.Latitude != cfg.Location.Latitude {
		t.Errorf("stored location = %+v", stored.Location)
	}

	changed := cfg
	changed.Location.City = "Lisboa"
	if err := ensureHouse(ctx, houses, changed); err != nil {
		t.Fatalf("second ensureHouse() error = %v", err)
	}
	stored, _ = houses.GetByID(ctx, cfg.ID)
	if stored.Location.Address.City != cfg.Location.City {
		t.Error("existing house should keep its stored location")
	}

	invalid := cfg
	invalid.ID = "other"
	invalid.Location.Street = ""
	if err := ensureHouse(ctx, houses, invalid); err == nil {
		t.Error("ensureHouse() should reject an incomplete address")
	}
}

func TestNewMeasurementRouter(t *testing.T) {
	router, err := newMeasurementRouter(config.Default().Functionalities)
	if err != nil {
		t.Fatalf("newMeasurementRouter() error = %v", err)
	}

	tests := []struct {
		functionality string
		want          measurement.Shape
	}{
		{"TemperatureCelsius", measurement.ShapeInstant},
		{"PowerAverage", measurement.ShapeInterval},
		{"Sunrise", measurement.ShapeInstantLocation},
	}
	for _, tt := range tests {
		got, err := router.Shape(tt.functionality)
		if err != nil || got != tt.want {
			t.Errorf("Shape(%s) = %q, %v; want %q", tt.functionality, got, err, tt.want)
		}
	}

	dup := []config.FunctionalityConfig{
		{Name: "TemperatureCelsius", Shape: "instant"},
		{Name: "TemperatureCelsius", Shape: "instant"},
	}
	if _, err := newMeasurementRouter(dup); err == nil {
		t.Error("duplicate functionality should fail")
	}
}

func TestHealthCheck_NoBackends(t *testing.T) {
	if err := healthCheck(context.Background(), nil, nil, nil); err != nil {
		t.Errorf("healthCheck() with nothing enabled = %v", err)
	}
}
