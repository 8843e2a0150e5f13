package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/config"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory(context.Background())
	if err != nil {
		t.Fatalf("OpenMemory() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup
	return db
}

func TestOpen(t *testing.T) {
	t.Run("creates file and nested directory", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "test.db")

		db, err := Open(context.Background(), Config{Path: dbPath, WALMode: true, BusyTimeout: 5})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // test cleanup

		if _, err := db.ExecContext(context.Background(), "CREATE TABLE t (x INTEGER)"); err != nil {
			t.Fatalf("create table: %v", err)
		}
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != dbPath {
			t.Errorf("Path() = %q, want %q", db.Path(), dbPath)
		}
	})

	t.Run("without WAL", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "plain.db")
		db, err := Open(context.Background(), Config{Path: dbPath, BusyTimeout: 1})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // test cleanup
	})
}

func TestConfigFrom(t *testing.T) {
	got := ConfigFrom(config.DatabaseConfig{Path: "/tmp/x.db", WALMode: true, BusyTimeout: 7})
	if got.Path != "/tmp/x.db" || !got.WALMode || got.BusyTimeout != 7 {
		t.Errorf("ConfigFrom() = %+v", got)
	}
}

func TestOpenMemory_SharesState(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "CREATE TABLE readings (v TEXT)"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO readings (v) VALUES ('20.5')"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var v string
	if err := db.QueryRowContext(ctx, "SELECT v FROM readings").Scan(&v); err != nil {
		t.Fatalf("select: %v", err)
	}
	if v != "20.5" {
		t.Errorf("v = %q, want 20.5", v)
	}
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	db.Close() //nolint:errcheck // closing to force failure
	if err := db.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() on closed db should fail")
	}
}

func TestBeginTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "CREATE TABLE rooms (id TEXT)"); err != nil {
		t.Fatalf("create: %v", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx() error = %v", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO rooms (id) VALUES ('kitchen')"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rooms").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("rows after rollback = %d, want 0", n)
	}
}

func TestClose_Nil(t *testing.T) {
	var db *DB
	if err := db.Close(); err != nil {
		t.Errorf("Close() on nil = %v", err)
	}
}
