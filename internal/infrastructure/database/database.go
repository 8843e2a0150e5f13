package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/config"
)

const (
	dirPermissions  = 0750
	filePermissions = 0600
	msPerSecond     = 1000

	// connectionTimeout bounds the ping performed by Open.
	connectionTimeout = 5 * time.Second
	connMaxIdleTime   = 30 * time.Minute
)

// DB wraps a sql.DB connection with migration support and health checks.
type DB struct {
	*sql.DB
	path string
}

// Config contains database configuration options.
type Config struct {
	// Path is the filesystem path to the SQLite database file.
	// The directory will be created if it doesn't exist.
	Path string

	// WALMode enables Write-Ahead Logging so readers don't block the writer.
	WALMode bool

	// BusyTimeout is the maximum time to wait for a database lock (seconds).
	BusyTimeout int
}

// ConfigFrom converts the database section of the application config.
func ConfigFrom(cfg config.DatabaseConfig) Config {
	return Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	}
}

// Open creates a new database connection with the specified configuration.
//
// It performs the following setup:
//  1. Creates the database directory if it doesn't exist
//  2. Opens the database file (creates if not present)
//  3. Configures WAL mode, busy timeout and foreign keys
//  4. Verifies the connection with a ping
//
// Parameters:
//   - ctx: Context for the connection check
//   - cfg: Database configuration
//
// Returns:
//   - *DB: Connected database wrapper
//   - error: If connection or configuration fails
func Open(ctx context.Context, cfg Config) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// See: https://github.com/mattn/go-sqlite3#connection-string
	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
		cfg.Path,
		cfg.BusyTimeout*msPerSecond,
	)
	if cfg.WALMode {
		connStr += "&_journal_mode=WAL&_synchronous=NORMAL"
	}

	db, err := open(ctx, connStr, cfg.Path)
	if err != nil {
		return nil, err
	}

	_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // file may not exist until first write
	return db, nil
}

// OpenMemory opens a private in-memory database.
// The pool is pinned to a single connection so every query sees the same data.
func OpenMemory(ctx context.Context) (*DB, error) {
	return open(ctx, "file::memory:?_foreign_keys=on", ":memory:")
}

func open(ctx context.Context, connStr, path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite supports one writer at a time.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	if path != ":memory:" {
		sqlDB.SetConnMaxLifetime(time.Hour)
		sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close() //nolint:errcheck // best effort cleanup on error path
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	return &DB{DB: sqlDB, path: path}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Path returns the filesystem path to the database file.
func (db *DB) Path() string {
	return db.path
}

// HealthCheck verifies the database is accessible.
func (db *DB) HealthCheck(ctx context.Context) error {
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// BeginTx starts a new transaction with the given options.
//
// Example:
//
//	tx, err := db.BeginTx(ctx, nil)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback() // No-op if committed
//
//	// ... execute queries on tx ...
//
//	return tx.Commit()
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	return tx, nil
}
