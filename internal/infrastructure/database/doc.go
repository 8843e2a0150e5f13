// Package database provides SQLite connectivity for the smart-home backend.
//
// This package manages:
//   - Database connection with WAL mode and a busy timeout
//   - Schema migrations read from an fs.FS (see the migrations package)
//   - An in-memory variant used by repository tests
//
// All queries use parameterised statements.
//
// Usage:
//
//	db, err := database.Open(ctx, database.ConfigFrom(cfg.Database))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    log.Fatal(err)
//	}
package database
