package database

import (
	"context"
	"testing"
	"testing/fstest"
)

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"20260101_000000_houses.up.sql":   {Data: []byte("CREATE TABLE houses (id TEXT PRIMARY KEY);")},
		"20260101_000000_houses.down.sql": {Data: []byte("DROP TABLE houses;")},
		"20260102_000000_rooms.up.sql":    {Data: []byte("CREATE TABLE rooms (id TEXT PRIMARY KEY);")},
		"20260102_000000_rooms.down.sql":  {Data: []byte("DROP TABLE rooms;")},
		"README.md":                       {Data: []byte("ignored")},
	}
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name,
	).Scan(&n)
	if err != nil {
		t.Fatalf("checking table %s: %v", name, err)
	}
	return n == 1
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx, testMigrations()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	for _, table := range []string{"houses", "rooms"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %s not created", table)
		}
	}

	applied, pending, err := db.MigrationStatus(ctx, testMigrations())
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 2 {
		t.Errorf("applied = %d, want 2", len(applied))
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0", len(pending))
	}

	if err := db.Migrate(ctx, testMigrations()); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestMigrateDown(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx, testMigrations()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.MigrateDown(ctx, testMigrations()); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}

	if tableExists(t, db, "rooms") {
		t.Error("rooms should be dropped by the latest down migration")
	}
	if !tableExists(t, db, "houses") {
		t.Error("houses should survive a single rollback")
	}

	_, pending, err := db.MigrationStatus(ctx, testMigrations())
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(pending) != 1 || pending[0].Name != "rooms" {
		t.Errorf("pending = %+v, want only rooms", pending)
	}
}

func TestMigrateDown_NothingApplied(t *testing.T) {
	db := openTestDB(t)
	if err := db.MigrateDown(context.Background(), testMigrations()); err != nil {
		t.Errorf("MigrateDown() on fresh db = %v", err)
	}
}

func TestMigrate_FailureRollsBackOnlyFailingStep(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"20260101_000000_ok.up.sql":     {Data: []byte("CREATE TABLE ok (id TEXT);")},
		"20260102_000000_broken.up.sql": {Data: []byte("CREATE TABLE broken (id TEXT); INSERT INTO missing VALUES (1);")},
	}

	if err := db.Migrate(ctx, fsys); err == nil {
		t.Fatal("Migrate() expected error")
	}
	if !tableExists(t, db, "ok") {
		t.Error("first migration should stay committed")
	}
	if tableExists(t, db, "broken") {
		t.Error("failing migration should be rolled back")
	}
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := LoadMigrations(testMigrations())
	if err != nil {
		t.Fatalf("LoadMigrations() error = %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("len = %d, want 2", len(migrations))
	}
	if migrations[0].Version != "20260101_000000" || migrations[0].Name != "houses" {
		t.Errorf("first = %+v", migrations[0])
	}
	if migrations[1].DownSQL == "" {
		t.Error("down SQL not paired")
	}

	if got, err := LoadMigrations(nil); err != nil || got != nil {
		t.Errorf("LoadMigrations(nil) = %v, %v", got, err)
	}
}

func TestLoadMigrations_DownWithoutUp(t *testing.T) {
	fsys := fstest.MapFS{
		"20260101_000000_orphan.down.sql": {Data: []byte("DROP TABLE orphan;")},
	}
	if _, err := LoadMigrations(fsys); err == nil {
		t.Error("expected error for migration without up SQL")
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		filename    string
		wantVersion string
		wantName    string
		wantUp      bool
		wantOK      bool
	}{
		{"20260118_120000_initial_schema.up.sql", "20260118_120000", "initial_schema", true, true},
		{"20260118_120000_initial_schema.down.sql", "20260118_120000", "initial_schema", false, true},
		{"20260118_120000.up.sql", "20260118_120000", "20260118_120000", true, true},
		{"initial.up.sql", "", "", false, false},
		{"20260118_120000_x.sql", "", "", false, false},
		{"notes.txt", "", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, up, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if version != tt.wantVersion || name != tt.wantName || up != tt.wantUp {
				t.Errorf("got (%q, %q, %v), want (%q, %q, %v)", version, name, up, tt.wantVersion, tt.wantName, tt.wantUp)
			}
		})
	}
}
