package measurement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/database"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/location"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/migrations"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func at(minutes int) time.Time { return t0.Add(time.Duration(minutes) * time.Minute) }

func instant(id, sensor, value string, minutes int) Reading {
	return Reading{ID: id, SensorID: sensor, Value: value, Unit: "C", Time: at(minutes)}
}

func interval(id, sensor, value string, fromMin, toMin int) Reading {
	start := at(fromMin)
	return Reading{ID: id, SensorID: sensor, Value: value, Unit: "W", Start: &start, Time: at(toMin)}
}

func located(id, sensor, value string, minutes int) Reading {
	return Reading{ID: id, SensorID: sensor, Value: value, Unit: "h", Time: at(minutes),
		Location: &location.GPS{Latitude: 41.1, Longitude: -8.6}}
}

// setupTestDB opens an in-memory database with the real schema applied.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenMemory(ctx)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func storeBackends() map[string]func(t *testing.T) *Stores {
	return map[string]func(t *testing.T) *Stores{
		"memory": func(*testing.T) *Stores { return NewMemoryStores() },
		"sqlite": func(t *testing.T) *Stores { return NewSQLiteStores(setupTestDB(t).DB) },
	}
}

func ids(readings []Reading) []string {
	out := make([]string, len(readings))
	for i, r := range readings {
		out[i] = r.ID
	}
	return out
}

func equalIDs(got []Reading, want ...string) bool {
	g := ids(got)
	if len(g) != len(want) {
		return false
	}
	for i := range g {
		if g[i] != want[i] {
			return false
		}
	}
	return true
}

func TestStore_Instant(t *testing.T) {
	for name, open := range storeBackends() {
		t.Run(name, func(t *testing.T) {
			stores := open(t)
			store, err := stores.For(ShapeInstant)
			if err != nil {
				t.Fatalf("For() error = %v", err)
			}
			ctx := context.Background()

			for _, r := range []Reading{
				instant("r1", "s1", "20", 0),
				instant("r2", "s1", "21", 10),
				instant("r3", "s2", "5", 5),
				instant("r4", "s1", "19.5", -10),
			} {
				if err := store.Append(ctx, r); err != nil {
					t.Fatalf("Append(%s) error = %v", r.ID, err)
				}
			}
			if err := store.Append(ctx, instant("r1", "s1", "1", 1)); !errors.Is(err, ErrReadingExists) {
				t.Errorf("duplicate Append() error = %v, want ErrReadingExists", err)
			}
			if err := store.Append(ctx, interval("x", "s1", "1", 0, 1)); !errors.Is(err, ErrShapeMismatch) {
				t.Errorf("Append(interval) error = %v, want ErrShapeMismatch", err)
			}

			all, err := store.FindBySensor(ctx, "s1")
			if err != nil {
				t.Fatalf("FindBySensor() error = %v", err)
			}
			if !equalIDs(all, "r1", "r2", "r4") {
				t.Errorf("FindBySensor() = %v, want insertion order [r1 r2 r4]", ids(all))
			}

			tests := []struct {
				name       string
				start, end time.Time
				want       []string
			}{
				{"inclusive bounds", at(0), at(10), []string{"r1", "r2"}},
				{"single point", at(10), at(10), []string{"r2"}},
				{"empty window", at(1), at(9), nil},
				{"everything", at(-60), at(60), []string{"r1", "r2", "r4"}},
			}
			for _, tt := range tests {
				got, err := store.FindBySensorInRange(ctx, "s1", tt.start, tt.end)
				if err != nil {
					t.Fatalf("%s: error = %v", tt.name, err)
				}
				if !equalIDs(got, tt.want...) {
					t.Errorf("%s: got %v, want %v", tt.name, ids(got), tt.want)
				}
			}

			if _, err := store.FindBySensorInRange(ctx, "s1", at(5), at(0)); !errors.Is(err, ErrInvalidRange) {
				t.Errorf("inverted range error = %v, want ErrInvalidRange", err)
			}

			last, err := store.FindLastBySensor(ctx, "s1")
			if err != nil {
				t.Fatalf("FindLastBySensor() error = %v", err)
			}
			if last.ID != "r2" || last.Value != "21" || !last.Time.Equal(at(10)) {
				t.Errorf("FindLastBySensor() = %+v, want r2", last)
			}
			if _, err := store.FindLastBySensor(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
				t.Errorf("FindLastBySensor(nobody) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_IntervalContainment(t *testing.T) {
	for name, open := range storeBackends() {
		t.Run(name, func(t *testing.T) {
			stores := open(t)
			store, _ := stores.For(ShapeInterval)
			ctx := context.Background()

			for _, r := range []Reading{
				interval("g1", "grid", "50", 0, 15),
				interval("g2", "grid", "60", 15, 30),
				interval("g3", "grid", "70", 30, 45),
			} {
				if err := store.Append(ctx, r); err != nil {
					t.Fatalf("Append(%s) error = %v", r.ID, err)
				}
			}

			got, err := store.FindBySensorInRange(ctx, "grid", at(0), at(30))
			if err != nil {
				t.Fatalf("FindBySensorInRange() error = %v", err)
			}
			if !equalIDs(got, "g1", "g2") {
				t.Errorf("FindBySensorInRange() = %v, want [g1 g2]", ids(got))
			}
			if got[0].Start == nil || !got[0].Start.Equal(at(0)) {
				t.Errorf("interval start = %v, want %v", got[0].Start, at(0))
			}

			// g2 starts before the window, so it is excluded.
			got, _ = store.FindBySensorInRange(ctx, "grid", at(20), at(45))
			if !equalIDs(got, "g3") {
				t.Errorf("FindBySensorInRange(20..45) = %v, want [g3]", ids(got))
			}
		})
	}
}

func TestStore_Location(t *testing.T) {
	for name, open := range storeBackends() {
		t.Run(name, func(t *testing.T) {
			stores := open(t)
			store, _ := stores.For(ShapeInstantLocation)
			ctx := context.Background()

			if err := store.Append(ctx, located("l1", "sun", "6.5", 0)); err != nil {
				t.Fatalf("Append() error = %v", err)
			}
			last, err := store.FindLastBySensor(ctx, "sun")
			if err != nil {
				t.Fatalf("FindLastBySensor() error = %v", err)
			}
			if last.Location == nil || last.Location.Latitude != 41.1 {
				t.Errorf("location = %+v, want latitude 41.1", last.Location)
			}
		})
	}
}

func TestStore_LastTieBreak(t *testing.T) {
	for name, open := range storeBackends() {
		t.Run(name, func(t *testing.T) {
			store, _ := open(t).For(ShapeInstant)
			ctx := context.Background()
			_ = store.Append(ctx, instant("first", "s", "1", 5))
			_ = store.Append(ctx, instant("second", "s", "2", 5))

			last, err := store.FindLastBySensor(ctx, "s")
			if err != nil {
				t.Fatalf("FindLastBySensor() error = %v", err)
			}
			if last.ID != "second" {
				t.Errorf("FindLastBySensor() = %s, want the later insertion", last.ID)
			}
		})
	}
}

func TestNewStores(t *testing.T) {
	if _, err := NewStores(NewMemoryStore(ShapeInstant), NewMemoryStore(ShapeInterval)); err == nil {
		t.Error("NewStores() without a location store should fail")
	}
	if _, err := NewStores(NewMemoryStore(ShapeInstant), NewMemoryStore(ShapeInstant)); err == nil {
		t.Error("NewStores() with duplicate shapes should fail")
	}
	stores, err := NewStores(NewMemoryStore(ShapeInstant), NewMemoryStore(ShapeInterval), NewMemoryStore(ShapeInstantLocation))
	if err != nil {
		t.Fatalf("NewStores() error = %v", err)
	}
	if _, err := stores.For("weekly"); !errors.Is(err, ErrUnknownShape) {
		t.Errorf("For(weekly) error = %v, want ErrUnknownShape", err)
	}
}

func TestReading_Number(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"21.5", false},
		{"-3", false},
		{"1e3", false},
		{"", true},
		{"warm", true},
	}
	for _, tt := range tests {
		_, err := Reading{ID: "r", Value: tt.value}.Number()
		if (err != nil) != tt.wantErr {
			t.Errorf("Number(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrMalformedReading) {
			t.Errorf("Number(%q) error does not wrap ErrMalformedReading", tt.value)
		}
	}
}
