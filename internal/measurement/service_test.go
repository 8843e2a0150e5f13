package measurement

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/device"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/location"
)

type fixture struct {
	svc      *Service
	registry *device.Registry
	stores   *Stores
}

// newFixture builds a service over memory stores with device "heater"
// (sensors temp and temp2), device "meter" (sensor grid) and device
// "observatory" (sensor sun).
func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	router, err := NewRouter(testRoutes())
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	rooms := location.NewMemoryRoomRepository()
	if err := rooms.Create(ctx, &location.Room{ID: "kitchen", HouseID: "h1", Dimensions: location.Dimensions{Length: 1, Width: 1, Height: 1}}); err != nil {
		t.Fatalf("seeding room: %v", err)
	}
	reg := device.NewRegistry(device.NewMemoryDeviceRepository(), device.NewMemorySensorRepository(),
		device.NewMemoryActuatorRepository(), rooms, router, nil)

	for _, id := range []string{"heater", "meter", "observatory"} {
		if err := reg.CreateDevice(ctx, &device.Device{ID: id, Model: "X", RoomID: "kitchen"}); err != nil {
			t.Fatalf("CreateDevice(%s) error = %v", id, err)
		}
	}
	for _, s := range []*device.Sensor{
		{ID: "temp", DeviceID: "heater", Functionality: "TemperatureCelsius"},
		{ID: "temp2", DeviceID: "heater", Functionality: "TemperatureCelsius"},
		{ID: "grid", DeviceID: "meter", Functionality: "PowerAverage"},
		{ID: "sun", DeviceID: "observatory", Functionality: "Sunrise"},
	} {
		if err := reg.AddSensor(ctx, s); err != nil {
			t.Fatalf("AddSensor(%s) error = %v", s.ID, err)
		}
	}

	stores := NewMemoryStores()
	return fixture{svc: NewService(reg, router, stores), registry: reg, stores: stores}
}

func TestService_Ingest(t *testing.T) {
	inverted := interval("", "grid", "50", 15, 0)

	tests := []struct {
		name    string
		reading Reading
		wantErr error
	}{
		{"instant", instant("", "temp", "21.5", 0), nil},
		{"interval", interval("", "grid", "50", 0, 15), nil},
		{"location", located("", "sun", "6.5", 0), nil},
		{"unknown sensor", instant("", "ghost", "1", 0), device.ErrSensorNotFound},
		{"wrong shape", interval("", "temp", "1", 0, 5), ErrShapeMismatch},
		{"malformed value", instant("", "temp", "hot", 0), ErrMalformedReading},
		{"missing timestamp", Reading{SensorID: "temp", Value: "1"}, ErrMalformedReading},
		{"interval ends before start", inverted, ErrInvalidRange},
		{"bad coordinate", Reading{SensorID: "sun", Value: "1", Time: at(0),
			Location: &location.GPS{Latitude: 91}}, ErrMalformedReading},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			got, err := f.svc.Ingest(context.Background(), tt.reading)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Ingest() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if got.ID == "" {
				t.Error("Ingest() did not assign an ID")
			}
			store, _ := f.stores.For(tt.reading.Shape())
			stored, _ := store.FindBySensor(context.Background(), tt.reading.SensorID)
			if len(stored) != 1 || stored[0].ID != got.ID {
				t.Errorf("store holds %v, want the ingested reading", ids(stored))
			}
		})
	}
}

func TestService_IngestDefaultsUnit(t *testing.T) {
	f := newFixture(t)
	r := instant("", "temp", "20", 0)
	r.Unit = ""
	got, err := f.svc.Ingest(context.Background(), r)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if got.Unit != "C" {
		t.Errorf("Unit = %q, want route default C", got.Unit)
	}
}

func TestService_IngestDeactivatedDevice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.registry.DeactivateDevice(ctx, "heater"); err != nil {
		t.Fatalf("DeactivateDevice() error = %v", err)
	}
	if _, err := f.svc.Ingest(ctx, instant("", "temp", "20", 0)); !errors.Is(err, device.ErrDeviceInactive) {
		t.Errorf("Ingest() error = %v, want ErrDeviceInactive", err)
	}
}

func TestService_Listeners(t *testing.T) {
	f := newFixture(t)
	var mu sync.Mutex
	var events []Event
	f.svc.AddListener(ListenerFunc(func(_ context.Context, e Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	}))

	ctx := context.Background()
	if _, err := f.svc.Ingest(ctx, interval("g1", "grid", "50", 0, 15)); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	_, _ = f.svc.Ingest(ctx, instant("", "temp", "bad", 0))

	if len(events) != 1 {
		t.Fatalf("listener saw %d events, want 1", len(events))
	}
	e := events[0]
	if e.DeviceID != "meter" || e.Functionality != "PowerAverage" || e.Shape != ShapeInterval || e.Reading.ID != "g1" {
		t.Errorf("event = %+v", e)
	}
}

func TestService_LastMeasurement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, r := range []Reading{
		instant("a", "temp", "20", 0),
		instant("b", "temp", "22", 30),
		instant("c", "temp", "21", 10),
		instant("d", "temp2", "99", 60),
	} {
		if _, err := f.svc.Ingest(ctx, r); err != nil {
			t.Fatalf("Ingest(%s) error = %v", r.ID, err)
		}
	}

	got, err := f.svc.LastMeasurement(ctx, "heater", "TemperatureCelsius")
	if err != nil {
		t.Fatalf("LastMeasurement() error = %v", err)
	}
	if got.ID != "b" {
		t.Errorf("LastMeasurement() = %s, want b from the first sensor", got.ID)
	}

	if _, err := f.svc.LastMeasurement(ctx, "heater", "PowerAverage"); !errors.Is(err, device.ErrSensorNotFound) {
		t.Errorf("LastMeasurement(no sensor) error = %v, want ErrSensorNotFound", err)
	}
	if _, err := f.svc.LastMeasurement(ctx, "meter", "PowerAverage"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LastMeasurement(no readings) error = %v, want ErrNotFound", err)
	}
	if _, err := f.svc.LastMeasurement(ctx, "ghost", "PowerAverage"); !errors.Is(err, device.ErrDeviceNotFound) {
		t.Errorf("LastMeasurement(ghost) error = %v, want ErrDeviceNotFound", err)
	}
}
