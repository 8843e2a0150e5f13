package device

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/location"
)

type catalogSet map[string]bool

func (c catalogSet) Known(name string) bool { return c[name] }

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	ctx := context.Background()
	rooms := location.NewMemoryRoomRepository()
	for _, id := range []string{"kitchen", "office"} {
		if err := rooms.Create(ctx, &location.Room{ID: id, HouseID: "h1", Dimensions: location.Dimensions{Length: 1, Width: 1, Height: 1}}); err != nil {
			t.Fatalf("seeding room: %v", err)
		}
	}
	catalog := catalogSet{"TemperatureCelsius": true, "PowerAverage": true}
	return NewRegistry(NewMemoryDeviceRepository(), NewMemorySensorRepository(), NewMemoryActuatorRepository(),
		rooms, catalog, []string{"Switch", "BlindRollerSetter"})
}

func TestRegistry_CreateDevice(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		device  *Device
		wantErr error
	}{
		{"valid", &Device{ID: "heater", Model: "H1", RoomID: "kitchen"}, nil},
		{"unknown room", &Device{ID: "heater", Model: "H1", RoomID: "garage"}, ErrRoomNotFound},
		{"missing model", &Device{ID: "heater", RoomID: "kitchen"}, ErrInvalidDevice},
		{"created deactivated", &Device{ID: "heater", Model: "H1", RoomID: "kitchen", Status: StatusDeactivated}, ErrInvalidDevice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newTestRegistry(t)
			err := reg.CreateDevice(ctx, tt.device)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateDevice() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && tt.device.Status != StatusActive {
				t.Errorf("status = %s, want active", tt.device.Status)
			}
		})
	}
}

func TestRegistry_DeactivateDevice(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)
	if err := reg.CreateDevice(ctx, &Device{ID: "heater", Model: "H1", RoomID: "kitchen"}); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}

	d, err := reg.DeactivateDevice(ctx, "heater")
	if err != nil {
		t.Fatalf("DeactivateDevice() error = %v", err)
	}
	if d.IsActive() {
		t.Error("device still active after DeactivateDevice()")
	}

	if _, err := reg.DeactivateDevice(ctx, "heater"); !errors.Is(err, ErrDeviceInactive) {
		t.Errorf("second DeactivateDevice() error = %v, want ErrDeviceInactive", err)
	}
	if _, err := reg.DeactivateDevice(ctx, "missing"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("DeactivateDevice(missing) error = %v, want ErrDeviceNotFound", err)
	}

	err = reg.AddSensor(ctx, &Sensor{DeviceID: "heater", Functionality: "TemperatureCelsius"})
	if !errors.Is(err, ErrDeviceInactive) {
		t.Errorf("AddSensor(deactivated device) error = %v, want ErrDeviceInactive", err)
	}
}

func TestRegistry_AddSensor(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)
	if err := reg.CreateDevice(ctx, &Device{ID: "heater", Model: "H1", RoomID: "kitchen"}); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}

	s := &Sensor{DeviceID: "heater", Functionality: "TemperatureCelsius"}
	if err := reg.AddSensor(ctx, s); err != nil {
		t.Fatalf("AddSensor() error = %v", err)
	}
	if s.ID == "" {
		t.Error("AddSensor() did not generate an ID")
	}

	tests := []struct {
		name    string
		sensor  *Sensor
		wantErr error
	}{
		{"unknown functionality", &Sensor{ID: "x", DeviceID: "heater", Functionality: "Smell"}, ErrUnknownFunctionality},
		{"unknown device", &Sensor{ID: "y", DeviceID: "ghost", Functionality: "PowerAverage"}, ErrDeviceNotFound},
		{"missing functionality", &Sensor{ID: "z", DeviceID: "heater"}, ErrInvalidSensor},
		{"duplicate", &Sensor{ID: s.ID, DeviceID: "heater", Functionality: "PowerAverage"}, ErrSensorExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := reg.AddSensor(ctx, tt.sensor); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddSensor() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegistry_Directory(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)
	for _, d := range []*Device{
		{ID: "heater", Model: "H1", RoomID: "kitchen"},
		{ID: "meter", Model: "M1", RoomID: "office"},
	} {
		if err := reg.CreateDevice(ctx, d); err != nil {
			t.Fatalf("CreateDevice(%s) error = %v", d.ID, err)
		}
	}
	for _, s := range []*Sensor{
		{ID: "t1", DeviceID: "heater", Functionality: "TemperatureCelsius"},
		{ID: "p1", DeviceID: "heater", Functionality: "PowerAverage"},
		{ID: "p2", DeviceID: "meter", Functionality: "PowerAverage"},
	} {
		if err := reg.AddSensor(ctx, s); err != nil {
			t.Fatalf("AddSensor(%s) error = %v", s.ID, err)
		}
	}

	own, err := reg.SensorsOfDevice(ctx, "heater")
	if err != nil || len(own) != 2 {
		t.Errorf("SensorsOfDevice(heater) = %v, %v", own, err)
	}
	if _, err := reg.SensorsOfDevice(ctx, "ghost"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("SensorsOfDevice(ghost) error = %v, want ErrDeviceNotFound", err)
	}

	power, err := reg.SensorsByFunctionality(ctx, "PowerAverage")
	if err != nil || len(power) != 2 {
		t.Errorf("SensorsByFunctionality(PowerAverage) = %v, %v", power, err)
	}

	meterPower, err := reg.SensorsOfDeviceWithFunctionality(ctx, "meter", "PowerAverage")
	if err != nil || len(meterPower) != 1 || meterPower[0].ID != "p2" {
		t.Errorf("SensorsOfDeviceWithFunctionality() = %v, %v", meterPower, err)
	}

	owner, err := reg.DeviceOfSensor(ctx, "t1")
	if err != nil || owner.ID != "heater" {
		t.Errorf("DeviceOfSensor(t1) = %v, %v", owner, err)
	}
	if _, err := reg.DeviceOfSensor(ctx, "nope"); !errors.Is(err, ErrSensorNotFound) {
		t.Errorf("DeviceOfSensor(nope) error = %v, want ErrSensorNotFound", err)
	}
}

func TestRegistry_AddActuator(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)
	if err := reg.CreateDevice(ctx, &Device{ID: "blind", Model: "B1", RoomID: "office"}); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}

	tests := []struct {
		name     string
		actuator *Actuator
		wantErr  error
	}{
		{"valid", &Actuator{DeviceID: "blind", Functionality: "BlindRollerSetter",
			Properties: &ActuatorProperties{Integer: &IntRange{Min: 0, Max: 100}}}, nil},
		{"sensor functionality", &Actuator{DeviceID: "blind", Functionality: "TemperatureCelsius"}, ErrUnknownFunctionality},
		{"inverted range", &Actuator{DeviceID: "blind", Functionality: "Switch",
			Properties: &ActuatorProperties{Integer: &IntRange{Min: 5, Max: 1}}}, ErrInvalidActuator},
		{"unknown device", &Actuator{DeviceID: "ghost", Functionality: "Switch"}, ErrDeviceNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := reg.AddActuator(ctx, tt.actuator); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddActuator() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegistry_ActuatorFunctionalities(t *testing.T) {
	got := newTestRegistry(t).ActuatorFunctionalities()
	want := []string{"BlindRollerSetter", "Switch"}
	if !slices.Equal(got, want) {
		t.Errorf("ActuatorFunctionalities() = %v, want %v", got, want)
	}
}

func TestRegistry_GroupByFunctionality(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)
	for _, d := range []*Device{
		{ID: "heater", Model: "H1", RoomID: "kitchen"},
		{ID: "oven", Model: "O1", RoomID: "kitchen"},
		{ID: "blind", Model: "B1", RoomID: "office"},
	} {
		if err := reg.CreateDevice(ctx, d); err != nil {
			t.Fatalf("CreateDevice(%s) error = %v", d.ID, err)
		}
	}
	for _, s := range []*Sensor{
		{ID: "t1", DeviceID: "heater", Functionality: "TemperatureCelsius"},
		{ID: "t2", DeviceID: "heater", Functionality: "TemperatureCelsius"},
		{ID: "t3", DeviceID: "oven", Functionality: "TemperatureCelsius"},
		{ID: "t4", DeviceID: "blind", Functionality: "TemperatureCelsius"},
	} {
		if err := reg.AddSensor(ctx, s); err != nil {
			t.Fatalf("AddSensor(%s) error = %v", s.ID, err)
		}
	}
	if err := reg.AddActuator(ctx, &Actuator{DeviceID: "blind", Functionality: "BlindRollerSetter"}); err != nil {
		t.Fatalf("AddActuator() error = %v", err)
	}

	groups, err := reg.GroupByFunctionality(ctx)
	if err != nil {
		t.Fatalf("GroupByFunctionality() error = %v", err)
	}

	temp := groups["TemperatureCelsius"]
	if got := temp["kitchen"]; len(got) != 2 || got[0] != "heater" || got[1] != "oven" {
		t.Errorf("TemperatureCelsius/kitchen = %v, want [heater oven]", got)
	}
	if got := temp["office"]; len(got) != 1 || got[0] != "blind" {
		t.Errorf("TemperatureCelsius/office = %v, want [blind]", got)
	}
	if got := groups["BlindRollerSetter"]["office"]; len(got) != 1 {
		t.Errorf("BlindRollerSetter/office = %v, want [blind]", got)
	}
	if len(groups) != 2 {
		t.Errorf("got %d functionalities, want 2", len(groups))
	}
}

func TestRegistry_SetActuatorValue(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)
	for _, d := range []*Device{
		{ID: "blind", Model: "B1", RoomID: "office"},
		{ID: "old", Model: "B1", RoomID: "kitchen"},
	} {
		if err := reg.CreateDevice(ctx, d); err != nil {
			t.Fatalf("CreateDevice(%s) error = %v", d.ID, err)
		}
	}
	for _, a := range []*Actuator{
		{ID: "roller", DeviceID: "blind", Functionality: "BlindRollerSetter"},
		{ID: "dimmer", DeviceID: "blind", Functionality: "Switch",
			Properties: &ActuatorProperties{Integer: &IntRange{Min: 0, Max: 3}}},
		{ID: "old-roller", DeviceID: "old", Functionality: "BlindRollerSetter"},
	} {
		if err := reg.AddActuator(ctx, a); err != nil {
			t.Fatalf("AddActuator(%s) error = %v", a.ID, err)
		}
	}
	if _, err := reg.DeactivateDevice(ctx, "old"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		id      string
		value   string
		wantErr error
	}{
		{"blind roller percentage", "roller", "40", nil},
		{"blind roller out of range", "roller", "140", ErrValueOutOfRange},
		{"integer range", "dimmer", "3", nil},
		{"integer range exceeded", "dimmer", "4", ErrValueOutOfRange},
		{"deactivated device", "old-roller", "10", ErrDeviceInactive},
		{"unknown actuator", "ghost", "1", ErrActuatorNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, _ := reg.GetActuator(ctx, tt.id)
			v := decimal.RequireFromString(tt.value)

			got, err := reg.SetActuatorValue(ctx, tt.id, v)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SetActuatorValue() error = %v, want %v", err, tt.wantErr)
			}
			stored, _ := reg.GetActuator(ctx, tt.id)
			if tt.wantErr != nil {
				if before != nil && !sameValue(before.Value, stored.Value) {
					t.Errorf("rejected value changed the stored value from %v to %v", before.Value, stored.Value)
				}
				return
			}
			if got.Value == nil || !got.Value.Equal(v) || got.ValueSetAt == nil {
				t.Errorf("returned actuator = %+v, want value %s", got, v)
			}
			if stored.Value == nil || !stored.Value.Equal(v) {
				t.Errorf("stored value = %v, want %s", stored.Value, v)
			}
		})
	}
}

func TestRegistry_AddActuatorIgnoresValue(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)
	if err := reg.CreateDevice(ctx, &Device{ID: "blind", Model: "B1", RoomID: "office"}); err != nil {
		t.Fatal(err)
	}
	preset := decimal.NewFromInt(90)
	a := &Actuator{ID: "roller", DeviceID: "blind", Functionality: "BlindRollerSetter", Value: &preset}
	if err := reg.AddActuator(ctx, a); err != nil {
		t.Fatalf("AddActuator() error = %v", err)
	}
	got, err := reg.GetActuator(ctx, "roller")
	if err != nil {
		t.Fatal(err)
	}
	if got.Value != nil {
		t.Errorf("new actuator value = %s, want unset", got.Value)
	}
}

func TestRegistry_DevicesWithActuator(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)
	for _, d := range []*Device{
		{ID: "blind-office", Model: "B1", RoomID: "office"},
		{ID: "blind-kitchen", Model: "B1", RoomID: "kitchen"},
		{ID: "blind-old", Model: "B1", RoomID: "kitchen"},
		{ID: "lamp", Model: "L1", RoomID: "kitchen"},
	} {
		if err := reg.CreateDevice(ctx, d); err != nil {
			t.Fatalf("CreateDevice(%s) error = %v", d.ID, err)
		}
	}
	for _, a := range []*Actuator{
		{ID: "r1", DeviceID: "blind-office", Functionality: "BlindRollerSetter"},
		{ID: "r2", DeviceID: "blind-kitchen", Functionality: "BlindRollerSetter"},
		{ID: "r3", DeviceID: "blind-office", Functionality: "BlindRollerSetter"},
		{ID: "r4", DeviceID: "blind-old", Functionality: "BlindRollerSetter"},
		{ID: "s1", DeviceID: "lamp", Functionality: "Switch"},
	} {
		if err := reg.AddActuator(ctx, a); err != nil {
			t.Fatalf("AddActuator(%s) error = %v", a.ID, err)
		}
	}
	if _, err := reg.DeactivateDevice(ctx, "blind-old"); err != nil {
		t.Fatal(err)
	}

	got, err := reg.DevicesWithActuator(ctx, "BlindRollerSetter")
	if err != nil {
		t.Fatalf("DevicesWithActuator() error = %v", err)
	}
	want := []DeviceRoom{
		{DeviceID: "blind-office", RoomID: "office"},
		{DeviceID: "blind-kitchen", RoomID: "kitchen"},
	}
	if !slices.Equal(got, want) {
		t.Errorf("DevicesWithActuator() = %+v, want %+v", got, want)
	}

	if _, err := reg.DevicesWithActuator(ctx, "TemperatureCelsius"); !errors.Is(err, ErrUnknownFunctionality) {
		t.Errorf("sensor functionality error = %v, want ErrUnknownFunctionality", err)
	}
}

func sameValue(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
