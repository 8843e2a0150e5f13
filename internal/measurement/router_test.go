package measurement

import (
	"errors"
	"testing"
)

func testRoutes() []Route {
	return []Route{
		{Functionality: "TemperatureCelsius", Shape: ShapeInstant, Unit: "C"},
		{Functionality: "PowerAverage", Shape: ShapeInterval, Unit: "W"},
		{Functionality: "Sunrise", Shape: ShapeInstantLocation, Unit: "h"},
	}
}

func TestNewRouter(t *testing.T) {
	tests := []struct {
		name    string
		routes  []Route
		wantErr bool
	}{
		{"valid", testRoutes(), false},
		{"empty table", nil, false},
		{"duplicate", append(testRoutes(), Route{Functionality: "PowerAverage", Shape: ShapeInstant}), true},
		{"blank name", []Route{{Functionality: " ", Shape: ShapeInstant}}, true},
		{"bad shape", []Route{{Functionality: "Scale", Shape: "weekly"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRouter(tt.routes)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewRouter() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRouter_Shape(t *testing.T) {
	r, err := NewRouter(testRoutes())
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	tests := []struct {
		functionality string
		want          Shape
		wantErr       error
	}{
		{"TemperatureCelsius", ShapeInstant, nil},
		{"PowerAverage", ShapeInterval, nil},
		{"Sunrise", ShapeInstantLocation, nil},
		{"HumidityPercentage", "", ErrUnmappedFunctionality},
	}
	for _, tt := range tests {
		t.Run(tt.functionality, func(t *testing.T) {
			got, err := r.Shape(tt.functionality)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Shape() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Shape() = %q, want %q", got, tt.want)
			}
		})
	}

	if !r.Known("PowerAverage") || r.Known("Smell") {
		t.Error("Known() disagrees with the route table")
	}
	routes := r.Routes()
	if len(routes) != 3 || routes[0].Functionality != "TemperatureCelsius" || routes[2].Functionality != "Sunrise" {
		t.Errorf("Routes() = %v, want configuration order", routes)
	}
}

func TestRouter_Resolve(t *testing.T) {
	r, _ := NewRouter(testRoutes())
	stores := NewMemoryStores()

	store, err := r.Resolve(stores, "PowerAverage")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if store.Shape() != ShapeInterval {
		t.Errorf("Resolve() shape = %s, want interval", store.Shape())
	}
	if _, err := r.Resolve(stores, "Smell"); !errors.Is(err, ErrUnmappedFunctionality) {
		t.Errorf("Resolve(Smell) error = %v, want ErrUnmappedFunctionality", err)
	}
}
