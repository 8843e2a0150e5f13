package measurement

import (
	"errors"
	"fmt"
	"strings"
)

// Route binds a functionality to the shape of its readings and its
// default unit.
type Route struct {
	Functionality string `json:"functionality"`
	Shape         Shape  `json:"shape"`
	Unit          string `json:"unit"`
}

// Router is the closed functionality-to-shape table. It is built once and
// never modified, so it is safe for concurrent use.
type Router struct {
	routes map[string]Route
	order  []string
}

// NewRouter builds a router. It reports every duplicate or invalid route
// together.
func NewRouter(routes []Route) (*Router, error) {
	r := &Router{routes: make(map[string]Route, len(routes))}
	var errs []string
	for _, rt := range routes {
		name := strings.TrimSpace(rt.Functionality)
		switch {
		case name == "":
			errs = append(errs, "route with empty functionality")
			continue
		case r.has(name):
			errs = append(errs, fmt.Sprintf("duplicate route for %s", name))
			continue
		}
		if _, err := ParseShape(string(rt.Shape)); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		rt.Functionality = name
		r.routes[name] = rt
		r.order = append(r.order, name)
	}
	if len(errs) > 0 {
		return nil, errors.New("measurement: invalid routes:\n  - " + strings.Join(errs, "\n  - "))
	}
	return r, nil
}

// Shape returns the shape a functionality routes to.
func (r *Router) Shape(functionality string) (Shape, error) {
	rt, ok := r.routes[functionality]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnmappedFunctionality, functionality)
	}
	return rt.Shape, nil
}

// Route returns the full route of a functionality.
func (r *Router) Route(functionality string) (Route, error) {
	rt, ok := r.routes[functionality]
	if !ok {
		return Route{}, fmt.Errorf("%w: %q", ErrUnmappedFunctionality, functionality)
	}
	return rt, nil
}

// Known reports whether a functionality has a route.
func (r *Router) Known(functionality string) bool {
	return r.has(functionality)
}

// Routes returns every route in configuration order.
func (r *Router) Routes() []Route {
	out := make([]Route, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.routes[name])
	}
	return out
}

// Resolve returns the store holding a functionality's readings.
func (r *Router) Resolve(stores *Stores, functionality string) (Store, error) {
	shape, err := r.Shape(functionality)
	if err != nil {
		return nil, err
	}
	return stores.For(shape)
}

func (r *Router) has(name string) bool {
	_, ok := r.routes[name]
	return ok
}
