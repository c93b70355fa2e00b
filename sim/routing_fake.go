package sim

import (
	"context"
	"fmt"
)

// FakeRoutingClient is a deterministic, in-memory RoutingClient used by
// tests and by callers exercising the engine without a live routing
// service. Routes are registered explicitly; any unregistered pair
// resolves to ErrNoRoute unless StraightLine is set, in which case it
// falls back to a three-point straight path (a, midpoint, b).
type FakeRoutingClient struct {
	// Routes maps an unordered point pair to the road path between them,
	// keyed the same way RouteCache keys its entries.
	Routes map[pointPairKey][]Point
	// NoRoutes marks explicit negative pairs (takes precedence over
	// StraightLine and Routes).
	NoRoutes map[pointPairKey]bool
	// StraightLine, when true, synthesizes a path of [a, midpoint, b] for
	// any pair not explicitly registered, instead of returning ErrNoRoute.
	StraightLine bool
	// Calls counts RoadPath invocations, so tests can assert the cache
	// layer avoids redundant calls to the underlying client.
	Calls int
}

// NewFakeRoutingClient returns a client with empty route tables.
func NewFakeRoutingClient() *FakeRoutingClient {
	return &FakeRoutingClient{
		Routes:   make(map[pointPairKey][]Point),
		NoRoutes: make(map[pointPairKey]bool),
	}
}

// SetRoute registers the road path between a and b (and the reverse query).
func (f *FakeRoutingClient) SetRoute(a, b Point, path []Point) {
	f.Routes[newPointPairKey(a, b)] = path
}

// SetNoRoute marks a and b as mutually unreachable.
func (f *FakeRoutingClient) SetNoRoute(a, b Point) {
	f.NoRoutes[newPointPairKey(a, b)] = true
}

func (f *FakeRoutingClient) SnapToRoad(_ context.Context, p Point) (Point, error) {
	return p, nil
}

func (f *FakeRoutingClient) RoadPath(_ context.Context, a, b Point) ([]Point, error) {
	f.Calls++
	key := newPointPairKey(a, b)
	if f.NoRoutes[key] {
		return nil, errNoRouteFor(a, b)
	}
	if path, ok := f.Routes[key]; ok {
		return orientPath(path, a, b), nil
	}
	if f.StraightLine {
		mid := Interpolate(a, b, 0.5)
		return []Point{a, mid, b}, nil
	}
	return nil, errNoRouteFor(a, b)
}

func errNoRouteFor(a, b Point) error {
	return fmt.Errorf("no route %v -> %v (fake client): %w", a, b, ErrNoRoute)
}
