package sim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// RoutingClient is the contract the simulator expects from the external
// routing service (out of scope for this package — the service itself,
// nearest-on-road snapping and path computation, lives elsewhere).
type RoutingClient interface {
	// SnapToRoad returns the nearest drivable point to p.
	SnapToRoad(ctx context.Context, p Point) (Point, error)
	// RoadPath returns the ordered sequence of points describing the road
	// path from a to b, starting at a and ending at b. It returns
	// ErrNoRoute (wrapped) when the endpoints are mutually unreachable.
	RoadPath(ctx context.Context, a, b Point) ([]Point, error)
}

// HTTPRoutingClient calls a routing HTTP service exposing a "nearest" and
// a "route" endpoint, following the request/response shape of common
// turn-by-turn routing services (nearest-on-road snap, route geometry as
// an ordered point list). It is the concrete adapter a production
// deployment would use; tests use FakeRoutingClient instead.
type HTTPRoutingClient struct {
	BaseURL string
	HTTP    *http.Client
}

// NewHTTPRoutingClient builds a client against baseURL using a default
// http.Client with a bounded timeout.
func NewHTTPRoutingClient(baseURL string) *HTTPRoutingClient {
	return &HTTPRoutingClient{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type nearestResponse struct {
	Waypoints []struct {
		Location [2]float64 `json:"location"`
	} `json:"waypoints"`
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry [][2]float64 `json:"geometry"`
	} `json:"routes"`
}

func (c *HTTPRoutingClient) SnapToRoad(ctx context.Context, p Point) (Point, error) {
	url := fmt.Sprintf("%s/nearest/v1/driving/%f,%f", c.BaseURL, p.X, p.Y)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Point{}, fmt.Errorf("build snap request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Point{}, fmt.Errorf("snap to road: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only response body

	var out nearestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Point{}, fmt.Errorf("decode snap response: %w", err)
	}
	if len(out.Waypoints) == 0 {
		return Point{}, fmt.Errorf("snap to road: empty waypoints: %w", ErrNoRoute)
	}
	wp := out.Waypoints[0].Location
	return Point{X: wp[0], Y: wp[1]}, nil
}

func (c *HTTPRoutingClient) RoadPath(ctx context.Context, a, b Point) ([]Point, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f", c.BaseURL, a.X, a.Y, b.X, b.Y)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build route request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("road path: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only response body

	var out routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode route response: %w", err)
	}
	if out.Code == "NoRoute" || len(out.Routes) == 0 {
		return nil, fmt.Errorf("road path %v -> %v: %w", a, b, ErrNoRoute)
	}
	geom := out.Routes[0].Geometry
	points := make([]Point, len(geom))
	for i, xy := range geom {
		points[i] = Point{X: xy[0], Y: xy[1]}
	}
	return points, nil
}

// pointPairKey is an unordered cache key over two points: forward and
// reverse queries for the same pair hit the same entry.
type pointPairKey struct {
	a, b Point
}

func newPointPairKey(a, b Point) pointPairKey {
	if a.X > b.X || (a.X == b.X && a.Y > b.Y) {
		a, b = b, a
	}
	return pointPairKey{a: a, b: b}
}

type cacheEntry struct {
	path    []Point
	noRoute bool
}

// RouteCache memoizes RoutingClient.RoadPath results keyed by the
// unordered endpoint pair. Negative results (no route exists) are cached
// as a distinguished sentinel so repeated infeasible queries cost O(1).
// A RouteCache is an explicit object owned by a Simulator (or shared
// across runs by the caller); it is never package-level state, so
// reproducibility stays under the caller's control.
type RouteCache struct {
	client  RoutingClient
	entries map[pointPairKey]cacheEntry
}

// NewRouteCache wraps client with a process-local memoization layer.
func NewRouteCache(client RoutingClient) *RouteCache {
	return &RouteCache{
		client:  client,
		entries: make(map[pointPairKey]cacheEntry),
	}
}

// RoadPath returns the cached or freshly-computed road path between a and
// b. It returns ErrNoRoute (wrapped) when none exists, without consulting
// the underlying client again once the negative result has been cached.
func (c *RouteCache) RoadPath(ctx context.Context, a, b Point) ([]Point, error) {
	key := newPointPairKey(a, b)
	if entry, ok := c.entries[key]; ok {
		if entry.noRoute {
			return nil, fmt.Errorf("road path %v -> %v (cached): %w", a, b, ErrNoRoute)
		}
		return orientPath(entry.path, a, b), nil
	}

	path, err := c.client.RoadPath(ctx, a, b)
	if err != nil {
		if errors.Is(err, ErrNoRoute) {
			c.entries[key] = cacheEntry{noRoute: true}
		}
		return nil, err
	}
	c.entries[key] = cacheEntry{path: path}
	return orientPath(path, a, b), nil
}

// SnapToRoad delegates directly; snapping is not memoized since it has no
// natural pairwise key and is cheap relative to RoadPath.
func (c *RouteCache) SnapToRoad(ctx context.Context, p Point) (Point, error) {
	return c.client.SnapToRoad(ctx, p)
}

// orientPath returns path (or its reverse) so that it starts at a. The
// cache stores one canonical direction per unordered pair; callers
// requesting the reverse direction get the reversed point sequence.
func orientPath(path []Point, a, _ Point) []Point {
	if len(path) == 0 {
		return path
	}
	if path[0] == a {
		out := make([]Point, len(path))
		copy(out, path)
		return out
	}
	out := make([]Point, len(path))
	for i, p := range path {
		out[len(path)-1-i] = p
	}
	return out
}
