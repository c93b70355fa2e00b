package sim

import (
	"fmt"
	"math"
)

// earthRadiusM is the radius of the Earth in meters used by Haversine.
const earthRadiusM = 6371000.0

// Point is a geographic coordinate (longitude, latitude).
type Point struct {
	X float64 // longitude
	Y float64 // latitude
}

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b Point) float64 {
	lat1 := a.Y * math.Pi / 180
	lat2 := b.Y * math.Pi / 180
	dLat := (b.Y - a.Y) * math.Pi / 180
	dLon := (b.X - a.X) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusM * c
}

// Euclidean returns the Cartesian distance between a and b on raw
// coordinates, with no regard for the curvature of the earth.
func Euclidean(a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Interpolate returns the point a fraction t (clamped to [0,1]) of the way
// from a to b.
func Interpolate(a, b Point, t float64) Point {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// Path is an ordered sequence of points between a start and an end.
type Path struct {
	Points []Point
}

// NewPath builds a Path from a slice of points.
func NewPath(points []Point) Path {
	return Path{Points: points}
}

// Start returns the first point of the path. Panics on an empty path, as
// an empty Path is never a valid construction within this package.
func (p Path) Start() Point { return p.Points[0] }

// End returns the last point of the path.
func (p Path) End() Point { return p.Points[len(p.Points)-1] }

// EuclideanLength sums the Euclidean distance between consecutive points.
func (p Path) EuclideanLength() float64 {
	var total float64
	for i := 1; i < len(p.Points); i++ {
		total += Euclidean(p.Points[i-1], p.Points[i])
	}
	return total
}

// HaversineLength sums the great-circle distance between consecutive points.
func (p Path) HaversineLength() float64 {
	var total float64
	for i := 1; i < len(p.Points); i++ {
		total += Haversine(p.Points[i-1], p.Points[i])
	}
	return total
}

// Cycle is an ordered sequence of points forming a closed roam route. It
// must have at least two points.
type Cycle struct {
	Points []Point
}

// NewCycle constructs a Cycle, rejecting fewer than two points.
func NewCycle(points []Point) (Cycle, error) {
	if len(points) < 2 {
		return Cycle{}, fmt.Errorf("cycle must have at least 2 points, got %d: %w", len(points), ErrImproperConfig)
	}
	return Cycle{Points: points}, nil
}

// NearestIndex returns the index of the cycle point nearest to p, using
// Euclidean distance. Ties break toward the lower index (stable scan
// order), matching the original's min-over-enumeration behavior.
func (c Cycle) NearestIndex(p Point) int {
	best := 0
	bestDist := Euclidean(p, c.Points[0])
	for i := 1; i < len(c.Points); i++ {
		d := Euclidean(p, c.Points[i])
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// Next returns the cycle point following the one nearest to cur, wrapping
// around to index 0 after the last point.
func (c Cycle) Next(cur Point) Point {
	idx := c.NearestIndex(cur)
	return c.Points[(idx+1)%len(c.Points)]
}
