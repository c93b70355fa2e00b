package sim

import (
	"context"
	"math"
)

// Scheduler chooses which onboard passenger a vehicle should drop off
// next. Implementations must be deterministic: the same src and onboard
// slice must always yield the same (index, passenger) pair.
type Scheduler interface {
	// Next returns the index into onboard and the passenger chosen to be
	// dropped off next, given the vehicle's current position src.
	Next(src Point, onboard []*Passenger) (int, *Passenger)
}

// FIFOScheduler always picks the first onboard passenger, preserving
// load order.
type FIFOScheduler struct{}

func (FIFOScheduler) Next(_ Point, onboard []*Passenger) (int, *Passenger) {
	return 0, onboard[0]
}

// BruteForceScheduler enumerates every permutation of onboard passengers
// and picks the drop-off order with the least total road distance,
// returning the first stop of the winning permutation. Because onboard
// size is bounded by vehicle capacity (k! <= 720 at k=6), brute force is
// tractable. A leg whose road path is unavailable contributes +Inf, so
// that permutation is discarded; ties break by permutation enumeration
// order (the first-generated minimal permutation wins).
type BruteForceScheduler struct {
	Routes *RouteCache
}

// NewBruteForceScheduler builds a scheduler backed by routes, the same
// RouteCache instance used by vehicles, so permutation scoring reuses
// cached road-path lookups.
func NewBruteForceScheduler(routes *RouteCache) *BruteForceScheduler {
	return &BruteForceScheduler{Routes: routes}
}

func (s *BruteForceScheduler) Next(src Point, onboard []*Passenger) (int, *Passenger) {
	n := len(onboard)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	bestDist := math.Inf(1)
	bestOrder := append([]int{}, order...)

	permute(order, func(perm []int) {
		total := s.totalDistance(src, onboard, perm)
		if total < bestDist {
			bestDist = total
			bestOrder = append(bestOrder[:0], perm...)
		}
	})

	first := bestOrder[0]
	return first, onboard[first]
}

func (s *BruteForceScheduler) totalDistance(src Point, onboard []*Passenger, perm []int) float64 {
	cur := src
	var total float64
	ctx := context.Background()
	for _, idx := range perm {
		dest := onboard[idx].Dest
		path, err := s.Routes.RoadPath(ctx, cur, dest)
		if err != nil {
			return math.Inf(1)
		}
		total += NewPath(path).EuclideanLength()
		cur = dest
	}
	return total
}

// permute calls visit once for every permutation of the input slice, in
// the same left-to-right, choose-next-from-remaining-pool order as
// Python's itertools.permutations over a sorted input, which is the
// enumeration order SPEC_FULL.md's tie-break rule is defined against.
func permute(a []int, visit func([]int)) {
	n := len(a)
	chosen := make([]int, 0, n)
	used := make([]bool, n)
	var rec func()
	rec = func() {
		if len(chosen) == n {
			visit(chosen)
			return
		}
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			used[i] = true
			chosen = append(chosen, a[i])
			rec()
			chosen = chosen[:len(chosen)-1]
			used[i] = false
		}
	}
	rec()
}
