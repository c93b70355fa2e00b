package sim

import (
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// PassengerBlueprint is a passenger-to-be: its identity and trip endpoints,
// but not yet its arrival tick. Supplied by the (out-of-scope) scenario
// generator for every passenger not created at t=0.
type PassengerBlueprint struct {
	ID       string
	Src      Point
	Dest     Point
}

type pendingPassenger struct {
	tick      int64
	passenger *Passenger
}

// PassengerSpawner releases a set of blueprints into the world over the
// course of a run, with interarrival times drawn from a Poisson process
// (exponential gaps) so the "demand" RNG subsystem determines exactly when
// each passenger appears. This implements `passenger_spawn_start_fraction`
// < 1: the fraction created at t=0 is the caller's responsibility (they are
// ordinary passengers tracked from the start); everything passed here
// arrives later, spread across [0, maxTime).
type PassengerSpawner struct {
	pending []pendingPassenger
	next    int
}

// NewPassengerSpawner builds a spawner for blueprints, scheduling arrivals
// with mean interarrival time maxTime/(len(blueprints)+1) drawn from rng.
func NewPassengerSpawner(blueprints []PassengerBlueprint, maxTime int64, rng *PartitionedRNG) *PassengerSpawner {
	if len(blueprints) == 0 || maxTime <= 0 {
		return &PassengerSpawner{}
	}
	mean := float64(maxTime) / float64(len(blueprints)+1)
	dist := distuv.Exponential{Rate: 1 / mean, Src: rng.ForSubsystem(rngSubsystemDemand)}

	pending := make([]pendingPassenger, 0, len(blueprints))
	t := 0.0
	for _, bp := range blueprints {
		t += dist.Rand()
		tick := int64(t)
		if tick >= maxTime {
			tick = maxTime - 1
		}
		p := NewPassenger(bp.ID, bp.Src, bp.Dest, tick)
		pending = append(pending, pendingPassenger{tick: tick, passenger: p})
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].tick < pending[j].tick })
	return &PassengerSpawner{pending: pending}
}

// Due pops and returns every pending passenger whose arrival tick is <=
// now, in arrival order.
func (s *PassengerSpawner) Due(now int64) []*Passenger {
	var out []*Passenger
	for s.next < len(s.pending) && s.pending[s.next].tick <= now {
		out = append(out, s.pending[s.next].passenger)
		s.next++
	}
	return out
}

// Remaining reports how many blueprints have not yet been released.
func (s *PassengerSpawner) Remaining() int { return len(s.pending) - s.next }
