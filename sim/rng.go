package sim

import (
	"hash/fnv"
	"math/rand"
)

// Named RNG subsystems. Within this repository only the demand subsystem
// is drawn from (PassengerSpawner's arrival times); placement, roam and
// speed name independently seeded streams that no code here draws from.
const (
	rngSubsystemPlacement = "placement"
	rngSubsystemDemand    = "demand"
	rngSubsystemRoam      = "roam"
	rngSubsystemSpeed     = "speed"
)

// PartitionedRNG provides deterministic, isolated RNG instances per named
// subsystem derived from a single master seed, so adding a new stochastic
// concern never perturbs the draw sequence of an existing one.
//
// Thread-safety: NOT thread-safe. The simulator is single-threaded by
// design (see SPEC_FULL.md §5); this type must be used from one goroutine.
type PartitionedRNG struct {
	seed       int64
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a master seed.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{
		seed:       seed,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the deterministically-seeded *rand.Rand for name,
// creating and caching it on first use. The placement subsystem is seeded
// with the master seed directly; every other subsystem is seeded with
// masterSeed XOR fnv1a64(name) so it draws an independent stream.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	derived := p.seed
	if name != rngSubsystemPlacement {
		derived = p.seed ^ fnv1a64(name)
	}
	rng := rand.New(rand.NewSource(derived))
	p.subsystems[name] = rng
	return rng
}

// Seed returns the master seed this PartitionedRNG was constructed from.
func (p *PartitionedRNG) Seed() int64 { return p.seed }

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64())
}
