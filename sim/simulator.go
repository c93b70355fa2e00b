package sim

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Simulator orchestrates a single deterministic run over a pre-populated
// World and set of Terminals. Building the initial vehicle/passenger/
// terminal placement is the job of the (out-of-scope) scenario generator;
// the Simulator only drives the tick loop described in SPEC_FULL.md §4.7,
// plus releasing any deferred passenger arrivals from an optional Spawner.
type Simulator struct {
	Config    Config
	World     *World
	Terminals []*Terminal
	Routes    *RouteCache
	RNG       *PartitionedRNG
	Logger    *logrus.Logger
	Spawner   *PassengerSpawner

	allPassengers []*Passenger
	now           int64
	ctx           context.Context

	// lastActivity is the shared, fleet-wide tick of the most recent
	// offload event, mirroring the original's single last_active counter
	// used to derive every vehicle's waiting-time at finalize time.
	lastActivity int64

	wallStart time.Time
	wallSpent time.Duration
}

// NewSimulator validates cfg and constructs a Simulator over world and
// terminals. routes must be the same RouteCache used to build any
// Scheduler/Vehicle already present in world, so caching stays coherent.
func NewSimulator(cfg Config, world *World, terminals []*Terminal, routes *RouteCache, logger *logrus.Logger) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	allPassengers := append([]*Passenger{}, world.Passengers()...)
	return &Simulator{
		Config:        cfg,
		World:         world,
		Terminals:     terminals,
		Routes:        routes,
		RNG:           NewPartitionedRNG(cfg.Seed),
		Logger:        logger,
		allPassengers: allPassengers,
		ctx:           context.Background(),
		lastActivity:  -1,
	}, nil
}

// TrackPassenger registers p with the simulator's master passenger list,
// used for final reporting even after the passenger has been removed
// from World (on load) or completed. Scenario setup (or tests) must call
// this for every passenger it creates outside of NewSimulator's initial
// world snapshot or the Spawner.
func (s *Simulator) TrackPassenger(p *Passenger) {
	s.allPassengers = append(s.allPassengers, p)
}

// Now returns the current tick.
func (s *Simulator) Now() int64 { return s.now }

// Run drives the tick loop from now=0 until now >= Config.MaxTime,
// honoring ctx cancellation between ticks. It stamps death times and
// finalizes metrics on exit.
func (s *Simulator) Run(ctx context.Context) (*RunResult, error) {
	s.ctx = ctx
	s.wallStart = time.Now()
	for s.now < s.Config.MaxTime {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.Step(s.now); err != nil {
			return nil, err
		}
		s.now += s.tickAdvance()
	}
	s.wallSpent = time.Since(s.wallStart)
	// One final tick-sized bump after the loop ends, mirroring the
	// original's post-loop last_active increment.
	s.lastActivity += s.tickAdvance()
	return s.finalize(), nil
}

// tickAdvance returns how much the clock moves per tick: 1 when
// Config.IsRealistic is set, MSPerFrame otherwise (SPEC_FULL.md's resolved
// Open Question). Movement units follow each vehicle's UseMeters flag
// separately.
func (s *Simulator) tickAdvance() int64 {
	if s.Config.IsRealistic {
		return 1
	}
	return MSPerFrame
}

// Step executes exactly one tick's worth of work at the given clock value
// (SPEC_FULL.md §4.7 steps 1-4). It does not advance the clock; Run does
// that after each Step call, and tests may call Step directly to drive
// the engine tick-by-tick without relying on Run's loop.
func (s *Simulator) Step(now int64) error {
	s.releaseDueArrivals(now)

	vehicles := s.World.Vehicles()

	// Step 1: offload, then enqueue, then load — three full passes so
	// capacity freed by an offload is visible to every vehicle's enqueue
	// and load in the same tick.
	for _, v := range activeVehicles(vehicles) {
		s.serviceVehicle(v, now, func(v *Vehicle) {
			if dropped := v.TryOffload(s.Config.DropoffRadiusM, now); len(dropped) > 0 {
				s.lastActivity = now
			}
		})
	}
	for _, v := range activeVehicles(vehicles) {
		s.serviceVehicle(v, now, func(v *Vehicle) { v.EnqueueNearby(s.ctx, s.Config.DetectionRadiusM, now) })
	}
	for _, v := range activeVehicles(vehicles) {
		s.serviceVehicle(v, now, func(v *Vehicle) { v.TryLoad(s.Config.PickupRadiusM, now) })
	}

	// Step 2: move, with same-tick fallback for vehicles that made no
	// progress.
	for _, v := range activeVehicles(vehicles) {
		s.serviceVehicle(v, now, func(v *Vehicle) { s.moveAndFallback(v, now) })
	}

	// Step 3: terminal service.
	for _, t := range s.Terminals {
		for {
			result := t.LoadHead(now)
			if result == nil {
				break
			}
			t.PopVehicle()
		}
	}

	// Step 4: enqueue timeout reclamation.
	if s.Config.CheckEnqueueTimeouts {
		s.World.CheckEnqueueTimeouts(now, s.Config.DetectionRadiusM)
	}

	return nil
}

// releaseDueArrivals moves any passenger whose spawner-assigned arrival
// tick has come due into the world and the master passenger list.
func (s *Simulator) releaseDueArrivals(now int64) {
	if s.Spawner == nil {
		return
	}
	for _, p := range s.Spawner.Due(now) {
		s.World.AddPassenger(p)
		s.allPassengers = append(s.allPassengers, p)
	}
}

// activeVehicles filters to vehicles that are alive (not finished) and
// currently active (not parked at a terminal).
func activeVehicles(vehicles []*Vehicle) []*Vehicle {
	out := make([]*Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if v.DeathTick < 0 && v.Active {
			out = append(out, v)
		}
	}
	return out
}

// serviceVehicle runs fn against v, isolating any panic as a per-vehicle
// fault: the vehicle is finished and the tick continues for everyone
// else (SPEC_FULL.md §7).
func (s *Simulator) serviceVehicle(v *Vehicle, now int64, fn func(*Vehicle)) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.WithFields(logrus.Fields{"vehicle": v.ID, "panic": r}).
				Error("vehicle fault during tick; finishing trip")
			v.FinishTrip(now)
		}
	}()
	fn(v)
}

// moveAndFallback implements step 2 of SPEC_FULL.md §4.7: move the
// vehicle, and if it made zero progress, retry offload/schedule, or head
// to (or park at) the nearest terminal, or advance along the roam cycle.
func (s *Simulator) moveAndFallback(v *Vehicle, now int64) {
	if v.Move(now) {
		return
	}

	// 2a: retry offload; if still carrying passengers, schedule next.
	if dropped := v.TryOffload(s.Config.DropoffRadiusM, now); len(dropped) > 0 {
		s.lastActivity = now
	}
	if v.HasPassenger() {
		if ok, err := v.ScheduleNextPassenger(s.ctx); err != nil {
			s.Logger.WithFields(logrus.Fields{"vehicle": v.ID, "err": err}).
				Warn("could not schedule next passenger")
		} else if ok {
			return
		}
	}
	if v.HasPassenger() {
		return
	}

	if !v.IsRoaming {
		// 2b: find nearest terminal by Euclidean distance.
		term := s.nearestTerminal(v.CurrentPoint())
		if term == nil {
			return
		}
		if s.World.SameCell(v.CurrentPoint(), term.Location) {
			term.AddVehicle(v, now)
			return
		}
		if ok, err := v.UpdatePath(s.ctx, term.Location, PathAppend); err != nil {
			s.Logger.WithFields(logrus.Fields{"vehicle": v.ID, "err": err}).
				Warn("no route to terminal; finishing trip")
			v.FinishTrip(now)
		} else if !ok {
			v.FinishTrip(now)
		}
		return
	}

	// 2c: roaming vehicle — advance along the cycle.
	v.LoadNextCyclePoint()
}

func (s *Simulator) nearestTerminal(from Point) *Terminal {
	var best *Terminal
	bestDist := 0.0
	for _, t := range s.Terminals {
		d := Euclidean(from, t.Location)
		if best == nil || d < bestDist {
			best = t
			bestDist = d
		}
	}
	return best
}

// finalize stamps death times for vehicles still running at MaxTime,
// computes each vehicle's waiting-time counter from the shared
// lastActivity tick, and builds the RunResult.
func (s *Simulator) finalize() *RunResult {
	for _, v := range s.World.Vehicles() {
		if v.DeathTick < 0 {
			v.DeathTick = s.now
		}
		waiting := float64(s.lastActivity) - v.TotalDistance/v.Speed
		if waiting < 0 {
			waiting = 0
		}
		v.WaitingTime = waiting
	}
	return &RunResult{
		Metadata:   s.buildMetadata(),
		Vehicles:   s.World.Vehicles(),
		Passengers: s.allPassengers,
	}
}

func (s *Simulator) buildMetadata() RunMetadata {
	return RunMetadata{
		Identifier:             s.Config.Identifier,
		Seed:                   s.Config.Seed,
		MaxTime:                s.Config.MaxTime,
		TotalVehicles:          len(s.World.Vehicles()),
		TotalTerminals:         len(s.Terminals),
		TotalPassengers:        len(s.allPassengers),
		HotspotsCount:          len(s.Config.FixedHotspots),
		RoadPassengerChance:    s.Config.RoadPassengerChance,
		RoamingVehicleChance:   s.Config.RoamingVehicleChance,
		Scheduler:              s.Config.VehicleConfig.Scheduler,
		IsRealistic:            s.Config.IsRealistic,
		Capacity:               s.Config.VehicleConfig.Capacity,
		Speed:                  s.Config.VehicleConfig.Speed,
		DetectionRadiusM:       s.Config.DetectionRadiusM,
		PickupRadiusM:          s.Config.PickupRadiusM,
		DropoffRadiusM:         s.Config.DropoffRadiusM,
		EndTime:                s.now,
		ElapsedWallTimeSeconds: s.wallSpent.Seconds(),
		LastActivityTime:       s.lastActivity,
	}
}
