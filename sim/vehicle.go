package sim

import (
	"context"
	"fmt"
)

// VehicleStatus is the vehicle's current operating mode.
type VehicleStatus int

const (
	VehicleIdle VehicleStatus = iota
	VehicleServing
	VehicleTerminal
	VehicleRoaming
	VehicleReturningToTerminal
)

func (s VehicleStatus) String() string {
	switch s {
	case VehicleIdle:
		return "IDLE"
	case VehicleServing:
		return "SERVING"
	case VehicleTerminal:
		return "TERMINAL"
	case VehicleRoaming:
		return "ROAMING"
	case VehicleReturningToTerminal:
		return "RETURNING_TO_TERMINAL"
	default:
		return "UNKNOWN"
	}
}

// allowedTransitions is the vehicle status table from SPEC_FULL.md §4.4.
var allowedTransitions = map[VehicleStatus]map[VehicleStatus]bool{
	VehicleIdle:                {VehicleServing: true, VehicleTerminal: true},
	VehicleServing:             {VehicleReturningToTerminal: true, VehicleRoaming: true},
	VehicleTerminal:            {VehicleServing: true},
	VehicleRoaming:             {VehicleServing: true},
	VehicleReturningToTerminal: {VehicleTerminal: true},
}

// PathPriority controls how UpdatePath merges a newly resolved road path
// into the vehicle's pending path-point queue.
type PathPriority int

const (
	PathReplace PathPriority = iota
	PathFront
	PathAppend
)

// MSPerFrame is the tick duration, in milliseconds, used in legacy
// (non-meters) mode.
const MSPerFrame = 1000

// Vehicle is a shared-ride tricycle: physical movement, path queue,
// capacity accounting, status machine and metric counters.
type Vehicle struct {
	ID       string
	Capacity int
	Speed    float64 // meters/tick (meters mode) or units/ms (legacy mode)
	UseMeters bool

	RoamCycle *Cycle
	IsRoaming bool

	Active bool
	Status VehicleStatus

	onboard  []*Passenger
	enqueued map[string]bool

	pathQueue  []Point
	traversed  []Point

	TotalDistance            float64
	TotalProductiveDistance  float64
	TotalDistanceM           float64
	TotalProductiveDistanceM float64
	WaitingTime              float64

	CreateTick int64
	DeathTick  int64

	Scheduler Scheduler
	world     *World
	routes    *RouteCache

	Log EventLog
}

// NewVehicle constructs a vehicle positioned at start, registered against
// world and routes for proximity queries and path resolution.
func NewVehicle(id string, capacity int, speed float64, useMeters bool, start Point, createTick int64, world *World, routes *RouteCache, scheduler Scheduler) *Vehicle {
	v := &Vehicle{
		ID:         id,
		Capacity:   capacity,
		Speed:      speed,
		UseMeters:  useMeters,
		Active:     true,
		Status:     VehicleIdle,
		enqueued:   make(map[string]bool),
		traversed:  []Point{start},
		CreateTick: createTick,
		DeathTick:  -1,
		Scheduler:  scheduler,
		world:      world,
		routes:     routes,
	}
	v.Log.Append(Event{Type: EventAppear, Tick: createTick, Location: start})
	return v
}

// CurrentPoint returns the last entry of the traversed-path history.
func (v *Vehicle) CurrentPoint() Point { return v.traversed[len(v.traversed)-1] }

// HasPassenger reports whether onboard count > 0.
func (v *Vehicle) HasPassenger() bool { return len(v.onboard) > 0 }

// Onboard returns the ordered list of onboard passengers. Callers must
// not mutate the returned slice.
func (v *Vehicle) Onboard() []*Passenger { return v.onboard }

// OnboardCount and EnqueuedCount expose capacity bookkeeping for tests
// and invariant checks (spec.md §8 invariant 1).
func (v *Vehicle) OnboardCount() int  { return len(v.onboard) }
func (v *Vehicle) EnqueuedCount() int { return len(v.enqueued) }

// TraversedPath returns the full history of points visited.
func (v *Vehicle) TraversedPath() []Point { return v.traversed }

func (v *Vehicle) effectiveSpeedPerTick() float64 {
	if v.UseMeters {
		return v.Speed
	}
	return v.Speed * MSPerFrame
}

func (v *Vehicle) clearEnqueued(passengerID string) {
	delete(v.enqueued, passengerID)
}

// SetStatus attempts a validated transition. On success it applies
// ROAMING's entry action (clear path queue, load next cycle point). On
// failure it returns ErrInvalidTransition and leaves Status unchanged;
// the callers in this package (Vehicle and Terminal methods) discard it.
func (v *Vehicle) SetStatus(target VehicleStatus) error {
	if v.Status == target {
		return nil
	}
	if !allowedTransitions[v.Status][target] {
		return fmt.Errorf("%s -> %s: %w", v.Status, target, ErrInvalidTransition)
	}
	v.Status = target
	if target == VehicleRoaming {
		v.pathQueue = nil
		v.loadNextCyclePointLocked()
	}
	return nil
}

// UpdatePath resolves a road path from the current position to target and
// merges it into the path-point queue per priority. Paths shorter than 3
// router-returned points (current, >=1 intermediate, target) are rejected
// as too short to matter. If the queue's tail already equals target, the
// call succeeds without enqueueing anything new (dedup).
func (v *Vehicle) UpdatePath(ctx context.Context, target Point, priority PathPriority) (bool, error) {
	if n := len(v.pathQueue); n > 0 && v.pathQueue[n-1] == target {
		return true, nil
	}
	cur := v.CurrentPoint()
	raw, err := v.routes.RoadPath(ctx, cur, target)
	if err != nil {
		return false, err
	}
	if len(raw) < 3 {
		return false, errPathTooShort
	}
	pts := raw[1:] // drop the first point, equal to current

	switch priority {
	case PathReplace:
		v.pathQueue = append([]Point{}, pts...)
	case PathFront:
		v.pathQueue = append(append([]Point{}, pts...), v.pathQueue...)
	case PathAppend:
		v.pathQueue = append(v.pathQueue, pts...)
	}
	return true, nil
}

// loadNextCyclePointLocked appends the roam cycle's next point after the
// vehicle's own status-machine mutations, i.e. while already holding
// whatever invariant SetStatus is enforcing. It is also exposed publicly
// as LoadNextCyclePoint for the tick engine's step 2c.
func (v *Vehicle) loadNextCyclePointLocked() {
	if v.RoamCycle == nil {
		return
	}
	nxt := v.RoamCycle.Next(v.CurrentPoint())
	_, _ = v.UpdatePath(context.Background(), nxt, PathAppend)
}

// LoadNextCyclePoint appends the roam cycle's next point to the path
// queue. It is a no-op for non-roaming vehicles or those without a cycle.
func (v *Vehicle) LoadNextCyclePoint() {
	if !v.IsRoaming || v.RoamCycle == nil {
		return
	}
	v.loadNextCyclePointLocked()
}

// EnqueueNearby scans the world for WAITING, unclaimed passengers (or
// ones already claimed by this vehicle) within detectionRadiusM and
// claims up to the vehicle's remaining room, routing toward each newly
// claimed passenger's source as a FRONT target.
func (v *Vehicle) EnqueueNearby(ctx context.Context, detectionRadiusM float64, now int64) {
	room := v.Capacity - (len(v.onboard) + len(v.enqueued))
	if room <= 0 {
		return
	}
	for _, p := range v.world.NearbyPassengers(v.CurrentPoint(), detectionRadiusM) {
		if room <= 0 {
			break
		}
		if p.Status == PassengerEnqueued && p.ClaimedBy == v.ID {
			continue // already ours
		}
		if p.Status != PassengerWaiting {
			continue
		}
		p.Enqueue(v.ID, now)
		v.enqueued[p.ID] = true
		room--
		hasTarget := false
		for _, pt := range v.pathQueue {
			if pt == p.Src {
				hasTarget = true
				break
			}
		}
		if !hasTarget {
			_, _ = v.UpdatePath(ctx, p.Src, PathFront)
		}
	}
}

// TryLoad attempts to board every nearby passenger this vehicle has
// enqueued, within pickupRadiusM of the vehicle's current position. On
// success a passenger moves ENQUEUED -> ONBOARD; on capacity failure it
// is reset to WAITING and the claim is cleared.
func (v *Vehicle) TryLoad(pickupRadiusM float64, now int64) {
	for _, p := range v.world.NearbyPassengers(v.CurrentPoint(), pickupRadiusM) {
		if p.Status != PassengerEnqueued || p.ClaimedBy != v.ID {
			continue
		}
		if !v.world.AtLocation(v.CurrentPoint(), p.Src, pickupRadiusM) {
			continue
		}
		wasEmpty := len(v.onboard) == 0
		if len(v.onboard) < v.Capacity {
			v.onboard = append(v.onboard, p)
			v.world.RemovePassenger(p)
			delete(v.enqueued, p.ID)
			p.Load(v.ID, now, v.CurrentPoint())
			v.Log.Append(Event{Type: EventLoad, Tick: now, Location: v.CurrentPoint(), AgentID: p.ID})
			v.Log.Append(Event{Type: EventWait, Tick: now, Location: v.CurrentPoint(), DurationMS: 500})
			if v.Status != VehicleServing {
				_ = v.SetStatus(VehicleServing)
			}
			if wasEmpty {
				_, _ = v.ScheduleNextPassenger(context.Background())
			}
		} else {
			delete(v.enqueued, p.ID)
			p.Reset(now, v.CurrentPoint())
		}
	}
}

// TryOffload drops every onboard passenger whose destination is within
// dropoffRadiusM of the vehicle's current position. If the onboard set
// becomes empty, the vehicle transitions to ROAMING (roamers) or
// RETURNING_TO_TERMINAL (everyone else).
func (v *Vehicle) TryOffload(dropoffRadiusM float64, now int64) []*Passenger {
	var dropped []*Passenger
	remaining := v.onboard[:0:0]
	for _, p := range v.onboard {
		if v.world.AtLocation(v.CurrentPoint(), p.Dest, dropoffRadiusM) {
			p.DropOff(v.ID, now, v.CurrentPoint())
			v.Log.Append(Event{Type: EventDropOff, Tick: now, Location: v.CurrentPoint(), AgentID: p.ID})
			dropped = append(dropped, p)
		} else {
			remaining = append(remaining, p)
		}
	}
	v.onboard = remaining
	if len(dropped) > 0 {
		v.Log.Append(Event{Type: EventWait, Tick: now, Location: v.CurrentPoint(), DurationMS: 500})
		if len(v.onboard) == 0 {
			if v.IsRoaming {
				_ = v.SetStatus(VehicleRoaming)
			} else {
				_ = v.SetStatus(VehicleReturningToTerminal)
			}
		}
	}
	return dropped
}

// ScheduleNextPassenger picks the next onboard passenger to drop off via
// the configured Scheduler and routes toward their destination,
// replacing the path queue. It returns ok=false (no error) when there is
// nothing onboard to schedule, per SPEC_FULL.md §7's guidance to treat
// "no more passengers" as a result, not an exception.
func (v *Vehicle) ScheduleNextPassenger(ctx context.Context) (ok bool, err error) {
	if len(v.onboard) == 0 {
		return false, nil
	}
	_, p := v.Scheduler.Next(v.CurrentPoint(), v.onboard)
	ok, err = v.UpdatePath(ctx, p.Dest, PathReplace)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Move advances the vehicle toward the head of its path queue by at most
// one tick's worth of travel. It reports whether it made any real progress
// this tick — false when the queue was empty, the vehicle is TERMINAL, or
// the head of the queue was already reached (required distance zero) — the
// tick engine's step-2 fallback triggers on a false return.
//
// A TERMINAL vehicle never moves.
func (v *Vehicle) Move(now int64) bool {
	if v.Status == VehicleTerminal {
		return false
	}
	if len(v.pathQueue) == 0 {
		return false
	}
	cur := v.CurrentPoint()
	nxt := v.pathQueue[0]

	var required, travelable float64
	if v.UseMeters {
		required = Haversine(cur, nxt)
		travelable = v.Speed
	} else {
		required = Euclidean(cur, nxt)
		travelable = v.Speed * MSPerFrame
	}

	if required <= 0 {
		v.pathQueue = v.pathQueue[1:]
		return false
	}

	progress := travelable / required
	if progress > 1 {
		progress = 1
	}
	next := Interpolate(cur, nxt, progress)
	v.traversed = append(v.traversed, next)

	distTraveled := required * progress
	distTraveledM := distTraveled
	if !v.UseMeters {
		distTraveledM = Haversine(cur, nxt) * progress
	}

	v.TotalDistance += distTraveled
	v.TotalDistanceM += distTraveledM
	if v.HasPassenger() {
		v.TotalProductiveDistance += distTraveled
		v.TotalProductiveDistanceM += distTraveledM
	}

	v.Log.CoalesceMove(now, next)

	if progress >= 1 {
		v.pathQueue = v.pathQueue[1:]
	}
	return true
}

// FinishTrip marks the vehicle permanently inactive. Irreversible.
func (v *Vehicle) FinishTrip(now int64) {
	v.Active = false
	v.DeathTick = now
	v.Log.Append(Event{Type: EventFinish, Tick: now, Location: v.CurrentPoint()})
}
