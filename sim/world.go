package sim

// Bounds is a rectangular geographic region.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Contains reports whether p falls within the bounds, inclusive.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// World holds a bounded region plus the registries of passengers
// currently present on the map (still WAITING or ENQUEUED, not yet
// boarded) and of all vehicles. Vehicles are never removed; passengers
// are removed from the world on successful load.
//
// Registry order (insertion order, preserved across removals) is part of
// the simulator's determinism contract: nearby-passenger scans and
// timeout checks walk the registry in this order.
type World struct {
	Bounds Bounds

	passengers   []*Passenger
	passengerIdx map[string]int // id -> index into passengers, for O(1) lookup

	vehicles []*Vehicle

	// GridCellSizeM, when > 0, enables the grid-cell "same location"
	// predicate used by SameCell (see SPEC_FULL.md §9).
	GridCellSizeM float64
}

// NewWorld constructs an empty World over the given bounds.
func NewWorld(bounds Bounds) *World {
	return &World{
		Bounds:       bounds,
		passengerIdx: make(map[string]int),
	}
}

// AddPassenger registers p as present on the map.
func (w *World) AddPassenger(p *Passenger) {
	w.passengerIdx[p.ID] = len(w.passengers)
	w.passengers = append(w.passengers, p)
}

// RemovePassenger removes p from the registry, preserving the relative
// order of the remaining passengers.
func (w *World) RemovePassenger(p *Passenger) {
	idx, ok := w.passengerIdx[p.ID]
	if !ok {
		return
	}
	w.passengers = append(w.passengers[:idx], w.passengers[idx+1:]...)
	delete(w.passengerIdx, p.ID)
	for id, i := range w.passengerIdx {
		if i > idx {
			w.passengerIdx[id] = i - 1
		}
	}
}

// AddVehicle registers v. Vehicles are never removed from the world.
func (w *World) AddVehicle(v *Vehicle) {
	w.vehicles = append(w.vehicles, v)
}

// Vehicles returns the vehicle registry in registration order. Callers
// must not mutate the returned slice.
func (w *World) Vehicles() []*Vehicle { return w.vehicles }

// Passengers returns a snapshot of the passengers currently on the map,
// in registry order. The returned slice is safe to range over even while
// the caller removes passengers from the world mid-iteration.
func (w *World) Passengers() []*Passenger {
	out := make([]*Passenger, len(w.passengers))
	copy(out, w.passengers)
	return out
}

// NearbyPassengers returns, in registry order, the passengers whose
// source is within radiusM of center (haversine distance).
func (w *World) NearbyPassengers(center Point, radiusM float64) []*Passenger {
	var out []*Passenger
	for _, p := range w.passengers {
		if Haversine(center, p.Src) <= radiusM {
			out = append(out, p)
		}
	}
	return out
}

// AtLocation reports whether a and b are within thresholdM of each other.
func (w *World) AtLocation(a, b Point, thresholdM float64) bool {
	return Haversine(a, b) <= thresholdM
}

// SameCell reports whether a and b fall in the same grid cell, using
// GridCellSizeM as the cell edge length. It is an alternative to a pure
// distance threshold for the "vehicle reached the terminal" check in the
// tick engine (SPEC_FULL.md §9), grounded on the original implementation's
// Map.same_loc grid-equality predicate. If GridCellSizeM is unset (<= 0),
// SameCell falls back to exact coordinate equality.
func (w *World) SameCell(a, b Point) bool {
	if w.GridCellSizeM <= 0 {
		return a == b
	}
	ax := int((a.X - w.Bounds.MinX) / w.GridCellSizeM)
	ay := int((a.Y - w.Bounds.MinY) / w.GridCellSizeM)
	bx := int((b.X - w.Bounds.MinX) / w.GridCellSizeM)
	by := int((b.Y - w.Bounds.MinY) / w.GridCellSizeM)
	return ax == bx && ay == by
}

// enqueueTimeoutTicks computes the reclamation window for an ENQUEUED
// passenger claimed by a vehicle with the given speed (in the engine's
// current distance unit per tick) per SPEC_FULL.md / spec.md §4.2:
// max(60, (2*detectionRadiusM)/speed).
func enqueueTimeoutTicks(detectionRadiusM, speed float64) int64 {
	if speed <= 0 {
		return 60
	}
	window := (2 * detectionRadiusM) / speed
	if window < 60 {
		window = 60
	}
	return int64(window)
}

// CheckEnqueueTimeouts scans ENQUEUED passengers and resets to WAITING
// any whose claiming vehicle has held the claim longer than its timeout
// window, clearing the claim on both sides.
func (w *World) CheckEnqueueTimeouts(now int64, detectionRadiusM float64) {
	for _, p := range w.passengers {
		if p.Status != PassengerEnqueued {
			continue
		}
		v := w.findVehicle(p.ClaimedBy)
		if v == nil {
			continue
		}
		window := enqueueTimeoutTicks(detectionRadiusM, v.effectiveSpeedPerTick())
		if now-p.EnqueueTick > window {
			v.clearEnqueued(p.ID)
			p.Reset(now, v.CurrentPoint())
		}
	}
}

func (w *World) findVehicle(id string) *Vehicle {
	for _, v := range w.vehicles {
		if v.ID == id {
			return v
		}
	}
	return nil
}
