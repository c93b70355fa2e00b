package sim

// RunMetadata captures the configuration a run was executed with, stored
// alongside its results so a RunResult is self-describing without its
// originating Config (SPEC_FULL.md §6). The field set mirrors what the
// original's per-run metadata.json held: identifier, seed, max-time,
// counts, probabilities, hotspot count, scheduler kind, realistic flag, a
// vehicle-config subset, end-time, elapsed wall time and lastActivityTime.
type RunMetadata struct {
	Identifier string `json:"identifier"`

	Seed    int64 `json:"seed"`
	MaxTime int64 `json:"max_time"`
	EndTime int64 `json:"end_time"`

	TotalVehicles   int `json:"total_vehicles"`
	TotalTerminals  int `json:"total_terminals"`
	TotalPassengers int `json:"total_passengers"`
	HotspotsCount   int `json:"hotspots_count"`

	RoadPassengerChance  float64 `json:"road_passenger_chance"`
	RoamingVehicleChance float64 `json:"roaming_vehicle_chance"`

	Scheduler   SchedulerKind `json:"scheduler"`
	IsRealistic bool          `json:"is_realistic"`
	Capacity    int           `json:"capacity"`
	Speed       float64       `json:"speed"`

	DetectionRadiusM float64 `json:"detection_radius_m"`
	PickupRadiusM    float64 `json:"pickup_radius_m"`
	DropoffRadiusM   float64 `json:"dropoff_radius_m"`

	// ElapsedWallTimeSeconds is the wall-clock duration of the Run call,
	// not a simulated quantity; it varies run to run even at a fixed seed.
	ElapsedWallTimeSeconds float64 `json:"elapsed_wall_time_seconds"`

	// LastActivityTime is the shared, fleet-wide tick of the last offload
	// event observed during the run, plus one tick advance added after the
	// tick loop ends, used as the basis for every vehicle's waiting-time
	// counter (spec.md §6).
	LastActivityTime int64 `json:"last_activity_time"`
}

// VehicleSummary is the per-vehicle slice of a RunResult's output.
type VehicleSummary struct {
	ID                       string  `json:"id"`
	Status                   string  `json:"status"`
	CreateTick               int64   `json:"create_tick"`
	DeathTick                int64   `json:"death_tick"`
	TotalDistanceM           float64 `json:"total_distance_m"`
	TotalProductiveDistanceM float64 `json:"total_productive_distance_m"`
	WaitingTime              float64 `json:"waiting_time"`
	EventCount               int     `json:"event_count"`
}

// PassengerSummary is the per-passenger slice of a RunResult's output.
type PassengerSummary struct {
	ID             string  `json:"id"`
	Status         string  `json:"status"`
	CreateTick     int64   `json:"create_tick"`
	PickupTick     int64   `json:"pickup_tick"`
	CompletionTick int64   `json:"completion_tick"`
	ClaimedBy      string  `json:"claimed_by"`
	WaitTicks      int64   `json:"wait_ticks"`
	TripTicks      int64   `json:"trip_ticks"`
}

// RunResult is the complete output of a single simulation run: the
// configuration it ran under, plus the full population's final state and
// event history.
type RunResult struct {
	Metadata   RunMetadata
	Vehicles   []*Vehicle
	Passengers []*Passenger
}

// VehicleSummaries flattens Vehicles into the serializable summary form.
func (r *RunResult) VehicleSummaries() []VehicleSummary {
	out := make([]VehicleSummary, 0, len(r.Vehicles))
	for _, v := range r.Vehicles {
		out = append(out, VehicleSummary{
			ID:                       v.ID,
			Status:                   v.Status.String(),
			CreateTick:               v.CreateTick,
			DeathTick:                v.DeathTick,
			TotalDistanceM:           v.TotalDistanceM,
			TotalProductiveDistanceM: v.TotalProductiveDistanceM,
			WaitingTime:              v.WaitingTime,
			EventCount:               v.Log.Len(),
		})
	}
	return out
}

// PassengerSummaries flattens Passengers into the serializable summary
// form. WaitTicks is the time from appearance to pickup; TripTicks is
// pickup to completion. Both are -1 when the relevant tick hasn't
// happened.
func (r *RunResult) PassengerSummaries() []PassengerSummary {
	out := make([]PassengerSummary, 0, len(r.Passengers))
	for _, p := range r.Passengers {
		wait := int64(-1)
		if p.PickupTick >= 0 {
			wait = p.PickupTick - p.CreateTick
		}
		trip := int64(-1)
		if p.CompletionTick >= 0 && p.PickupTick >= 0 {
			trip = p.CompletionTick - p.PickupTick
		}
		out = append(out, PassengerSummary{
			ID:             p.ID,
			Status:         p.Status.String(),
			CreateTick:     p.CreateTick,
			PickupTick:     p.PickupTick,
			CompletionTick: p.CompletionTick,
			ClaimedBy:      p.ClaimedBy,
			WaitTicks:      wait,
			TripTicks:      trip,
		})
	}
	return out
}

// CompletionRate returns the fraction of tracked passengers that reached
// COMPLETED by the end of the run.
func (r *RunResult) CompletionRate() float64 {
	if len(r.Passengers) == 0 {
		return 0
	}
	var completed int
	for _, p := range r.Passengers {
		if p.Status == PassengerCompleted {
			completed++
		}
	}
	return float64(completed) / float64(len(r.Passengers))
}
