package sim

import "fmt"

// SchedulerKind selects the on-board scheduler implementation.
type SchedulerKind string

const (
	SchedulerFIFO  SchedulerKind = "fifo"
	SchedulerSmart SchedulerKind = "smart"
)

// VehicleConfig groups the physical and behavioral parameters shared by
// every vehicle in a run.
type VehicleConfig struct {
	Capacity  int           `yaml:"capacity"`
	Speed     float64       `yaml:"speed"`
	Scheduler SchedulerKind `yaml:"scheduler"`
	UseMeters bool          `yaml:"use_meters"`

	// SpeedJitterPct is parsed from the config file but not applied: no
	// code path reads it, and every vehicle is built with Speed unchanged.
	SpeedJitterPct float64 `yaml:"speed_jitter_pct"`
}

// Config is the full set of simulator construction parameters (SPEC_FULL.md §4.7).
type Config struct {
	TotalVehicles   int `yaml:"total_vehicles"`
	TotalTerminals  int `yaml:"total_terminals"`
	TotalPassengers int `yaml:"total_passengers"`

	RoadPassengerChance    float64 `yaml:"road_passenger_chance"`
	RoamingVehicleChance   float64 `yaml:"roaming_vehicle_chance"`
	PassengerSpawnStartFraction float64 `yaml:"passenger_spawn_start_fraction"`

	TerminalPassengerDistrib []float64 `yaml:"terminal_passenger_distrib"`
	TerminalVehicleDistrib   []float64 `yaml:"terminal_vehicle_distrib"`

	VehicleConfig VehicleConfig `yaml:"vehicle_config"`

	DetectionRadiusM float64 `yaml:"detection_radius_m"`
	PickupRadiusM    float64 `yaml:"pickup_radius_m"`
	DropoffRadiusM   float64 `yaml:"dropoff_radius_m"`

	UseFixedTerminals bool `yaml:"use_fixed_terminals"`
	UseFixedHotspots  bool `yaml:"use_fixed_hotspots"`

	IsRealistic bool `yaml:"is_realistic"`

	Bounds Bounds `yaml:"-"`

	MaxTime int64 `yaml:"max_time"`
	Seed    int64 `yaml:"seed"`

	// Identifier names this run for the metadata record (SPEC_FULL.md §9).
	// It has no effect on simulation behavior; callers that want the
	// original's run_id-style naming can populate it before NewSimulator.
	Identifier string `yaml:"identifier"`

	FixedTerminals []Point `yaml:"-"`
	FixedHotspots  []Point `yaml:"-"`

	CheckEnqueueTimeouts bool `yaml:"check_enqueue_timeouts"`
}

// DefaultConfig returns a Config with the proximity-threshold defaults
// from SPEC_FULL.md §4.7 and FIFO scheduling. Callers still need to set
// the population sizes, bounds and seed.
func DefaultConfig() Config {
	return Config{
		DetectionRadiusM:            100,
		PickupRadiusM:               2,
		DropoffRadiusM:              2,
		PassengerSpawnStartFraction: 1,
		CheckEnqueueTimeouts:        true,
		VehicleConfig: VehicleConfig{
			Capacity:  3,
			Speed:     5.556,
			Scheduler: SchedulerFIFO,
			UseMeters: true,
		},
	}
}

// Validate checks the configuration for internal consistency, returning
// ErrImproperConfig (wrapped with detail) on any violation. It must be
// called (and is called by NewSimulator) before a run starts; it never
// runs at tick time.
func (c Config) Validate() error {
	if c.TotalVehicles < 0 || c.TotalTerminals < 0 || c.TotalPassengers < 0 {
		return fmt.Errorf("population sizes must be non-negative: %w", ErrImproperConfig)
	}
	if c.RoadPassengerChance < 0 || c.RoadPassengerChance > 1 {
		return fmt.Errorf("road_passenger_chance must be in [0,1]: %w", ErrImproperConfig)
	}
	if c.RoamingVehicleChance < 0 || c.RoamingVehicleChance > 1 {
		return fmt.Errorf("roaming_vehicle_chance must be in [0,1]: %w", ErrImproperConfig)
	}
	if c.PassengerSpawnStartFraction <= 0 || c.PassengerSpawnStartFraction > 1 {
		return fmt.Errorf("passenger_spawn_start_fraction must be in (0,1]: %w", ErrImproperConfig)
	}
	if c.VehicleConfig.Capacity < 1 {
		return fmt.Errorf("vehicle_config.capacity must be >= 1: %w", ErrImproperConfig)
	}
	if c.VehicleConfig.Speed <= 0 {
		return fmt.Errorf("vehicle_config.speed must be > 0: %w", ErrImproperConfig)
	}
	if c.VehicleConfig.Scheduler != SchedulerFIFO && c.VehicleConfig.Scheduler != SchedulerSmart {
		return fmt.Errorf("vehicle_config.scheduler %q unrecognized: %w", c.VehicleConfig.Scheduler, ErrImproperConfig)
	}
	if c.DetectionRadiusM <= 0 || c.PickupRadiusM < 0 || c.DropoffRadiusM < 0 {
		return fmt.Errorf("proximity radii must be positive (detection) / non-negative: %w", ErrImproperConfig)
	}
	if c.MaxTime <= 0 {
		return fmt.Errorf("max_time must be > 0: %w", ErrImproperConfig)
	}
	if t := c.TerminalPassengerDistrib; len(t) > 0 && len(t) != c.TotalTerminals {
		return fmt.Errorf("terminal_passenger_distrib length %d != total_terminals %d: %w", len(t), c.TotalTerminals, ErrImproperConfig)
	}
	if len(c.TerminalVehicleDistrib) > 0 && len(c.TerminalVehicleDistrib) != c.TotalTerminals {
		return fmt.Errorf("terminal_vehicle_distrib length %d != total_terminals %d: %w", len(c.TerminalVehicleDistrib), c.TotalTerminals, ErrImproperConfig)
	}
	// Boundary invariant (spec.md §8): a fleet that may contain
	// non-roaming vehicles (roaming_vehicle_chance < 1) with zero
	// terminals is rejected, since those vehicles would have no terminal
	// to return to. An all-roaming fleet needs no terminal.
	if c.TotalTerminals == 0 && c.RoamingVehicleChance < 1 && c.TotalVehicles > 0 {
		return fmt.Errorf("non-roaming vehicles require at least one terminal: %w", ErrImproperConfig)
	}
	return nil
}
