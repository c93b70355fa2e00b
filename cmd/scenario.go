package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/brgz/tricycle-sim/sim"
)

// scenarioFile is the on-disk shape consumed by `tricycle-sim run
// --config`. Unlike sim.Config (which is the engine's internal,
// validated configuration struct), this format also carries the
// concrete entity placements that the out-of-scope scenario generator
// would otherwise have produced: bounds, routing backend, and explicit
// vehicle/terminal/passenger lists. Keeping entity placement here,
// outside the sim package, is what keeps "random scenario generator"
// out of the engine's scope while still shipping a runnable CLI.
type scenarioFile struct {
	sim.Config `yaml:",inline"`

	Bounds struct {
		MinX float64 `yaml:"min_x"`
		MinY float64 `yaml:"min_y"`
		MaxX float64 `yaml:"max_x"`
		MaxY float64 `yaml:"max_y"`
	} `yaml:"bounds"`

	GridCellSizeM float64 `yaml:"grid_cell_size_m"`

	Routing struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"routing"`

	Vehicles []vehicleSpec `yaml:"vehicles"`

	Terminals []terminalSpec `yaml:"terminals"`

	Passengers []passengerSpec `yaml:"passengers"`
}

type pointSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (p pointSpec) toPoint() sim.Point { return sim.Point{X: p.X, Y: p.Y} }

type vehicleSpec struct {
	ID        string      `yaml:"id"`
	Start     pointSpec   `yaml:"start"`
	IsRoaming bool        `yaml:"is_roaming"`
	RoamCycle []pointSpec `yaml:"roam_cycle"`
}

type terminalSpec struct {
	Location pointSpec `yaml:"location"`
	Capacity int       `yaml:"capacity"`
}

type passengerSpec struct {
	ID   string    `yaml:"id"`
	Src  pointSpec `yaml:"src"`
	Dest pointSpec `yaml:"dest"`
}

// Scenario is the assembled, ready-to-run set of Simulator dependencies
// produced from a scenarioFile.
type Scenario struct {
	World     *sim.World
	Terminals []*sim.Terminal
	Routes    *sim.RouteCache
	Spawner   *sim.PassengerSpawner
}

// LoadScenario reads path a second time (after LoadConfig has already
// parsed the engine-facing fields) and builds the World, Terminals,
// RouteCache and PassengerSpawner the Simulator needs to run.
func LoadScenario(path string, cfg sim.Config) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	var sf scenarioFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse scenario yaml: %w", err)
	}

	bounds := sim.Bounds{MinX: sf.Bounds.MinX, MinY: sf.Bounds.MinY, MaxX: sf.Bounds.MaxX, MaxY: sf.Bounds.MaxY}
	world := sim.NewWorld(bounds)
	world.GridCellSizeM = sf.GridCellSizeM

	var routingClient sim.RoutingClient
	if sf.Routing.BaseURL == "" {
		return nil, fmt.Errorf("routing.base_url is required")
	}
	routingClient = sim.NewHTTPRoutingClient(sf.Routing.BaseURL)
	routes := sim.NewRouteCache(routingClient)

	var scheduler sim.Scheduler
	switch cfg.VehicleConfig.Scheduler {
	case sim.SchedulerSmart:
		scheduler = sim.NewBruteForceScheduler(routes)
	default:
		scheduler = sim.FIFOScheduler{}
	}

	for _, vs := range sf.Vehicles {
		v := sim.NewVehicle(vs.ID, cfg.VehicleConfig.Capacity, cfg.VehicleConfig.Speed, cfg.VehicleConfig.UseMeters, vs.Start.toPoint(), 0, world, routes, scheduler)
		if vs.IsRoaming && len(vs.RoamCycle) > 0 {
			pts := make([]sim.Point, len(vs.RoamCycle))
			for i, p := range vs.RoamCycle {
				pts[i] = p.toPoint()
			}
			cycle, err := sim.NewCycle(pts)
			if err != nil {
				return nil, fmt.Errorf("vehicle %s roam cycle: %w", vs.ID, err)
			}
			v.RoamCycle = &cycle
			v.IsRoaming = true
			_ = v.SetStatus(sim.VehicleRoaming)
		}
		world.AddVehicle(v)
	}

	terminals := make([]*sim.Terminal, 0, len(sf.Terminals))
	for _, ts := range sf.Terminals {
		terminals = append(terminals, sim.NewTerminal(ts.Location.toPoint(), ts.Capacity))
	}

	numStart := int(float64(len(sf.Passengers)) * cfg.PassengerSpawnStartFraction)
	if numStart > len(sf.Passengers) {
		numStart = len(sf.Passengers)
	}
	for i := 0; i < numStart; i++ {
		ps := sf.Passengers[i]
		world.AddPassenger(sim.NewPassenger(ps.ID, ps.Src.toPoint(), ps.Dest.toPoint(), 0))
	}

	var spawner *sim.PassengerSpawner
	if rest := sf.Passengers[numStart:]; len(rest) > 0 {
		blueprints := make([]sim.PassengerBlueprint, len(rest))
		for i, ps := range rest {
			blueprints[i] = sim.PassengerBlueprint{ID: ps.ID, Src: ps.Src.toPoint(), Dest: ps.Dest.toPoint()}
		}
		spawner = sim.NewPassengerSpawner(blueprints, cfg.MaxTime, sim.NewPartitionedRNG(cfg.Seed))
	}

	return &Scenario{World: world, Terminals: terminals, Routes: routes, Spawner: spawner}, nil
}
