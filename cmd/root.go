// cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/brgz/tricycle-sim/sim"
)

var (
	configPath  string
	logLevel    string
	seedFlag    int64
	maxTimeFlag int64

	capacityFlag     int
	speedFlag        float64
	detectionRFlag   float64
	pickupRFlag      float64
	dropoffRFlag     float64
	totalVehiclesFlag   int
	totalTerminalsFlag  int
	totalPassengersFlag int
	schedulerFlag    string
	realisticFlag    bool
)

var rootCmd = &cobra.Command{
	Use:   "tricycle-sim",
	Short: "Frame-by-frame microsimulator for a shared-ride tricycle fleet",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation from a scenario file and print summary metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		logger := logrus.New()
		logger.SetLevel(level)

		cfg, err := LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cmd.Flags().Changed("seed") {
			cfg.Seed = seedFlag
		}
		if cmd.Flags().Changed("max-time") {
			cfg.MaxTime = maxTimeFlag
		}
		if cmd.Flags().Changed("capacity") {
			cfg.VehicleConfig.Capacity = capacityFlag
		}
		if cmd.Flags().Changed("speed") {
			cfg.VehicleConfig.Speed = speedFlag
		}
		if cmd.Flags().Changed("detection-radius-m") {
			cfg.DetectionRadiusM = detectionRFlag
		}
		if cmd.Flags().Changed("pickup-radius-m") {
			cfg.PickupRadiusM = pickupRFlag
		}
		if cmd.Flags().Changed("dropoff-radius-m") {
			cfg.DropoffRadiusM = dropoffRFlag
		}
		if cmd.Flags().Changed("total-vehicles") {
			cfg.TotalVehicles = totalVehiclesFlag
		}
		if cmd.Flags().Changed("total-terminals") {
			cfg.TotalTerminals = totalTerminalsFlag
		}
		if cmd.Flags().Changed("total-passengers") {
			cfg.TotalPassengers = totalPassengersFlag
		}
		if cmd.Flags().Changed("scheduler") {
			cfg.VehicleConfig.Scheduler = sim.SchedulerKind(schedulerFlag)
		}
		if cmd.Flags().Changed("realistic") {
			cfg.IsRealistic = realisticFlag
		}

		scenario, err := LoadScenario(configPath, cfg)
		if err != nil {
			return fmt.Errorf("load scenario: %w", err)
		}

		logger.WithFields(logrus.Fields{
			"seed":     cfg.Seed,
			"max_time": cfg.MaxTime,
			"vehicles": len(scenario.World.Vehicles()),
		}).Info("starting simulation")

		s, err := sim.NewSimulator(cfg, scenario.World, scenario.Terminals, scenario.Routes, logger)
		if err != nil {
			return fmt.Errorf("construct simulator: %w", err)
		}
		s.Spawner = scenario.Spawner

		result, err := s.Run(context.Background())
		if err != nil {
			return fmt.Errorf("run simulation: %w", err)
		}

		logger.WithFields(logrus.Fields{
			"end_time":        result.Metadata.EndTime,
			"completion_rate": result.CompletionRate(),
		}).Info("simulation complete")
		return nil
	},
}

// Execute runs the root command, exiting the process with status 1 on
// failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "path to a scenario YAML file (required)")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "log level (debug, info, warn, error)")
	runCmd.Flags().Int64Var(&seedFlag, "seed", 0, "override the scenario's seed")
	runCmd.Flags().Int64Var(&maxTimeFlag, "max-time", 0, "override the scenario's max_time")
	runCmd.Flags().IntVar(&capacityFlag, "capacity", 0, "override the scenario's vehicle capacity")
	runCmd.Flags().Float64Var(&speedFlag, "speed", 0, "override the scenario's vehicle speed (m/s in realistic mode)")
	runCmd.Flags().Float64Var(&detectionRFlag, "detection-radius-m", 0, "override the passenger detection radius")
	runCmd.Flags().Float64Var(&pickupRFlag, "pickup-radius-m", 0, "override the pickup radius")
	runCmd.Flags().Float64Var(&dropoffRFlag, "dropoff-radius-m", 0, "override the dropoff radius")
	runCmd.Flags().IntVar(&totalVehiclesFlag, "total-vehicles", 0, "override the scenario's total vehicle count")
	runCmd.Flags().IntVar(&totalTerminalsFlag, "total-terminals", 0, "override the scenario's total terminal count")
	runCmd.Flags().IntVar(&totalPassengersFlag, "total-passengers", 0, "override the scenario's total passenger count")
	runCmd.Flags().StringVar(&schedulerFlag, "scheduler", "", "override the scenario's scheduler kind (fifo, smart)")
	runCmd.Flags().BoolVar(&realisticFlag, "realistic", false, "override the scenario's realistic-mode flag")
	_ = runCmd.MarkFlagRequired("config")

	rootCmd.AddCommand(runCmd)
}
