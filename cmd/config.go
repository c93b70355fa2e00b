package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/brgz/tricycle-sim/sim"
)

// LoadConfig reads a simulator Config from a YAML file, filling in
// DefaultConfig's values for anything the file omits.
func LoadConfig(path string) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config yaml: %w", err)
	}
	return cfg, nil
}
