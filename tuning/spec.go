// Package tuning loads YAML presets for the demo world and car. Presets are
// embedded so the defaults always load, and read from disk first so edits
// take effect without rebuilding.
package tuning

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// CarSpec tunes a spawned car.
type CarSpec struct {
	Name         string  `yaml:"name"`
	Scale        float64 `yaml:"scale"`
	SpringHertz  float64 `yaml:"spring_hertz"`
	DampingRatio float64 `yaml:"damping_ratio"`
	MaxTorque    float64 `yaml:"max_torque"`
	DriveSpeed   float64 `yaml:"drive_speed"`
}

// WorldSpec tunes the demo world.
type WorldSpec struct {
	GravityY           float64 `yaml:"gravity_y"`
	SleepTimeThreshold float64 `yaml:"sleep_time_threshold"`
	Iterations         int     `yaml:"iterations"`
}

// LoadSpec reads and unmarshals a named preset file.
func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("tuning: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("tuning: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LoadCarSpec loads the car preset.
func LoadCarSpec() (CarSpec, error) {
	return LoadSpec[CarSpec]("car.yaml")
}

// LoadWorldSpec loads the world preset.
func LoadWorldSpec() (WorldSpec, error) {
	return LoadSpec[WorldSpec]("world.yaml")
}
