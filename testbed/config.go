package testbed

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/formation/engine"
	"github.com/spaghettifunk/formation/engine/core"
	"github.com/spaghettifunk/formation/engine/math"
)

// Config is the content of formation.toml.
type Config struct {
	Application engine.ApplicationConfig `toml:"application"`
	Scenario    ScenarioConfig           `toml:"scenario"`
}

type AircraftConfig struct {
	Type     string     `toml:"type"`
	Position [3]float32 `toml:"position"`
	Velocity [3]float32 `toml:"velocity"`
	Scale    [3]float32 `toml:"scale"`
}

type BackgroundConfig struct {
	// Spawn point of each of the two background planes.
	Positions [BackgroundCount][3]float32 `toml:"positions"`
	Velocity  [3]float32                  `toml:"velocity"`
	Scale     [3]float32                  `toml:"scale"`
	// Uniform scale applied to the texture coordinates.
	TexScale float32 `toml:"tex_scale"`
}

type ScenarioConfig struct {
	LaneBound     float32 `toml:"lane_bound"`
	WrapThreshold float32 `toml:"wrap_threshold"`
	WrapTarget    float32 `toml:"wrap_target"`
	// Number of scenario events kept in the journal.
	JournalSize int `toml:"journal_size"`

	Player      AircraftConfig   `toml:"player"`
	LeftEscort  AircraftConfig   `toml:"left_escort"`
	RightEscort AircraftConfig   `toml:"right_escort"`
	Background  BackgroundConfig `toml:"background"`
}

// ScenarioRules are the parts of the scenario that can change while running.
type ScenarioRules struct {
	LaneBound     float32
	WrapThreshold float32
	WrapTarget    float32
}

func DefaultConfig() Config {
	return Config{
		Application: engine.DefaultApplicationConfig(),
		Scenario:    DefaultScenarioConfig(),
	}
}

func DefaultScenarioConfig() ScenarioConfig {
	aircraftScale := [3]float32{0.01, 0.01, 0.01}
	cruise := [3]float32{0.5, 0, 0}
	return ScenarioConfig{
		LaneBound:     1.8,
		WrapThreshold: -12,
		WrapTarget:    12,
		JournalSize:   64,
		Player: AircraftConfig{
			Type:     AircraftRaptor.String(),
			Position: [3]float32{-1, 1, -1},
			Velocity: cruise,
			Scale:    aircraftScale,
		},
		LeftEscort: AircraftConfig{
			Type:     AircraftEagle.String(),
			Position: [3]float32{-1.25, 1, -1.25},
			Velocity: cruise,
			Scale:    aircraftScale,
		},
		RightEscort: AircraftConfig{
			Type:     AircraftEagle.String(),
			Position: [3]float32{-0.75, 1, -1.25},
			Velocity: cruise,
			Scale:    aircraftScale,
		},
		Background: BackgroundConfig{
			Positions: [BackgroundCount][3]float32{{0, 0, 0}, {0, 0, 12}},
			Velocity:  [3]float32{0, 0, -0.5},
			Scale:     [3]float32{1, 1, 1},
			TexScale:  10,
		},
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig. Keys that do not map to a
// field are rejected.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	config := DefaultConfig()
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&config); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%s: %s: %w", path, strict.String(), core.ErrInvalidConfig)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &config, nil
}

func (c *Config) Validate() error {
	if err := c.Application.Validate(); err != nil {
		return err
	}
	return c.Scenario.Validate()
}

func (s *ScenarioConfig) Validate() error {
	if err := s.Rules().Validate(); err != nil {
		return err
	}
	if s.JournalSize <= 0 {
		return fmt.Errorf("scenario.journal_size must be > 0: %w", core.ErrInvalidConfig)
	}
	for name, a := range map[string]AircraftConfig{
		"player":       s.Player,
		"left_escort":  s.LeftEscort,
		"right_escort": s.RightEscort,
	} {
		if _, err := ParseAircraftType(a.Type); err != nil {
			return fmt.Errorf("scenario.%s.type: %w", name, err)
		}
	}
	return nil
}

func (s *ScenarioConfig) Rules() ScenarioRules {
	return ScenarioRules{
		LaneBound:     s.LaneBound,
		WrapThreshold: s.WrapThreshold,
		WrapTarget:    s.WrapTarget,
	}
}

func (r ScenarioRules) Validate() error {
	if r.LaneBound <= 0 {
		return fmt.Errorf("scenario.lane_bound must be > 0, got %f: %w", r.LaneBound, core.ErrInvalidConfig)
	}
	if r.WrapTarget <= r.WrapThreshold {
		return fmt.Errorf("scenario.wrap_target (%f) must be above wrap_threshold (%f): %w",
			r.WrapTarget, r.WrapThreshold, core.ErrInvalidConfig)
	}
	return nil
}

func vec3(a [3]float32) math.Vec3 {
	return math.NewVec3FromArray(a)
}
