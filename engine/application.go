package engine

import (
	"fmt"

	"github.com/spaghettifunk/formation/engine/core"
)

type ApplicationConfig struct {
	// The application name, used in log lines.
	Name     string `toml:"name"`
	LogLevel string `toml:"log_level"`
	// Simulation timestep in seconds.
	FixedStep float64 `toml:"fixed_step"`
	// Number of ticks to run before stopping on its own. 0 runs until Shutdown.
	MaxTicks uint64 `toml:"max_ticks"`
	// Pace ticks against the wall clock instead of running them back to back.
	RealTime bool `toml:"real_time"`
	// Number of buffered frame resources the renderer cycles through.
	FrameResources uint8 `toml:"frame_resources"`
	// Watch the configuration file and apply scenario changes while running.
	HotReload bool `toml:"hot_reload"`
	// Log a metrics line every this many ticks. 0 disables it.
	MetricsInterval uint64 `toml:"metrics_interval"`
}

func DefaultApplicationConfig() ApplicationConfig {
	return ApplicationConfig{
		Name:            "Formation",
		LogLevel:        "info",
		FixedStep:       1.0 / 60.0,
		MaxTicks:        0,
		RealTime:        true,
		FrameResources:  3,
		HotReload:       false,
		MetricsInterval: 600,
	}
}

// Validate checks the values the engine loop relies on.
func (c *ApplicationConfig) Validate() error {
	if c.FixedStep <= 0 {
		return fmt.Errorf("application.fixed_step must be > 0, got %f: %w", c.FixedStep, core.ErrInvalidConfig)
	}
	if c.FrameResources == 0 {
		return fmt.Errorf("application.frame_resources must be > 0: %w", core.ErrInvalidConfig)
	}
	if _, err := core.ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("application.log_level: %w", err)
	}
	return nil
}
