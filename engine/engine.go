package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/formation/engine/core"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// Upper bound on fixed steps run for a single real-time frame.
const maxStepsPerFrame = 5

type Engine struct {
	currentStage Stage
	gameInstance *Game
	events       *core.EventSystem
	quit         atomic.Bool
	clock        *core.Clock
	metrics      *core.Metrics
	lastTime     float64
	accumulator  float64
	sleep        func(time.Duration)
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("engine needs a game with an application config: %w", core.ErrInvalidConfig)
	}
	if g.FnUpdate == nil || g.FnRender == nil {
		return nil, fmt.Errorf("game must provide update and render callbacks: %w", core.ErrInvalidConfig)
	}
	if err := g.ApplicationConfig.Validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	if g.EventSystem == nil {
		g.EventSystem = core.NewEventSystem()
	}
	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		events:       g.EventSystem,
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		sleep:        time.Sleep,
	}, nil
}

// Initialize boots the game and then initializes it.
func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("initialize from stage %d: %w", e.currentStage, core.ErrEngineStage)
	}
	config := e.gameInstance.ApplicationConfig
	level, _ := core.ParseLogLevel(config.LogLevel)
	core.SetLogLevel(level)

	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)

	e.currentStage = EngineStageBooting
	if e.gameInstance.FnBoot != nil {
		if err := e.gameInstance.FnBoot(); err != nil {
			core.LogError("game boot failed: %s", err)
			return err
		}
	}
	e.currentStage = EngineStageBootComplete

	e.currentStage = EngineStageInitializing
	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			core.LogError("game initialize failed: %s", err)
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	core.LogInfo("%s initialized (fixed step %.4fs, %d frame resources)", config.Name, config.FixedStep, config.FrameResources)
	return nil
}

// Run drives the game until Shutdown is called, MaxTicks is reached or a
// callback fails. The game is torn down before Run returns.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("run from stage %d: %w", e.currentStage, core.ErrEngineStage)
	}
	config := e.gameInstance.ApplicationConfig

	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var runErr error
	for !e.quit.Load() {
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		frameStart := currentTime

		steps := 1
		if config.RealTime {
			e.accumulator += currentTime - e.lastTime
			steps = int(e.accumulator / config.FixedStep)
			e.accumulator -= float64(steps) * config.FixedStep
			// After a stall the backlog is dropped instead of replayed.
			if steps > maxStepsPerFrame {
				core.LogWarn("running %d ticks behind, skipping them", steps-maxStepsPerFrame)
				steps = maxStepsPerFrame
			}
		}

		for i := 0; i < steps && !e.quit.Load(); i++ {
			if err := e.Step(); err != nil {
				runErr = err
				e.quit.Store(true)
				break
			}
			if config.MaxTicks > 0 && e.metrics.Ticks() >= config.MaxTicks {
				core.LogInfo("reached %d ticks, stopping", config.MaxTicks)
				e.quit.Store(true)
			}
		}

		e.clock.Update()
		e.metrics.Update(e.clock.Elapsed() - frameStart)
		e.lastTime = currentTime

		if config.RealTime && !e.quit.Load() {
			// Give the remaining time of the step back to the OS.
			remaining := config.FixedStep - e.accumulator
			if remaining > 0 {
				e.sleep(time.Duration(remaining * float64(time.Second)))
			}
		}
	}

	if err := e.teardown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Step runs exactly one update and render with the fixed timestep.
func (e *Engine) Step() error {
	config := e.gameInstance.ApplicationConfig
	if err := e.gameInstance.FnUpdate(config.FixedStep); err != nil {
		core.LogError("game update failed, shutting down: %s", err)
		return err
	}
	if err := e.gameInstance.FnRender(config.FixedStep); err != nil {
		core.LogError("game render failed, shutting down: %s", err)
		return err
	}
	e.metrics.AddTick()

	if config.MetricsInterval > 0 && e.metrics.Ticks()%config.MetricsInterval == 0 {
		fps, frameTime := e.metrics.Frame()
		core.LogInfo("tick %d, FPS: %5.1f (%4.1fms)", e.metrics.Ticks(), fps, frameTime)
	}
	return nil
}

// Shutdown asks the loop to stop. Safe to call from another goroutine, also before Run.
func (e *Engine) Shutdown() error {
	e.quit.Store(true)
	return nil
}

func (e *Engine) teardown() error {
	e.currentStage = EngineStageShuttingDown
	e.clock.Stop()
	e.events.Unregister(core.EVENT_CODE_APPLICATION_QUIT, e)
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError("game shutdown failed: %s", err)
			return err
		}
	}
	core.LogInfo("%s shut down after %d ticks", e.gameInstance.ApplicationConfig.Name, e.metrics.Ticks())
	return nil
}

func (e *Engine) onEvent(listener interface{}, context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		_ = e.Shutdown()
		return true
	}
	return false
}

// Events is the bus shared with the game.
func (e *Engine) Events() *core.EventSystem {
	return e.events
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}
