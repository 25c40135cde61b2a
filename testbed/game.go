package testbed

import (
	"fmt"

	"github.com/spaghettifunk/formation/engine"
	"github.com/spaghettifunk/formation/engine/assets"
	"github.com/spaghettifunk/formation/engine/core"
	"github.com/spaghettifunk/formation/engine/renderer"
	"github.com/spaghettifunk/formation/engine/renderer/metadata"
	"github.com/spaghettifunk/formation/engine/systems"
)

type FormationGame struct {
	*engine.Game
	config     *Config
	configPath string
}

type gameState struct {
	systems  *systems.SystemManager
	events   *core.EventSystem
	world    *World
	renderer *renderer.Renderer
	watcher  configWatcher

	lastFrame renderer.FrameStats
	bounces   uint64
	wraps     uint64
	reloads   uint64
	// Watch errors seen since boot.
	watchErrors uint64
}

// configWatcher is the part of assets.ConfigWatcher the game polls each tick.
type configWatcher interface {
	Changes() <-chan string
	Errors() <-chan error
	Path() string
	Close() error
}

// NewFormationGame wires the formation scenario into engine callbacks.
// configPath is only used for hot reload and may be empty.
func NewFormationGame(config *Config, configPath string) (*FormationGame, error) {
	if config == nil {
		return nil, fmt.Errorf("formation game needs a config: %w", core.ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	fg := &FormationGame{
		Game: &engine.Game{
			ApplicationConfig: &config.Application,
			EventSystem:       core.NewEventSystem(),
			State:             &gameState{},
		},
		config:     config,
		configPath: configPath,
	}

	fg.FnBoot = fg.Boot
	fg.FnInitialize = fg.Initialize
	fg.FnUpdate = fg.Update
	fg.FnRender = fg.Render
	fg.FnShutdown = fg.Shutdown

	return fg, nil
}

func (g *FormationGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *FormationGame) Boot() error {
	core.LogInfo("booting %s...", g.ApplicationConfig.Name)
	state := g.state()

	sm, err := systems.NewSystemManager(g.ApplicationConfig.FrameResources)
	if err != nil {
		return err
	}
	state.systems = sm
	state.events = g.EventSystem

	state.events.Register(core.EVENT_CODE_FORMATION_BOUNCED, g, g.onScenarioEvent)
	state.events.Register(core.EVENT_CODE_BACKGROUND_WRAPPED, g, g.onScenarioEvent)
	state.events.Register(core.EVENT_CODE_CONFIG_RELOADED, g, g.onConfigReloaded)

	return registerBuiltins(sm)
}

func (g *FormationGame) Initialize() error {
	core.LogInfo("initializing formation scenario...")
	state := g.state()

	world, err := NewWorld(state.systems, state.events, g.config.Scenario)
	if err != nil {
		return err
	}
	state.world = world

	materials := state.systems.MaterialSystem
	r, err := renderer.New(&renderer.NullBackend{}, state.systems.RenderableSystem.FrameResourceCount(), func(h metadata.MaterialHandle) uint32 {
		if m := materials.Get(h); m != nil {
			return m.MatCBIndex
		}
		return metadata.InvalidID
	}, state.systems.MeshSystem)
	if err != nil {
		return err
	}
	state.renderer = r

	if g.ApplicationConfig.HotReload && g.configPath != "" {
		watcher, err := assets.NewConfigWatcher(g.configPath)
		if err != nil {
			core.LogWarn("hot reload disabled, cannot watch %s: %s", g.configPath, err)
		} else {
			state.watcher = watcher
			core.LogInfo("watching %s for scenario changes", watcher.Path())
		}
	}
	return nil
}

func (g *FormationGame) Update(deltaTime float64) error {
	g.applyPendingReload()
	return g.state().world.Tick(deltaTime)
}

func (g *FormationGame) Render(deltaTime float64) error {
	state := g.state()
	stats, err := state.renderer.DrawFrame(state.systems.RenderableSystem, deltaTime)
	if err != nil {
		return err
	}
	state.lastFrame = stats
	return nil
}

func (g *FormationGame) Shutdown() error {
	state := g.state()
	core.LogInfo("shutting down formation scenario (%d bounces, %d wraps, %d reloads)",
		state.bounces, state.wraps, state.reloads)
	if state.watcher != nil {
		if err := state.watcher.Close(); err != nil {
			core.LogWarn("closing config watcher: %s", err)
		}
		state.watcher = nil
	}
	if state.renderer != nil {
		if err := state.renderer.Shutdown(); err != nil {
			return err
		}
	}
	if state.events != nil {
		state.events.Unregister(core.EVENT_CODE_FORMATION_BOUNCED, g)
		state.events.Unregister(core.EVENT_CODE_BACKGROUND_WRAPPED, g)
		state.events.Unregister(core.EVENT_CODE_CONFIG_RELOADED, g)
	}
	if state.systems != nil {
		return state.systems.Shutdown()
	}
	return nil
}

// applyPendingReload picks up a changed config file without blocking. A file
// that fails to load or validate leaves the running rules untouched, and so
// does a watch error.
func (g *FormationGame) applyPendingReload() {
	state := g.state()
	for state.watcher != nil {
		select {
		case err, ok := <-state.watcher.Errors():
			if !ok {
				state.watcher = nil
				return
			}
			state.watchErrors++
			core.LogWarn("config watcher failed, keeping current rules: %s", err)
		case path, ok := <-state.watcher.Changes():
			if !ok {
				state.watcher = nil
				return
			}
			g.reload(path)
		default:
			return
		}
	}
}

func (g *FormationGame) reload(path string) {
	state := g.state()
	config, err := LoadConfig(path)
	if err != nil {
		core.LogWarn("ignoring config change: %s", err)
		return
	}
	if err := state.world.ApplyRules(config.Scenario.Rules()); err != nil {
		core.LogWarn("ignoring config change: %s", err)
		return
	}
	g.config.Scenario = config.Scenario
	state.events.Fire(core.EventContext{Type: core.EVENT_CODE_CONFIG_RELOADED, Data: config.Scenario.Rules()})
}

func (g *FormationGame) onScenarioEvent(listener interface{}, data core.EventContext) bool {
	state := g.state()
	switch data.Type {
	case core.EVENT_CODE_FORMATION_BOUNCED:
		state.bounces++
	case core.EVENT_CODE_BACKGROUND_WRAPPED:
		state.wraps++
	}
	// Let other listeners see it too.
	return false
}

func (g *FormationGame) onConfigReloaded(listener interface{}, data core.EventContext) bool {
	g.state().reloads++
	return false
}

// World is nil before Initialize.
func (g *FormationGame) World() *World {
	return g.state().world
}

// LastFrame reports what the most recent Render submitted.
func (g *FormationGame) LastFrame() renderer.FrameStats {
	return g.state().lastFrame
}
