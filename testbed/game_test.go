package testbed

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/spaghettifunk/formation/engine"
	"github.com/spaghettifunk/formation/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headlessConfig() *Config {
	config := DefaultConfig()
	config.Application.RealTime = false
	config.Application.LogLevel = "error"
	config.Application.FixedStep = 0.5
	return &config
}

func startGame(t *testing.T, config *Config, path string) *FormationGame {
	t.Helper()
	fg, err := NewFormationGame(config, path)
	require.NoError(t, err)
	require.NoError(t, fg.Boot())
	require.NoError(t, fg.Initialize())
	t.Cleanup(func() { _ = fg.Shutdown() })
	return fg
}

func TestFormationGameUnderEngine(t *testing.T) {
	config := headlessConfig()
	config.Application.MaxTicks = 14

	fg, err := NewFormationGame(config, "")
	require.NoError(t, err)
	e, err := engine.New(fg.Game)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	require.NoError(t, e.Run())

	assert.Equal(t, uint64(14), fg.World().Ticks())
	assert.Equal(t, uint64(14), fg.LastFrame().FrameNumber)
	// The player starts at x=-1 and moves 0.25 per tick, so it is past the
	// bound at the start of tick 13 and turns exactly once.
	assert.Equal(t, uint64(1), fg.state().bounces)
}

func TestRenderCopiesDirtySlots(t *testing.T) {
	fg := startGame(t, headlessConfig(), "")

	require.NoError(t, fg.Update(0.5))
	require.NoError(t, fg.Render(0.5))
	stats := fg.LastFrame()
	assert.Equal(t, 5, stats.CopiedSlots)
	assert.Equal(t, 2, stats.DrawsPerLayer[metadata.RenderLayerOpaque])
	assert.Equal(t, 3, stats.DrawsPerLayer[metadata.RenderLayerAlphaTested])
	// Every renderable draws the six indices of the ground quad.
	assert.Equal(t, uint64(30), stats.IndexCount)

	// Nothing moved since the last update, but the counters still have
	// frames left to copy.
	require.NoError(t, fg.Render(0.5))
	assert.Equal(t, 5, fg.LastFrame().CopiedSlots)
}

func TestNewFormationGameValidates(t *testing.T) {
	_, err := NewFormationGame(nil, "")
	assert.Error(t, err)

	config := headlessConfig()
	config.Scenario.JournalSize = -1
	_, err = NewFormationGame(config, "")
	assert.Error(t, err)
}

func TestHotReloadAppliesScenarioRules(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[application]\nhot_reload = true\n")
	config, err := LoadConfig(path)
	require.NoError(t, err)
	config.Application.LogLevel = "error"

	fg := startGame(t, config, path)
	require.NotNil(t, fg.state().watcher)

	require.NoError(t, os.WriteFile(path, []byte("[application]\nhot_reload = true\n\n[scenario]\nlane_bound = 3.0\n"), 0o644))
	require.Eventually(t, func() bool {
		if err := fg.Update(0); err != nil {
			return false
		}
		return fg.World().Rules().LaneBound == 3.0
	}, 5*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, fg.state().reloads, uint64(1))
}

func TestHotReloadIgnoresBrokenFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[application]\nhot_reload = true\n")
	config, err := LoadConfig(path)
	require.NoError(t, err)

	fg := startGame(t, config, path)
	fg.reload(writeConfig(t, t.TempDir(), "[scenario]\nlane_bound = -4.0\n"))
	assert.Equal(t, float32(1.8), fg.World().Rules().LaneBound)
	assert.Zero(t, fg.state().reloads)
}

type stubWatcher struct {
	changes chan string
	errors  chan error
	closed  bool
}

func newStubWatcher() *stubWatcher {
	return &stubWatcher{changes: make(chan string, 1), errors: make(chan error, 1)}
}

func (w *stubWatcher) Changes() <-chan string { return w.changes }
func (w *stubWatcher) Errors() <-chan error   { return w.errors }
func (w *stubWatcher) Path() string           { return "formation.toml" }
func (w *stubWatcher) Close() error {
	w.closed = true
	return nil
}

func TestWatchErrorsKeepRulesAndChanges(t *testing.T) {
	fg := startGame(t, headlessConfig(), "")
	watcher := newStubWatcher()
	fg.state().watcher = watcher

	watcher.errors <- errors.New("inotify queue overflow")
	require.NoError(t, fg.Update(0))
	assert.Equal(t, uint64(1), fg.state().watchErrors)
	assert.Equal(t, float32(1.8), fg.World().Rules().LaneBound)

	// An error and a change pending in the same tick are both handled.
	watcher.errors <- errors.New("inotify queue overflow")
	watcher.changes <- writeConfig(t, t.TempDir(), "[scenario]\nlane_bound = 2.2\n")
	require.NoError(t, fg.Update(0))
	assert.Equal(t, uint64(2), fg.state().watchErrors)
	assert.Equal(t, float32(2.2), fg.World().Rules().LaneBound)

	close(watcher.errors)
	close(watcher.changes)
	require.NoError(t, fg.Update(0))
	assert.Nil(t, fg.state().watcher)
}
