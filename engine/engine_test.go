package engine

import (
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/spaghettifunk/formation/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	core.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

type countingGame struct {
	boots, inits, updates, renders, shutdowns int
	deltas                                    []float64
	failUpdateAt                              int
}

func (c *countingGame) game(config ApplicationConfig) *Game {
	return &Game{
		ApplicationConfig: &config,
		FnBoot:            func() error { c.boots++; return nil },
		FnInitialize:      func() error { c.inits++; return nil },
		FnUpdate: func(dt float64) error {
			c.updates++
			c.deltas = append(c.deltas, dt)
			if c.failUpdateAt > 0 && c.updates == c.failUpdateAt {
				return errors.New("boom")
			}
			return nil
		},
		FnRender:   func(float64) error { c.renders++; return nil },
		FnShutdown: func() error { c.shutdowns++; return nil },
	}
}

func headlessConfig(ticks uint64) ApplicationConfig {
	cfg := DefaultApplicationConfig()
	cfg.RealTime = false
	cfg.MaxTicks = ticks
	cfg.FixedStep = 0.25
	cfg.LogLevel = "error"
	return cfg
}

func TestRunStopsAfterMaxTicks(t *testing.T) {
	cg := &countingGame{}
	e, err := New(cg.game(headlessConfig(5)))
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	assert.Equal(t, EngineStageInitialized, e.Stage())

	require.NoError(t, e.Run())
	assert.Equal(t, 1, cg.boots)
	assert.Equal(t, 1, cg.inits)
	assert.Equal(t, 5, cg.updates)
	assert.Equal(t, 5, cg.renders)
	assert.Equal(t, 1, cg.shutdowns)
	assert.Equal(t, []float64{0.25, 0.25, 0.25, 0.25, 0.25}, cg.deltas)
	assert.Equal(t, uint64(5), e.Metrics().Ticks())
	assert.Equal(t, EngineStageShuttingDown, e.Stage())
}

func TestRunReturnsUpdateError(t *testing.T) {
	cg := &countingGame{failUpdateAt: 3}
	e, err := New(cg.game(headlessConfig(0)))
	require.NoError(t, err)
	require.NoError(t, e.Initialize())

	assert.EqualError(t, e.Run(), "boom")
	assert.Equal(t, 3, cg.updates)
	assert.Equal(t, 2, cg.renders)
	assert.Equal(t, 1, cg.shutdowns)
}

func TestShutdownBeforeRun(t *testing.T) {
	cg := &countingGame{}
	e, err := New(cg.game(headlessConfig(0)))
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	require.NoError(t, e.Shutdown())

	require.NoError(t, e.Run())
	assert.Zero(t, cg.updates)
	assert.Equal(t, 1, cg.shutdowns)
}

func TestStageOrdering(t *testing.T) {
	cg := &countingGame{}
	e, err := New(cg.game(headlessConfig(1)))
	require.NoError(t, err)

	assert.ErrorIs(t, e.Run(), core.ErrEngineStage)
	require.NoError(t, e.Initialize())
	assert.ErrorIs(t, e.Initialize(), core.ErrEngineStage)
}

func TestStepRunsOneTick(t *testing.T) {
	cg := &countingGame{}
	e, err := New(cg.game(headlessConfig(0)))
	require.NoError(t, err)
	require.NoError(t, e.Step())
	require.NoError(t, e.Step())
	assert.Equal(t, 2, cg.updates)
	assert.Equal(t, uint64(2), e.Metrics().Ticks())
}

func TestNewValidatesConfig(t *testing.T) {
	cg := &countingGame{}

	bad := headlessConfig(0)
	bad.FixedStep = 0
	_, err := New(cg.game(bad))
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	bad = headlessConfig(0)
	bad.FrameResources = 0
	_, err = New(cg.game(bad))
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	bad = headlessConfig(0)
	bad.LogLevel = "chatty"
	_, err = New(cg.game(bad))
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	_, err = New(nil)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	g := cg.game(headlessConfig(0))
	g.FnRender = nil
	_, err = New(g)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestRealTimeRunPacesWithSleep(t *testing.T) {
	cg := &countingGame{}
	cfg := headlessConfig(3)
	cfg.RealTime = true
	cfg.FixedStep = 0.001
	e, err := New(cg.game(cfg))
	require.NoError(t, err)
	require.NoError(t, e.Initialize())

	require.NoError(t, e.Run())
	assert.Equal(t, 3, cg.updates)
}

func TestQuitEventStopsRun(t *testing.T) {
	cg := &countingGame{}
	g := cg.game(headlessConfig(0))
	e, err := New(g)
	require.NoError(t, err)
	require.Same(t, g.EventSystem, e.Events())
	require.NoError(t, e.Initialize())

	update := g.FnUpdate
	g.FnUpdate = func(dt float64) error {
		if err := update(dt); err != nil {
			return err
		}
		if cg.updates == 3 {
			g.EventSystem.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		}
		return nil
	}

	require.NoError(t, e.Run())
	assert.Equal(t, 3, cg.updates)
	assert.Equal(t, 3, cg.renders)
	assert.Equal(t, 1, cg.shutdowns)

	// The engine no longer listens once it has shut down.
	assert.False(t, g.EventSystem.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT}))
}

func TestRealTimeRunSkipsBacklogAfterStall(t *testing.T) {
	cg := &countingGame{}
	cfg := headlessConfig(30)
	cfg.RealTime = true
	cfg.FixedStep = 0.1
	g := cg.game(cfg)

	now := time.Unix(0, 0)
	e, err := New(g)
	require.NoError(t, err)
	e.clock = core.NewClockWithSource(func() time.Time { return now })

	var perFrame []int
	frameUpdates := 0
	e.sleep = func(d time.Duration) {
		perFrame = append(perFrame, frameUpdates)
		frameUpdates = 0
		if d < time.Millisecond {
			d = time.Millisecond
		}
		now = now.Add(d)
	}
	update := g.FnUpdate
	g.FnUpdate = func(dt float64) error {
		frameUpdates++
		if cg.updates == 2 {
			// The process was suspended for ten seconds.
			now = now.Add(10 * time.Second)
		}
		return update(dt)
	}

	require.NoError(t, e.Initialize())
	require.NoError(t, e.Run())
	assert.Equal(t, 30, cg.updates)
	require.NotEmpty(t, perFrame)
	for i, n := range perFrame {
		assert.LessOrEqual(t, n, maxStepsPerFrame, "frame %d", i)
	}
	assert.Contains(t, perFrame, maxStepsPerFrame)
}
