package testbed

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/formation/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "formation.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	config := DefaultConfig()
	require.NoError(t, config.Validate())
	assert.Equal(t, ScenarioRules{LaneBound: 1.8, WrapThreshold: -12, WrapTarget: 12}, config.Scenario.Rules())
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[application]
fixed_step = 0.02
real_time = false

[scenario]
lane_bound = 2.5

[scenario.player]
type = "Eagle"
position = [0.0, 1.0, 0.0]

[scenario.background]
positions = [[0.0, 0.0, 0.0], [0.0, 0.0, 20.0]]
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0.02, config.Application.FixedStep)
	assert.False(t, config.Application.RealTime)
	assert.Equal(t, "Formation", config.Application.Name)

	assert.Equal(t, float32(2.5), config.Scenario.LaneBound)
	assert.Equal(t, float32(-12), config.Scenario.WrapThreshold)
	assert.Equal(t, "Eagle", config.Scenario.Player.Type)
	assert.Equal(t, [3]float32{0, 1, 0}, config.Scenario.Player.Position)
	assert.Equal(t, [3]float32{0.5, 0, 0}, config.Scenario.Player.Velocity)
	assert.Equal(t, [3]float32{0, 0, 20}, config.Scenario.Background.Positions[1])
	assert.Equal(t, float32(10), config.Scenario.Background.TexScale)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, fs.ErrNotExist)

	cases := map[string]string{
		"unknown key":       "[scenario]\nlane_width = 3.0\n",
		"bad bound":         "[scenario]\nlane_bound = -1.0\n",
		"inverted wrap":     "[scenario]\nwrap_threshold = 5.0\nwrap_target = 5.0\n",
		"bad aircraft":      "[scenario.left_escort]\ntype = \"Zeppelin\"\n",
		"bad journal":       "[scenario]\njournal_size = 0\n",
		"bad fixed step":    "[application]\nfixed_step = 0.0\n",
		"bad log level":     "[application]\nlog_level = \"chatty\"\n",
		"no frame resource": "[application]\nframe_resources = 0\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, t.TempDir(), content))
			assert.ErrorIs(t, err, core.ErrInvalidConfig)
		})
	}
}

func TestParseAircraftType(t *testing.T) {
	a, err := ParseAircraftType("Raptor")
	require.NoError(t, err)
	assert.Equal(t, AircraftRaptor, a)
	assert.Equal(t, RaptorMaterialName, a.Material())

	a, err = ParseAircraftType("eagle")
	require.NoError(t, err)
	assert.Equal(t, EagleMaterialName, a.Material())
	assert.Equal(t, "Eagle", a.String())

	_, err = ParseAircraftType("")
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}
