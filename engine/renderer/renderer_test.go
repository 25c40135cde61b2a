package renderer

import (
	"errors"
	"io"
	"os"
	"testing"

	"github.com/spaghettifunk/formation/engine/core"
	"github.com/spaghettifunk/formation/engine/math"
	"github.com/spaghettifunk/formation/engine/renderer/metadata"
	"github.com/spaghettifunk/formation/engine/systems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	core.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

func newSlots(t *testing.T, frames uint8) *systems.RenderableSystem {
	t.Helper()
	rs, err := systems.NewRenderableSystem(&systems.RenderableSystemConfig{FrameResourceCount: frames})
	require.NoError(t, err)
	return rs
}

func TestDrawFrameConsumesDirtyCounter(t *testing.T) {
	slots := newSlots(t, 3)
	idx := slots.Allocate(2, 0, math.NewMat4Translation(math.NewVec3(1, 2, 3)))

	backend := &NullBackend{}
	r, err := New(backend, 3, nil, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		stats, err := r.DrawFrame(slots, 1.0/60.0)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.CopiedSlots, "frame %d", i)
	}
	assert.Equal(t, uint8(0), slots.Slot(idx).NumFramesDirty)

	// Every frame resource received the constants exactly once.
	for i := uint8(0); i < r.FrameResourceCount(); i++ {
		cb := r.FrameResource(i).ObjectCB[idx]
		assert.Equal(t, float32(1), cb.World[12])
		assert.Equal(t, uint32(2), cb.MaterialIndex)
	}

	stats, err := r.DrawFrame(slots, 1.0/60.0)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.CopiedSlots)
	assert.Equal(t, 1, stats.DrawsPerLayer[metadata.RenderLayerOpaque])
	assert.Equal(t, uint64(4), backend.Frames)
	assert.Equal(t, uint64(4), backend.Draws[metadata.RenderLayerOpaque])
}

func TestDrawFrameSeesNewTransformAfterMarkDirty(t *testing.T) {
	slots := newSlots(t, 2)
	idx := slots.Allocate(0, 0, math.NewMat4Identity())
	r, err := New(nil, 2, func(metadata.MaterialHandle) uint32 { return 9 }, nil)
	require.NoError(t, err)

	_, _ = r.DrawFrame(slots, 0)
	_, _ = r.DrawFrame(slots, 0)

	slot := slots.Slot(idx)
	slot.World = math.NewMat4Translation(math.NewVec3(5, 0, 0))
	require.NoError(t, slots.MarkDirty(idx))

	stats, err := r.DrawFrame(slots, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CopiedSlots)
	cb := r.FrameResource(stats.FrameIndex).ObjectCB[idx]
	assert.Equal(t, float32(5), cb.World[12])
	assert.Equal(t, uint32(9), cb.MaterialIndex)
	assert.Equal(t, uint8(1), slot.NumFramesDirty)
}

type failingBackend struct {
	NullBackend
}

func (f *failingBackend) BeginFrame(uint8, float64) error {
	return errors.New("device lost")
}

func TestDrawFramePropagatesBackendErrors(t *testing.T) {
	r, err := New(&failingBackend{}, 1, nil, nil)
	require.NoError(t, err)
	_, err = r.DrawFrame(newSlots(t, 1), 0)
	assert.EqualError(t, err, "device lost")
}

func TestNewRejectsZeroFrames(t *testing.T) {
	_, err := New(nil, 0, nil, nil)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
	assert.Nil(t, (&Renderer{}).FrameResource(0))
}

func TestDrawFrameResolvesDrawArgs(t *testing.T) {
	meshes := systems.NewMeshSystem()
	quad, err := meshes.Register("groundGeo", map[string]metadata.Submesh{
		"ground": {IndexCount: 6, StartIndexLocation: 12},
	})
	require.NoError(t, err)

	slots := newSlots(t, 1)
	ground := slots.Slot(slots.Allocate(0, quad, math.NewMat4Identity()))
	ground.Submesh = "ground"
	slots.Slot(slots.Allocate(0, quad, math.NewMat4Identity())).Submesh = "ground"

	backend := &NullBackend{}
	r, err := New(backend, 1, nil, meshes)
	require.NoError(t, err)

	stats, err := r.DrawFrame(slots, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), stats.IndexCount)
	assert.Equal(t, uint64(12), backend.Indices[metadata.RenderLayerOpaque])

	ground.Submesh = "sky"
	_, err = r.DrawFrame(slots, 0)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
