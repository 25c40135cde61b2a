package systems

import (
	"fmt"

	"github.com/spaghettifunk/formation/engine/core"
	"github.com/spaghettifunk/formation/engine/math"
	"github.com/spaghettifunk/formation/engine/renderer/metadata"
)

/** @brief Upper bound for the number of buffered frame resources. */
const MaxFrameResourceCount uint8 = 8

/** @brief The renderable system configuration. */
type RenderableSystemConfig struct {
	/**
	 * @brief The number of frame resources the renderer keeps in flight.
	 * A dirty slot is copied this many times before it settles.
	 */
	FrameResourceCount uint8
}

// RenderableSystem is the slot table shared between the simulation and the renderer.
// Slots are only ever appended, so an index handed out by Allocate stays valid for the
// lifetime of the system.
type RenderableSystem struct {
	Config *RenderableSystemConfig
	slots  []*metadata.RenderableSlot
}

func NewRenderableSystem(config *RenderableSystemConfig) (*RenderableSystem, error) {
	if config == nil || config.FrameResourceCount == 0 {
		err := fmt.Errorf("func NewRenderableSystem - config.FrameResourceCount must be > 0: %w", core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}
	config.FrameResourceCount = math.Clamp(config.FrameResourceCount, 1, MaxFrameResourceCount)
	return &RenderableSystem{
		Config: config,
		slots:  make([]*metadata.RenderableSlot, 0, 16),
	}, nil
}

// Allocate appends a new slot and returns its index. The slot starts dirty for every
// buffered frame so the renderer picks up the initial transform.
func (rs *RenderableSystem) Allocate(material metadata.MaterialHandle, mesh metadata.MeshHandle, initialTransform math.Mat4) uint32 {
	index := uint32(len(rs.slots))
	rs.slots = append(rs.slots, &metadata.RenderableSlot{
		World:          initialTransform,
		TexTransform:   math.NewMat4Identity(),
		NumFramesDirty: rs.Config.FrameResourceCount,
		ObjCBIndex:     index,
		Material:       material,
		Mesh:           mesh,
		Layer:          metadata.RenderLayerOpaque,
	})
	core.LogDebug("allocated renderable slot %d (material=%d, mesh=%d)", index, material, mesh)
	return index
}

// Get returns the slot at index for mutation.
func (rs *RenderableSystem) Get(index uint32) (*metadata.RenderableSlot, error) {
	if int(index) >= len(rs.slots) {
		return nil, fmt.Errorf("slot %d (allocated=%d): %w", index, len(rs.slots), core.ErrSlotOutOfRange)
	}
	return rs.slots[index], nil
}

// MarkDirty flags the slot so every buffered frame resource receives its constants again.
func (rs *RenderableSystem) MarkDirty(index uint32) error {
	slot, err := rs.Get(index)
	if err != nil {
		return err
	}
	slot.NumFramesDirty = rs.Config.FrameResourceCount
	return nil
}

// ConsumeDirty is called by the renderer after copying the slot into one frame
// resource. It reports whether a copy was due.
func (rs *RenderableSystem) ConsumeDirty(index uint32) bool {
	if int(index) >= len(rs.slots) {
		return false
	}
	slot := rs.slots[index]
	if slot.NumFramesDirty == 0 {
		return false
	}
	slot.NumFramesDirty--
	return true
}

// Slot returns the slot at index, or nil if it was never allocated.
func (rs *RenderableSystem) Slot(index uint32) *metadata.RenderableSlot {
	if int(index) >= len(rs.slots) {
		return nil
	}
	return rs.slots[index]
}

func (rs *RenderableSystem) Len() int {
	return len(rs.slots)
}

func (rs *RenderableSystem) FrameResourceCount() uint8 {
	return rs.Config.FrameResourceCount
}
