package renderer

import (
	"fmt"

	"github.com/spaghettifunk/formation/engine/core"
	"github.com/spaghettifunk/formation/engine/renderer/metadata"
)

// SlotSource is the renderer's view of the renderable slot table.
type SlotSource interface {
	Len() int
	Slot(index uint32) *metadata.RenderableSlot
	ConsumeDirty(index uint32) bool
}

// SubmeshSource resolves the draw arguments a slot names.
type SubmeshSource interface {
	Submesh(handle metadata.MeshHandle, name string) (metadata.Submesh, error)
}

// FrameResource is one buffered copy of the object constants. The renderer cycles
// through them so the simulation can write the next frame while earlier ones are in flight.
type FrameResource struct {
	ObjectCB []metadata.ObjectConstants
	// Frame number this resource was last submitted with.
	Fence uint64
}

// FrameStats summarises one DrawFrame call.
type FrameStats struct {
	FrameNumber   uint64
	FrameIndex    uint8
	CopiedSlots   int
	DrawsPerLayer [metadata.RenderLayerCount]int
	// Indices submitted across all draws.
	IndexCount uint64
}

type Renderer struct {
	backend       RendererBackend
	frames        []*FrameResource
	currentFrame  uint8
	frameNumber   uint64
	materialIndex func(metadata.MaterialHandle) uint32
	meshes        SubmeshSource
}

// New creates a renderer with frameResourceCount buffered frame resources.
// materialIndex resolves a slot's material into its constant buffer index; nil maps
// the handle directly. meshes may be nil, in which case every draw gets empty draw
// arguments.
func New(backend RendererBackend, frameResourceCount uint8, materialIndex func(metadata.MaterialHandle) uint32, meshes SubmeshSource) (*Renderer, error) {
	if backend == nil {
		backend = &NullBackend{}
	}
	if frameResourceCount == 0 {
		err := fmt.Errorf("renderer needs at least one frame resource: %w", core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}
	if err := backend.Initialize(frameResourceCount); err != nil {
		return nil, err
	}
	frames := make([]*FrameResource, frameResourceCount)
	for i := range frames {
		frames[i] = &FrameResource{}
	}
	if materialIndex == nil {
		materialIndex = func(h metadata.MaterialHandle) uint32 { return uint32(h) }
	}
	return &Renderer{
		backend:       backend,
		frames:        frames,
		materialIndex: materialIndex,
		meshes:        meshes,
	}, nil
}

// DrawFrame advances to the next frame resource, copies every dirty slot into it
// (decrementing the slot's dirty counter) and submits all slots to the backend.
func (r *Renderer) DrawFrame(slots SlotSource, deltaTime float64) (FrameStats, error) {
	r.frameNumber++
	r.currentFrame = uint8(r.frameNumber % uint64(len(r.frames)))
	frame := r.frames[r.currentFrame]

	stats := FrameStats{
		FrameNumber: r.frameNumber,
		FrameIndex:  r.currentFrame,
	}

	n := slots.Len()
	if len(frame.ObjectCB) < n {
		grown := make([]metadata.ObjectConstants, n)
		copy(grown, frame.ObjectCB)
		frame.ObjectCB = grown
	}

	if err := r.backend.BeginFrame(r.currentFrame, deltaTime); err != nil {
		return stats, err
	}

	for i := 0; i < n; i++ {
		slot := slots.Slot(uint32(i))
		if slot == nil {
			continue
		}
		constants := &frame.ObjectCB[slot.ObjCBIndex]
		// Only copy the data if the constants have changed. This needs to be
		// tracked per frame resource.
		if slots.ConsumeDirty(uint32(i)) {
			constants.World = slot.World.Data
			constants.TexTransform = slot.TexTransform.Data
			constants.MaterialIndex = r.materialIndex(slot.Material)
			stats.CopiedSlots++
		}
		drawArgs, err := r.drawArgs(slot)
		if err != nil {
			return stats, err
		}
		if err := r.backend.DrawRenderItem(slot.Layer, slot, constants, drawArgs); err != nil {
			return stats, err
		}
		stats.DrawsPerLayer[slot.Layer]++
		stats.IndexCount += uint64(drawArgs.IndexCount)
	}

	frame.Fence = r.frameNumber
	if err := r.backend.EndFrame(r.currentFrame, deltaTime); err != nil {
		return stats, err
	}
	return stats, nil
}

func (r *Renderer) drawArgs(slot *metadata.RenderableSlot) (metadata.Submesh, error) {
	if r.meshes == nil || slot.Submesh == "" {
		return metadata.Submesh{}, nil
	}
	args, err := r.meshes.Submesh(slot.Mesh, slot.Submesh)
	if err != nil {
		err = fmt.Errorf("renderable slot %d: %w", slot.ObjCBIndex, err)
		core.LogError(err.Error())
		return metadata.Submesh{}, err
	}
	return args, nil
}

// FrameResource returns the buffered frame at index, used by tools that inspect
// what the GPU would read.
func (r *Renderer) FrameResource(index uint8) *FrameResource {
	if int(index) >= len(r.frames) {
		return nil
	}
	return r.frames[index]
}

func (r *Renderer) FrameResourceCount() uint8 {
	return uint8(len(r.frames))
}

func (r *Renderer) FrameNumber() uint64 {
	return r.frameNumber
}

func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}
