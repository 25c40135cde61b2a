package renderer

import "github.com/spaghettifunk/formation/engine/renderer/metadata"

// RendererBackend receives the per-frame work once the frame resource is up to date.
// The GPU backend lives outside this module; NullBackend is the headless one.
type RendererBackend interface {
	Initialize(frameResourceCount uint8) error
	Shutdown() error
	BeginFrame(frameIndex uint8, deltaTime float64) error
	DrawRenderItem(layer metadata.RenderLayer, slot *metadata.RenderableSlot, constants *metadata.ObjectConstants, drawArgs metadata.Submesh) error
	EndFrame(frameIndex uint8, deltaTime float64) error
}

// NullBackend counts draws and indices per layer and discards everything else.
type NullBackend struct {
	Frames  uint64
	Draws   [metadata.RenderLayerCount]uint64
	Indices [metadata.RenderLayerCount]uint64
}

func (b *NullBackend) Initialize(frameResourceCount uint8) error {
	return nil
}

func (b *NullBackend) Shutdown() error {
	return nil
}

func (b *NullBackend) BeginFrame(frameIndex uint8, deltaTime float64) error {
	return nil
}

func (b *NullBackend) DrawRenderItem(layer metadata.RenderLayer, slot *metadata.RenderableSlot, constants *metadata.ObjectConstants, drawArgs metadata.Submesh) error {
	b.Draws[layer]++
	b.Indices[layer] += uint64(drawArgs.IndexCount)
	return nil
}

func (b *NullBackend) EndFrame(frameIndex uint8, deltaTime float64) error {
	b.Frames++
	return nil
}
