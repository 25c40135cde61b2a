package metadata

import (
	"github.com/spaghettifunk/formation/engine/math"
)

/** @brief Opaque handle to a registered material. */
type MaterialHandle uint32

/** @brief Opaque handle to a registered mesh geometry. */
type MeshHandle uint32

const (
	InvalidMaterialHandle MaterialHandle = MaterialHandle(InvalidID)
	InvalidMeshHandle     MeshHandle     = MeshHandle(InvalidID)
)

/**
 * @brief The per-drawable state consumed by the renderer. Slots are
 * referenced by their index in the renderable system and never move.
 */
type RenderableSlot struct {
	/** @brief The world matrix, written every time the owning entity moves. */
	World math.Mat4
	/** @brief The texture coordinate transform. */
	TexTransform math.Mat4
	/**
	 * @brief How many buffered frame resources still need a copy of the
	 * constants. Reset by MarkDirty, decremented by the renderer.
	 */
	NumFramesDirty uint8
	/** @brief Index into the object constant buffer. Equal to the slot index. */
	ObjCBIndex uint32
	Material   MaterialHandle
	Mesh       MeshHandle
	/** @brief Name of the submesh within Mesh to draw. */
	Submesh string
	Layer   RenderLayer
}
