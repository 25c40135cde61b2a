package metadata

import "github.com/spaghettifunk/formation/engine/math"

/**
 * @brief Material configuration typically loaded from
 * a file or created in code to load a material from.
 */
type MaterialConfig struct {
	Name          string
	DiffuseMap    string
	DiffuseAlbedo math.Vec4
	FresnelR0     math.Vec3
	Roughness     float32
}

/**
 * @brief A material, which represents the surface properties
 * used when shading a renderable.
 */
type Material struct {
	/** @brief The handle the material was registered under. */
	Handle MaterialHandle
	/** @brief Index into the material constant buffer. */
	MatCBIndex uint32
	/** @brief Index of the diffuse texture in the shader resource heap. */
	DiffuseSrvHeapIndex uint32
	Name                string
	/** @brief Name of the diffuse texture, resolved by the renderer backend. */
	DiffuseMap    string
	DiffuseAlbedo math.Vec4
	FresnelR0     math.Vec3
	Roughness     float32
}
