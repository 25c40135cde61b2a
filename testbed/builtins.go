package testbed

import (
	"github.com/spaghettifunk/formation/engine/math"
	"github.com/spaghettifunk/formation/engine/renderer/metadata"
	"github.com/spaghettifunk/formation/engine/systems"
)

const (
	BackgroundMaterialName = "BackgroundTex"
	EagleMaterialName      = "EagleTex"
	RaptorMaterialName     = "RaptorTex"

	GroundGeometryName = "groundGeo"
	GroundSubmeshName  = "ground"
)

// registerBuiltins creates the materials and the ground geometry every
// renderable in the scene is drawn with.
func registerBuiltins(sm *systems.SystemManager) error {
	materials := []metadata.MaterialConfig{
		{
			Name:          BackgroundMaterialName,
			DiffuseMap:    "Textures/Desert.dds",
			DiffuseAlbedo: math.NewVec4One(),
			FresnelR0:     math.NewVec3(0.01, 0.01, 0.01),
			Roughness:     0.125,
		},
		{
			Name:          EagleMaterialName,
			DiffuseMap:    "Textures/Eagle.dds",
			DiffuseAlbedo: math.NewVec4One(),
			FresnelR0:     math.NewVec3(0.02, 0.02, 0.02),
			Roughness:     0.25,
		},
		{
			Name:          RaptorMaterialName,
			DiffuseMap:    "Textures/Raptor.dds",
			DiffuseAlbedo: math.NewVec4One(),
			FresnelR0:     math.NewVec3(0.01, 0.01, 0.01),
			Roughness:     0.125,
		},
	}
	for _, m := range materials {
		if _, err := sm.MaterialSystem.Register(m); err != nil {
			return err
		}
	}

	// A single quad.
	_, err := sm.MeshSystem.Register(GroundGeometryName, map[string]metadata.Submesh{
		GroundSubmeshName: {IndexCount: 6},
	})
	return err
}
