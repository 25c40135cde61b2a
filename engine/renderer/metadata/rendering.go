package metadata

const InvalidID uint32 = 4294967295

// RenderLayer groups renderables by the pipeline state they are drawn with.
type RenderLayer int

const (
	RenderLayerOpaque RenderLayer = iota
	RenderLayerTransparent
	RenderLayerAlphaTested
	RenderLayerAlphaTestedTreeSprites
	RenderLayerCount
)

func (l RenderLayer) String() string {
	switch l {
	case RenderLayerOpaque:
		return "opaque"
	case RenderLayerTransparent:
		return "transparent"
	case RenderLayerAlphaTested:
		return "alpha_tested"
	case RenderLayerAlphaTestedTreeSprites:
		return "alpha_tested_tree_sprites"
	}
	return "unknown"
}

/** @brief Per-object constants copied into a frame resource. */
type ObjectConstants struct {
	World         [16]float32
	TexTransform  [16]float32
	MaterialIndex uint32
}
