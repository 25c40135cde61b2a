package systems

type SystemManager struct {
	RenderableSystem *RenderableSystem
	MaterialSystem   *MaterialSystem
	MeshSystem       *MeshSystem
}

func NewSystemManager(frameResourceCount uint8) (*SystemManager, error) {
	rs, err := NewRenderableSystem(&RenderableSystemConfig{
		FrameResourceCount: frameResourceCount,
	})
	if err != nil {
		return nil, err
	}
	ms, err := NewMaterialSystem(&MaterialSystemConfig{
		MaxMaterialCount: 64,
	})
	if err != nil {
		return nil, err
	}
	return &SystemManager{
		RenderableSystem: rs,
		MaterialSystem:   ms,
		MeshSystem:       NewMeshSystem(),
	}, nil
}

func (sm *SystemManager) Shutdown() error {
	return nil
}
