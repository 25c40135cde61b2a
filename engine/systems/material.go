package systems

import (
	"fmt"

	"github.com/spaghettifunk/formation/engine/core"
	"github.com/spaghettifunk/formation/engine/renderer/metadata"
)

type MaterialSystem struct {
	Config    *MaterialSystemConfig
	ids       *core.IdentifierPool
	lookup    map[string]metadata.MaterialHandle
	materials []*metadata.Material
}

/** @brief The material system configuration. */
type MaterialSystemConfig struct {
	/** @brief The maximum number of loaded materials. */
	MaxMaterialCount uint32
}

func NewMaterialSystem(config *MaterialSystemConfig) (*MaterialSystem, error) {
	if config == nil || config.MaxMaterialCount == 0 {
		err := fmt.Errorf("func NewMaterialSystem - config.MaxMaterialCount must be > 0: %w", core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}
	return &MaterialSystem{
		Config:    config,
		ids:       core.NewIdentifierPool(int(config.MaxMaterialCount)),
		lookup:    make(map[string]metadata.MaterialHandle, config.MaxMaterialCount),
		materials: make([]*metadata.Material, 0, config.MaxMaterialCount),
	}, nil
}

// Register creates a material from config. Names are unique.
func (ms *MaterialSystem) Register(config metadata.MaterialConfig) (metadata.MaterialHandle, error) {
	if _, ok := ms.lookup[config.Name]; ok {
		err := fmt.Errorf("material '%s': %w", config.Name, core.ErrDuplicateName)
		core.LogError(err.Error())
		return metadata.InvalidMaterialHandle, err
	}
	if uint32(len(ms.lookup)) >= ms.Config.MaxMaterialCount {
		err := fmt.Errorf("material '%s': max material count %d reached: %w", config.Name, ms.Config.MaxMaterialCount, core.ErrInvalidConfig)
		core.LogError(err.Error())
		return metadata.InvalidMaterialHandle, err
	}

	m := &metadata.Material{
		Name:          config.Name,
		DiffuseMap:    config.DiffuseMap,
		DiffuseAlbedo: config.DiffuseAlbedo,
		FresnelR0:     config.FresnelR0,
		Roughness:     config.Roughness,
	}
	id := ms.ids.AcquireNewID(m)
	m.Handle = metadata.MaterialHandle(id)
	m.MatCBIndex = id
	m.DiffuseSrvHeapIndex = id

	for int(id) >= len(ms.materials) {
		ms.materials = append(ms.materials, nil)
	}
	ms.materials[id] = m
	ms.lookup[config.Name] = m.Handle

	core.LogDebug("registered material '%s' with handle %d", m.Name, m.Handle)
	return m.Handle, nil
}

// Acquire returns the material registered under name.
func (ms *MaterialSystem) Acquire(name string) (*metadata.Material, error) {
	handle, ok := ms.lookup[name]
	if !ok {
		return nil, fmt.Errorf("material '%s': %w", name, core.ErrNotFound)
	}
	return ms.materials[handle], nil
}

// Get resolves a handle. Returns nil for unknown handles.
func (ms *MaterialSystem) Get(handle metadata.MaterialHandle) *metadata.Material {
	owner, ok := ms.ids.Owner(uint32(handle))
	if !ok {
		return nil
	}
	return owner.(*metadata.Material)
}

// Release frees the material's handle for reuse.
func (ms *MaterialSystem) Release(name string) error {
	handle, ok := ms.lookup[name]
	if !ok {
		core.LogWarn("material '%s' not registered. Nothing was done", name)
		return fmt.Errorf("material '%s': %w", name, core.ErrNotFound)
	}
	delete(ms.lookup, name)
	ms.materials[handle] = nil
	return ms.ids.ReleaseID(uint32(handle))
}
