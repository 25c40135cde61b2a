package systems

import (
	"fmt"

	"github.com/spaghettifunk/formation/engine/core"
	"github.com/spaghettifunk/formation/engine/renderer/metadata"
)

// MeshSystem keeps the named geometries renderables point at. The vertex data itself
// lives with the renderer backend; only the draw arguments are tracked here.
type MeshSystem struct {
	ids        *core.IdentifierPool
	lookup     map[string]metadata.MeshHandle
	geometries map[metadata.MeshHandle]*metadata.MeshGeometry
}

func NewMeshSystem() *MeshSystem {
	return &MeshSystem{
		ids:        core.NewIdentifierPool(8),
		lookup:     make(map[string]metadata.MeshHandle),
		geometries: make(map[metadata.MeshHandle]*metadata.MeshGeometry),
	}
}

func (ms *MeshSystem) Register(name string, drawArgs map[string]metadata.Submesh) (metadata.MeshHandle, error) {
	if _, ok := ms.lookup[name]; ok {
		err := fmt.Errorf("mesh '%s': %w", name, core.ErrDuplicateName)
		core.LogError(err.Error())
		return metadata.InvalidMeshHandle, err
	}
	g := &metadata.MeshGeometry{
		Name:     name,
		DrawArgs: make(map[string]metadata.Submesh, len(drawArgs)),
	}
	for k, v := range drawArgs {
		g.DrawArgs[k] = v
	}
	g.Handle = metadata.MeshHandle(ms.ids.AcquireNewID(g))
	ms.lookup[name] = g.Handle
	ms.geometries[g.Handle] = g
	return g.Handle, nil
}

func (ms *MeshSystem) Acquire(name string) (*metadata.MeshGeometry, error) {
	handle, ok := ms.lookup[name]
	if !ok {
		return nil, fmt.Errorf("mesh '%s': %w", name, core.ErrNotFound)
	}
	return ms.geometries[handle], nil
}

// Submesh looks up the draw arguments of a named submesh.
func (ms *MeshSystem) Submesh(handle metadata.MeshHandle, name string) (metadata.Submesh, error) {
	g, ok := ms.geometries[handle]
	if !ok {
		return metadata.Submesh{}, fmt.Errorf("mesh handle %d: %w", handle, core.ErrNotFound)
	}
	sm, ok := g.DrawArgs[name]
	if !ok {
		return metadata.Submesh{}, fmt.Errorf("submesh '%s' of mesh '%s': %w", name, g.Name, core.ErrNotFound)
	}
	return sm, nil
}
