// Package scene holds the scene graph: a tree of nodes, each optionally driving one
// Entity, updated in pre-order once per simulation tick.
package scene

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/formation/engine/core"
	"github.com/spaghettifunk/formation/engine/math"
)

// SceneNode owns its children exclusively. The parent pointer is a back-reference
// used for lookups and hierarchical queries, never for ownership.
type SceneNode struct {
	id       uuid.UUID
	name     string
	parent   *SceneNode
	children []*SceneNode
	entity   *Entity
}

func NewSceneNode(name string) *SceneNode {
	return &SceneNode{
		id:   uuid.New(),
		name: name,
	}
}

// NewEntityNode creates a node driving e. The entity itself stays owned by the caller.
func NewEntityNode(name string, e *Entity) *SceneNode {
	n := NewSceneNode(name)
	n.entity = e
	return n
}

// AttachChild appends child to this node's children and takes ownership of it.
// A child that already has a parent must be detached first.
func (n *SceneNode) AttachChild(child *SceneNode) error {
	if child == nil {
		return core.ErrNilNode
	}
	if child.parent != nil {
		err := fmt.Errorf("attach '%s' to '%s' (owned by '%s'): %w", child.name, n.name, child.parent.name, core.ErrNodeHasParent)
		core.LogError(err.Error())
		return err
	}
	for a := n; a != nil; a = a.parent {
		if a == child {
			err := fmt.Errorf("attach '%s' to '%s': %w", child.name, n.name, core.ErrSceneCycle)
			core.LogError(err.Error())
			return err
		}
	}
	child.parent = n
	n.children = append(n.children, child)
	return nil
}

// DetachChild removes child from this node and hands it back to the caller with
// its subtree intact.
func (n *SceneNode) DetachChild(child *SceneNode) (*SceneNode, error) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			c.parent = nil
			return c, nil
		}
	}
	name := "<nil>"
	if child != nil {
		name = child.name
	}
	err := fmt.Errorf("detach '%s' from '%s': %w", name, n.name, core.ErrNotAChild)
	core.LogError(err.Error())
	return nil, err
}

// Update drives this node's entity, then each child in attachment order.
// The first error stops the traversal.
func (n *SceneNode) Update(deltaTime float64, slots SlotTable) error {
	if err := n.updateCurrent(deltaTime, slots); err != nil {
		return err
	}
	return n.updateChildren(deltaTime, slots)
}

func (n *SceneNode) updateCurrent(deltaTime float64, slots SlotTable) error {
	if n.entity == nil {
		return nil
	}
	return n.entity.Update(deltaTime, slots)
}

func (n *SceneNode) updateChildren(deltaTime float64, slots SlotTable) error {
	for _, child := range n.children {
		if err := child.Update(deltaTime, slots); err != nil {
			return err
		}
	}
	return nil
}

// Walk visits the subtree in the same pre-order Update uses. Returning false from
// fn skips that node's children.
func (n *SceneNode) Walk(fn func(*SceneNode) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.children {
		child.Walk(fn)
	}
}

// Find returns the node with id in this subtree.
func (n *SceneNode) Find(id uuid.UUID) *SceneNode {
	var found *SceneNode
	n.Walk(func(c *SceneNode) bool {
		if found != nil {
			return false
		}
		if c.id == id {
			found = c
			return false
		}
		return true
	})
	return found
}

// WorldPosition is the node's own last computed position. Parents are not
// composed in; see ComposedWorldTransform for that.
func (n *SceneNode) WorldPosition() math.Vec3 {
	if n.entity == nil {
		return math.NewVec3Zero()
	}
	return n.entity.Position()
}

// WorldTransform is the node's own last computed transform.
func (n *SceneNode) WorldTransform() math.Mat4 {
	if n.entity == nil {
		return math.NewMat4Identity()
	}
	return n.entity.LocalTransform()
}

// ComposedWorldTransform multiplies this node's transform by every ancestor's,
// child first. Nodes without an entity contribute identity. Update never uses it.
func (n *SceneNode) ComposedWorldTransform() math.Mat4 {
	world := n.WorldTransform()
	for a := n.parent; a != nil; a = a.parent {
		world = world.Mul(a.WorldTransform())
	}
	return world
}

func (n *SceneNode) ID() uuid.UUID {
	return n.id
}

func (n *SceneNode) Name() string {
	return n.name
}

func (n *SceneNode) Parent() *SceneNode {
	return n.parent
}

func (n *SceneNode) Entity() *Entity {
	return n.entity
}

// Children returns a copy of the child list in attachment order.
func (n *SceneNode) Children() []*SceneNode {
	out := make([]*SceneNode, len(n.children))
	copy(out, n.children)
	return out
}
