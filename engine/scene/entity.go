package scene

import (
	"fmt"

	"github.com/spaghettifunk/formation/engine/math"
	"github.com/spaghettifunk/formation/engine/renderer/metadata"
)

// SlotTable is the part of the renderable system entities write through.
type SlotTable interface {
	Get(index uint32) (*metadata.RenderableSlot, error)
	MarkDirty(index uint32) error
}

// Entity is a kinematic body moving at constant velocity. It owns exactly one
// renderable slot, by index, and rewrites that slot's world matrix every update.
type Entity struct {
	name      string
	slot      uint32
	velocity  math.Vec3
	transform *math.Transform
}

func NewEntity(name string, slot uint32, position, velocity, scale math.Vec3) *Entity {
	return &Entity{
		name:      name,
		slot:      slot,
		velocity:  velocity,
		transform: math.TransformFromPositionScale(position, scale),
	}
}

// Update advances the position by velocity*dt (explicit Euler) and writes
// Scale(scale) * Translation(position) into the owned slot, marking it dirty.
// A zero dt or zero velocity still rewrites the slot. An unknown slot leaves the
// entity untouched.
func (e *Entity) Update(deltaTime float64, slots SlotTable) error {
	slot, err := slots.Get(e.slot)
	if err != nil {
		return fmt.Errorf("entity '%s': %w", e.name, err)
	}

	displacement := e.velocity.MulScalar(float32(deltaTime))
	e.transform.Translate(displacement)
	slot.World = e.transform.GetLocal()
	return slots.MarkDirty(e.slot)
}

func (e *Entity) Name() string {
	return e.name
}

// Slot is the index of the renderable slot this entity writes to.
func (e *Entity) Slot() uint32 {
	return e.slot
}

func (e *Entity) Position() math.Vec3 {
	return e.transform.Position
}

func (e *Entity) SetPosition(position math.Vec3) {
	e.transform.SetPosition(position)
}

func (e *Entity) Velocity() math.Vec3 {
	return e.velocity
}

func (e *Entity) SetVelocity(velocity math.Vec3) {
	e.velocity = velocity
}

func (e *Entity) Scale() math.Vec3 {
	return e.transform.Scale
}

// LocalTransform is Scale(scale) * Translation(position) for the current state.
func (e *Entity) LocalTransform() math.Mat4 {
	return e.transform.GetLocal()
}
