package testbed

import (
	"fmt"

	"github.com/spaghettifunk/formation/engine/containers"
	"github.com/spaghettifunk/formation/engine/core"
	"github.com/spaghettifunk/formation/engine/math"
	"github.com/spaghettifunk/formation/engine/renderer/metadata"
	"github.com/spaghettifunk/formation/engine/scene"
	"github.com/spaghettifunk/formation/engine/systems"
)

const BackgroundCount = 2

// Layer is a direct child of the scene root grouping related nodes.
type Layer uint8

const (
	LayerBackground Layer = iota
	LayerAir
	LayerCount
)

func (l Layer) String() string {
	switch l {
	case LayerBackground:
		return "background"
	case LayerAir:
		return "air"
	}
	return "unknown"
}

type ScenarioEventKind uint8

const (
	ScenarioEventBounced ScenarioEventKind = iota
	ScenarioEventWrapped
)

func (k ScenarioEventKind) String() string {
	switch k {
	case ScenarioEventBounced:
		return "bounced"
	case ScenarioEventWrapped:
		return "wrapped"
	}
	return "unknown"
}

// ScenarioEvent records a scenario rule firing. Position is the entity position
// right after the rule was applied.
type ScenarioEvent struct {
	Tick     uint64
	Kind     ScenarioEventKind
	Entity   string
	Position math.Vec3
}

// World owns the scene tree and the entities it drives, and applies the
// scenario rules once per tick before updating the tree.
type World struct {
	systems *systems.SystemManager
	events  *core.EventSystem
	rules   ScenarioRules

	root   *scene.SceneNode
	layers [LayerCount]*scene.SceneNode

	player      scene.Entity
	leftEscort  scene.Entity
	rightEscort scene.Entity
	backgrounds [BackgroundCount]scene.Entity

	journal *containers.RingQueue[ScenarioEvent]
	ticks   uint64
}

// NewWorld allocates a renderable slot for every entity and builds the tree
//
//	root
//	├── background layer
//	│   ├── background-0
//	│   └── background-1
//	└── air layer
//	    └── player
//	        ├── left-escort
//	        └── right-escort
//
// events may be nil.
func NewWorld(sm *systems.SystemManager, events *core.EventSystem, config ScenarioConfig) (*World, error) {
	if sm == nil {
		return nil, fmt.Errorf("world needs a system manager: %w", core.ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	w := &World{
		systems: sm,
		events:  events,
		rules:   config.Rules(),
		root:    scene.NewSceneNode("root"),
		journal: containers.NewRingQueue[ScenarioEvent](config.JournalSize),
	}
	for l := LayerBackground; l < LayerCount; l++ {
		w.layers[l] = scene.NewSceneNode(l.String())
		if err := w.root.AttachChild(w.layers[l]); err != nil {
			return nil, err
		}
	}

	ground, err := sm.MeshSystem.Acquire(GroundGeometryName)
	if err != nil {
		return nil, err
	}

	for i := range w.backgrounds {
		if err := w.spawnBackground(i, config.Background, ground.Handle); err != nil {
			return nil, err
		}
	}

	if err := w.spawnAircraft(&w.player, "player", config.Player, ground.Handle); err != nil {
		return nil, err
	}
	if err := w.spawnAircraft(&w.leftEscort, "left-escort", config.LeftEscort, ground.Handle); err != nil {
		return nil, err
	}
	if err := w.spawnAircraft(&w.rightEscort, "right-escort", config.RightEscort, ground.Handle); err != nil {
		return nil, err
	}

	playerNode := scene.NewEntityNode(w.player.Name(), &w.player)
	if err := w.layers[LayerAir].AttachChild(playerNode); err != nil {
		return nil, err
	}
	for _, escort := range []*scene.Entity{&w.leftEscort, &w.rightEscort} {
		if err := playerNode.AttachChild(scene.NewEntityNode(escort.Name(), escort)); err != nil {
			return nil, err
		}
	}

	core.LogInfo("world built with %d renderables", sm.RenderableSystem.Len())
	return w, nil
}

func (w *World) spawnBackground(i int, config BackgroundConfig, mesh metadata.MeshHandle) error {
	material, err := w.systems.MaterialSystem.Acquire(BackgroundMaterialName)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("background-%d", i)
	position, scale := vec3(config.Positions[i]), vec3(config.Scale)
	slot, err := w.allocate(material.Handle, mesh, position, scale, metadata.RenderLayerOpaque)
	if err != nil {
		return err
	}
	slot.TexTransform = math.NewMat4Scale(math.NewVec3(config.TexScale, config.TexScale, config.TexScale))

	w.backgrounds[i] = *scene.NewEntity(name, slot.ObjCBIndex, position, vec3(config.Velocity), scale)
	return w.layers[LayerBackground].AttachChild(scene.NewEntityNode(name, &w.backgrounds[i]))
}

func (w *World) spawnAircraft(dst *scene.Entity, name string, config AircraftConfig, mesh metadata.MeshHandle) error {
	aircraft, err := ParseAircraftType(config.Type)
	if err != nil {
		return err
	}
	material, err := w.systems.MaterialSystem.Acquire(aircraft.Material())
	if err != nil {
		return err
	}
	position, scale := vec3(config.Position), vec3(config.Scale)
	slot, err := w.allocate(material.Handle, mesh, position, scale, metadata.RenderLayerAlphaTested)
	if err != nil {
		return err
	}
	*dst = *scene.NewEntity(name, slot.ObjCBIndex, position, vec3(config.Velocity), scale)
	core.LogDebug("spawned %s %s at %v", aircraft, name, position)
	return nil
}

func (w *World) allocate(material metadata.MaterialHandle, mesh metadata.MeshHandle, position, scale math.Vec3, layer metadata.RenderLayer) (*metadata.RenderableSlot, error) {
	rs := w.systems.RenderableSystem
	world := math.NewMat4Scale(scale).Mul(math.NewMat4Translation(position))
	slot, err := rs.Get(rs.Allocate(material, mesh, world))
	if err != nil {
		return nil, err
	}
	slot.Submesh = GroundSubmeshName
	slot.Layer = layer
	return slot, nil
}

// Tick applies the bounce and wrap rules and then updates the whole tree.
// A negative dt is rejected before anything changes.
func (w *World) Tick(deltaTime float64) error {
	if deltaTime < 0 {
		return fmt.Errorf("tick with dt %f: %w", deltaTime, core.ErrNegativeTimestep)
	}
	w.ticks++

	w.applyBounce()
	w.applyWrap()

	return w.root.Update(deltaTime, w.systems.RenderableSystem)
}

// applyBounce turns the formation around once the player is past the lane bound
// and still heading away from the center.
func (w *World) applyBounce() {
	x, vx := w.player.Position().X, w.player.Velocity().X
	if !(x > w.rules.LaneBound && vx > 0) && !(x < -w.rules.LaneBound && vx < 0) {
		return
	}
	for _, e := range []*scene.Entity{&w.player, &w.leftEscort, &w.rightEscort} {
		v := e.Velocity()
		v.X = -v.X
		e.SetVelocity(v)
	}
	w.record(ScenarioEventBounced, &w.player)
}

// applyWrap hard resets a background's z to the wrap target, not a modulo wrap.
// The reset happens before the tree update, so a background at z=-12.5 ends the
// tick at exactly 12 only when it is not moving; a scrolling one ends at
// 12 + v*dt.
func (w *World) applyWrap() {
	for i := range w.backgrounds {
		bg := &w.backgrounds[i]
		position := bg.Position()
		if position.Z >= w.rules.WrapThreshold {
			continue
		}
		position.Z = w.rules.WrapTarget
		bg.SetPosition(position)
		w.record(ScenarioEventWrapped, bg)
	}
}

func (w *World) record(kind ScenarioEventKind, e *scene.Entity) {
	event := ScenarioEvent{
		Tick:     w.ticks,
		Kind:     kind,
		Entity:   e.Name(),
		Position: e.Position(),
	}
	w.journal.Push(event)
	core.LogDebug("tick %d: %s %s at %v", event.Tick, e.Name(), kind, event.Position)

	if w.events == nil {
		return
	}
	code := core.EVENT_CODE_FORMATION_BOUNCED
	if kind == ScenarioEventWrapped {
		code = core.EVENT_CODE_BACKGROUND_WRAPPED
	}
	w.events.Fire(core.EventContext{Type: code, Data: event})
}

// ApplyRules swaps the bounce and wrap parameters. Must be called from the
// goroutine that ticks the world.
func (w *World) ApplyRules(rules ScenarioRules) error {
	if err := rules.Validate(); err != nil {
		return err
	}
	w.rules = rules
	core.LogInfo("scenario rules updated: lane bound %.2f, wrap %.2f -> %.2f", rules.LaneBound, rules.WrapThreshold, rules.WrapTarget)
	return nil
}

func (w *World) Rules() ScenarioRules {
	return w.rules
}

// Journal returns the most recent scenario events, oldest first.
func (w *World) Journal() []ScenarioEvent {
	return w.journal.Snapshot()
}

func (w *World) Ticks() uint64 {
	return w.ticks
}

func (w *World) Root() *scene.SceneNode {
	return w.root
}

func (w *World) Layer(l Layer) *scene.SceneNode {
	if l >= LayerCount {
		return nil
	}
	return w.layers[l]
}

func (w *World) Player() *scene.Entity {
	return &w.player
}

func (w *World) LeftEscort() *scene.Entity {
	return &w.leftEscort
}

func (w *World) RightEscort() *scene.Entity {
	return &w.rightEscort
}

// Background returns nil when i is not a valid background index.
func (w *World) Background(i int) *scene.Entity {
	if i < 0 || i >= BackgroundCount {
		return nil
	}
	return &w.backgrounds[i]
}
