package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalchef/catalog"
	"github.com/milk9111/portalchef/ecs"
	"github.com/milk9111/portalchef/ecs/component"
	"github.com/milk9111/portalchef/level"
	"github.com/milk9111/portalchef/portal"
	"github.com/milk9111/portalchef/prefabs"
	"go.uber.org/zap"
)

var ErrNoSpec = errors.New("system: game spec is required")

// Driver owns the simulation: the world, the portal pair and the system
// schedule. It is stepped from the game loop and is not safe for concurrent
// use.
type Driver struct {
	world     *ecs.World
	scheduler *ecs.Scheduler
	pair      *portal.Pair
	spawner   *SpawnSystem
	game      ecs.Entity
	controls  [2]ecs.Entity
	spec      *prefabs.GameSpec
	log       *zap.Logger
}

type DriverOption func(*Driver)

func WithLogger(l *zap.Logger) DriverOption {
	return func(d *Driver) {
		if l != nil {
			d.log = l
		}
	}
}

// Food is a read-only view of a live food for drawing.
type Food struct {
	Entity ecs.Entity
	Name   string
	Body   *portal.Body
}

func NewDriver(spec *prefabs.GameSpec, cat *catalog.Catalog, lvl level.Level, opts ...DriverOption) (*Driver, error) {
	if spec == nil {
		return nil, ErrNoSpec
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("system: %w", err)
	}

	d := &Driver{
		world: ecs.NewWorld(),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	spawns := spec.Portal.Spawns
	first := portal.New(portal.First, spawns[0].Position.Vector(), spawns[0].Normal.Vector(), spec.Portal.Width, spec.Portal.Thickness)
	second := portal.New(portal.Second, spawns[1].Position.Vector(), spawns[1].Normal.Vector(), spec.Portal.Width, spec.Portal.Thickness)
	d.pair = portal.NewPair(first, second, spec.Physics.Teleport(), portal.WithPairLogger(d.log))

	d.game = ecs.CreateEntity(d.world)
	d.mustAdd(ecs.Add(d.world, d.game, component.ClockComponent.Kind(), &component.Clock{}))
	d.mustAdd(ecs.Add(d.world, d.game, component.PortalsComponent.Kind(), &component.Portals{Pair: d.pair}))
	d.mustAdd(ecs.Add(d.world, d.game, component.PhysicsComponent.Kind(), &component.Physics{}))
	d.mustAdd(ecs.Add(d.world, d.game, component.ArenaComponent.Kind(), &component.Arena{}))
	d.mustAdd(ecs.Add(d.world, d.game, component.LevelStateComponent.Kind(), &component.LevelState{}))

	for i := range d.controls {
		e := ecs.CreateEntity(d.world)
		d.mustAdd(ecs.Add(d.world, e, component.PortalControlComponent.Kind(), &component.PortalControl{Portal: portal.ID(i)}))
		d.controls[i] = e
	}

	d.spawner = NewSpawnSystem(cat, d.log)
	d.scheduler = ecs.NewScheduler(
		NewPortalMotionSystem(),
		NewLevelSystem(),
		d.spawner,
		NewTeleportSystem(),
		NewBallisticsSystem(),
		NewPotSystem(),
		NewFloorSystem(),
		NewTransformSyncSystem(),
	)

	if err := d.ApplySpec(spec); err != nil {
		return nil, err
	}
	d.SetLevel(lvl)
	return d, nil
}

func (d *Driver) mustAdd(err error) {
	if err != nil {
		panic("driver: add component: " + err.Error())
	}
}

// Update advances the simulation by elapsed seconds and returns the events
// raised during the tick.
func (d *Driver) Update(elapsed float64) []ecs.Event {
	if elapsed < 0 {
		elapsed = 0
	}
	if c, ok := ecs.Get(d.world, d.game, component.ClockComponent.Kind()); ok {
		c.Elapsed = elapsed
		c.Time += elapsed
		c.Tick++
	}
	d.scheduler.Update(d.world)
	return d.world.Events().Drain()
}

// ApplySpec reloads the tunable parts of spec. Portal geometry is fixed when
// the driver is built and is not changed here.
func (d *Driver) ApplySpec(spec *prefabs.GameSpec) error {
	if spec == nil {
		return ErrNoSpec
	}
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("system: %w", err)
	}
	d.spec = spec
	d.pair.SetSettings(spec.Physics.Teleport())

	if p, ok := ecs.Get(d.world, d.game, component.PhysicsComponent.Kind()); ok {
		p.Gravity = spec.Physics.Gravity
		p.TerminalSpeed = spec.Physics.TerminalSpeed
	}
	if a, ok := ecs.Get(d.world, d.game, component.ArenaComponent.Kind()); ok {
		*a = component.Arena{
			Ceiling:        spec.Arena.Ceiling,
			Wall:           spec.Arena.Wall,
			Floor:          spec.Arena.Floor,
			PotTop:         spec.Arena.PotTop,
			PotHalfWidth:   spec.Arena.PotHalfWidth,
			CeilingDamping: spec.Arena.CeilingDamping,
			WallDamping:    spec.Arena.WallDamping,
		}
		ecs.ForEach(d.world, component.PotComponent.Kind(), func(_ ecs.Entity, pot *component.Pot) {
			pot.Mouth = PotMouth(pot.Position, *a)
		})
	}
	for _, e := range d.controls {
		if c, ok := ecs.Get(d.world, e, component.PortalControlComponent.Kind()); ok {
			c.RotateSpeed = spec.Portal.RotateSpeed
		}
	}
	return nil
}

// SetLevel clears every food and pot and starts lvl. A nil level leaves the
// arena empty.
func (d *Driver) SetLevel(lvl level.Level) {
	for _, f := range d.Foods() {
		release(d.world, f.Entity, f.Body)
	}
	for _, e := range ecs.Query(d.world, component.SpawnRequestComponent.Kind().ID()) {
		ecs.DestroyEntity(d.world, e)
	}
	for _, e := range ecs.Query(d.world, component.PotComponent.Kind().ID()) {
		ecs.DestroyEntity(d.world, e)
	}

	if ls, ok := ecs.Get(d.world, d.game, component.LevelStateComponent.Kind()); ok {
		ls.Level = lvl
	}
	if lvl == nil {
		return
	}

	arena, _ := arenaOf(d.world)
	for i, pos := range lvl.Pots() {
		e := ecs.CreateEntity(d.world)
		d.mustAdd(ecs.Add(d.world, e, component.PotComponent.Kind(), &component.Pot{
			Index:    i,
			Position: pos,
			Mouth:    PotMouth(pos, arena),
		}))
		d.mustAdd(ecs.Add(d.world, e, component.TransformComponent.Kind(), &component.Transform{X: pos.X, Y: pos.Y}))
	}
	d.log.Info("driver: level started",
		zap.String("level", lvl.Name()),
		zap.String("title", lvl.Title()),
		zap.Int("pots", len(lvl.Pots())))
}

func (d *Driver) SetCatalog(cat *catalog.Catalog) {
	d.spawner.SetCatalog(cat)
}

func (d *Driver) Catalog() *catalog.Catalog {
	return d.spawner.Catalog()
}

// Move queues a translation of portal id for the next tick.
func (d *Driver) Move(id portal.ID, delta cp.Vector) {
	if !id.Valid() {
		return
	}
	if c, ok := ecs.Get(d.world, d.controls[id], component.PortalControlComponent.Kind()); ok {
		c.Move = c.Move.Add(delta)
	}
}

// Turn sets the rotation direction of portal id: -1, 0 or 1.
func (d *Driver) Turn(id portal.ID, dir float64) {
	if !id.Valid() {
		return
	}
	if c, ok := ecs.Get(d.world, d.controls[id], component.PortalControlComponent.Kind()); ok {
		c.Turn = dir
	}
}

// Relocate moves the foods held by the portal opposite to into to's frame so
// they can be drawn through it. Restore must follow before the next Update.
func (d *Driver) Relocate(to portal.ID) {
	if !to.Valid() {
		return
	}
	d.pair.Relocate(to, worldBodies{w: d.world})
}

func (d *Driver) Restore() {
	d.pair.Restore()
}

// Foods lists live foods in entity order.
func (d *Driver) Foods() []Food {
	var out []Food
	ecs.ForEach2(d.world, component.FoodComponent.Kind(), component.BodyComponent.Kind(), func(e ecs.Entity, f *component.Food, b *component.Body) {
		out = append(out, Food{Entity: e, Name: f.Name, Body: b})
	})
	return out
}

// Pots lists the current level's pots by index.
func (d *Driver) Pots() []component.Pot {
	var out []component.Pot
	ecs.ForEach(d.world, component.PotComponent.Kind(), func(_ ecs.Entity, p *component.Pot) {
		out = append(out, *p)
	})
	return out
}

func (d *Driver) World() *ecs.World       { return d.world }
func (d *Driver) Pair() *portal.Pair      { return d.pair }
func (d *Driver) Spec() *prefabs.GameSpec { return d.spec }
func (d *Driver) Level() level.Level      { return levelOf(d.world) }
func (d *Driver) Systems() []ecs.System   { return d.scheduler.Systems() }

// Profile turns per-system timing on or off.
func (d *Driver) Profile(on bool) { d.scheduler.SetProfiling(on) }

// StepCost is the time the last Update spent in systems. Zero unless
// profiling is on.
func (d *Driver) StepCost() time.Duration { return d.scheduler.Total() }

func (d *Driver) Time() float64 {
	if c, ok := ecs.Get(d.world, d.game, component.ClockComponent.Kind()); ok {
		return c.Time
	}
	return 0
}

func (d *Driver) Score() int {
	if lvl := d.Level(); lvl != nil {
		return lvl.Score()
	}
	return 0
}

func (d *Driver) Status() level.Status {
	if lvl := d.Level(); lvl != nil {
		return lvl.Status()
	}
	return level.Playing
}
