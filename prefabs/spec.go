package prefabs

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalchef/catalog"
	"github.com/milk9111/portalchef/portal"
	"gopkg.in/yaml.v3"
)

var ErrInvalidSpec = errors.New("prefabs: invalid spec")

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// Vec is a yaml [x, y] pair.
type Vec [2]float64

func (v Vec) Vector() cp.Vector { return cp.Vector{X: v[0], Y: v[1]} }

type GameSpec struct {
	Physics PhysicsSpec `yaml:"physics"`
	Portal  PortalSpec  `yaml:"portal"`
	Arena   ArenaSpec   `yaml:"arena"`
	Catalog string      `yaml:"catalog"`
	Levels  []LevelSpec `yaml:"levels"`
}

type PhysicsSpec struct {
	Gravity       float64 `yaml:"gravity"`
	TerminalSpeed float64 `yaml:"terminal_speed"`
	MinExitSpeed  float64 `yaml:"min_exit_speed"`
	Restitution   float64 `yaml:"restitution"`
}

// Teleport returns the portal crossing settings.
func (p PhysicsSpec) Teleport() portal.Settings {
	return portal.Settings{MinExitSpeed: p.MinExitSpeed, Restitution: p.Restitution}
}

type PortalSpec struct {
	Width       float64         `yaml:"width"`
	Thickness   float64         `yaml:"thickness"`
	RotateSpeed float64         `yaml:"rotate_speed"`
	Sensitivity float64         `yaml:"sensitivity"`
	MoveSpeed   float64         `yaml:"move_speed"`
	Spawns      []PortalPlacing `yaml:"spawns"`
}

type PortalPlacing struct {
	Position Vec `yaml:"position"`
	Normal   Vec `yaml:"normal"`
}

type ArenaSpec struct {
	Ceiling        float64 `yaml:"ceiling"`
	Wall           float64 `yaml:"wall"`
	Floor          float64 `yaml:"floor"`
	PotTop         float64 `yaml:"pot_top"`
	PotHalfWidth   float64 `yaml:"pot_half_width"`
	CeilingDamping float64 `yaml:"ceiling_damping"`
	WallDamping    float64 `yaml:"wall_damping"`
}

type LevelSpec struct {
	Name   string `yaml:"name"`
	Script string `yaml:"script"`
}

func LoadGameSpec(filename string) (*GameSpec, error) {
	spec, err := LoadSpec[GameSpec](filename)
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return &spec, nil
}

func (g *GameSpec) Validate() error {
	switch {
	case g.Physics.TerminalSpeed <= 0:
		return fmt.Errorf("%w: physics.terminal_speed must be positive", ErrInvalidSpec)
	case g.Physics.MinExitSpeed < 0:
		return fmt.Errorf("%w: physics.min_exit_speed must not be negative", ErrInvalidSpec)
	case g.Physics.Restitution < 0 || g.Physics.Restitution > 1:
		return fmt.Errorf("%w: physics.restitution must be in [0, 1]", ErrInvalidSpec)
	case g.Portal.Width <= 0 || g.Portal.Thickness <= 0:
		return fmt.Errorf("%w: portal.width and portal.thickness must be positive", ErrInvalidSpec)
	case len(g.Portal.Spawns) != 2:
		return fmt.Errorf("%w: portal.spawns needs exactly 2 entries, got %d", ErrInvalidSpec, len(g.Portal.Spawns))
	case g.Arena.Floor >= g.Arena.Ceiling:
		return fmt.Errorf("%w: arena.floor must be below arena.ceiling", ErrInvalidSpec)
	case g.Arena.Wall <= 0:
		return fmt.Errorf("%w: arena.wall must be positive", ErrInvalidSpec)
	case g.Catalog == "":
		return fmt.Errorf("%w: catalog is required", ErrInvalidSpec)
	case len(g.Levels) == 0:
		return fmt.Errorf("%w: at least one level is required", ErrInvalidSpec)
	}
	for i, s := range g.Portal.Spawns {
		if s.Normal.Vector().Length() == 0 {
			return fmt.Errorf("%w: portal.spawns[%d].normal is zero", ErrInvalidSpec, i)
		}
	}
	seen := make(map[string]bool, len(g.Levels))
	for i, l := range g.Levels {
		if l.Name == "" || l.Script == "" {
			return fmt.Errorf("%w: levels[%d] needs a name and a script", ErrInvalidSpec, i)
		}
		if seen[l.Name] {
			return fmt.Errorf("%w: duplicate level %q", ErrInvalidSpec, l.Name)
		}
		seen[l.Name] = true
	}
	return nil
}

// Level returns the level named name.
func (g *GameSpec) Level(name string) (LevelSpec, bool) {
	for _, l := range g.Levels {
		if l.Name == name {
			return l, true
		}
	}
	return LevelSpec{}, false
}

type BoxesSpec struct {
	Boxes []BoxSpec `yaml:"boxes"`
}

type BoxSpec struct {
	Name    string `yaml:"name"`
	Corners [4]Vec `yaml:"corners"`
}

func LoadBoxesSpec(filename string) (*BoxesSpec, error) {
	spec, err := LoadSpec[BoxesSpec](filename)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// DecodeBoxes parses box templates from raw yaml.
func DecodeBoxes(data []byte) (*BoxesSpec, error) {
	var spec BoxesSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("prefabs: unmarshal boxes: %w", err)
	}
	return &spec, nil
}

// Entries converts the templates for the catalog encoder.
func (b *BoxesSpec) Entries() []catalog.Entry {
	out := make([]catalog.Entry, 0, len(b.Boxes))
	for _, box := range b.Boxes {
		e := catalog.Entry{Name: box.Name}
		for i, c := range box.Corners {
			e.Corners[i] = c.Vector()
		}
		out = append(out, e)
	}
	return out
}

// LoadCatalog decodes the bbx catalog named by the game spec.
func LoadCatalog(name string, opts ...catalog.Option) (*catalog.Catalog, error) {
	data, err := Load(name)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load %s: %w", name, err)
	}
	c, err := catalog.Load(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", name, err)
	}
	return c, nil
}
