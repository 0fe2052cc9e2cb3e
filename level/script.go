package level

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"
	"go.uber.org/zap"
)

var ErrInvalidScript = errors.New("level: invalid script")

// Every level script defines these callbacks; state is a map that survives
// between calls.
//
//	on_init(engine, state)
//	on_update(engine, state, elapsed)
//	on_collision(engine, state, food, pot) -> bool
//	on_fall_off(engine, state, food)
const dispatchScript = `
if __phase == "init" {
	on_init(__engine, __state)
} else if __phase == "update" {
	on_update(__engine, __state, __elapsed)
} else if __phase == "collision" {
	__result = on_collision(__engine, __state, __food, __pot)
} else if __phase == "fall_off" {
	on_fall_off(__engine, __state, __food)
}
`

// Script is a Level driven by a tengo script.
type Script struct {
	name     string
	title    string
	compiled *tengo.Compiled
	state    *tengo.Map
	pots     []cp.Vector

	score  int
	meter  float64
	status Status

	foods   []Food
	pending []Spawn

	rng *rand.Rand
	log *zap.Logger
}

type Option func(*Script)

func WithLogger(l *zap.Logger) Option {
	return func(s *Script) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSeed makes the script's random source deterministic.
func WithSeed(seed int64) Option {
	return func(s *Script) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// NewScript compiles src and runs its on_init callback. Spawns requested by
// on_init are returned by the first Update.
func NewScript(name string, src []byte, opts ...Option) (*Script, error) {
	s := &Script{
		name:  name,
		title: name,
		state: &tengo.Map{Value: map[string]tengo.Object{}},
		rng:   rand.New(rand.NewSource(1)),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + dispatchScript))
	for _, v := range []struct {
		name  string
		value any
	}{
		{"__phase", ""},
		{"__engine", map[string]any{}},
		{"__state", map[string]any{}},
		{"__elapsed", 0.0},
		{"__food", ""},
		{"__pot", 0},
		{"__result", false},
	} {
		if err := script.Add(v.name, v.value); err != nil {
			return nil, fmt.Errorf("level: %s: %w", name, err)
		}
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidScript, name, err)
	}
	s.compiled = compiled

	// a no-op pass evaluates the top-level declarations
	if err := s.run("noop"); err != nil {
		return nil, err
	}
	if err := s.readGlobals(); err != nil {
		return nil, err
	}
	if err := s.run("init"); err != nil {
		return nil, err
	}
	s.log.Debug("level: script loaded",
		zap.String("level", name),
		zap.Int("pots", len(s.pots)),
		zap.Int("score", s.score))
	return s, nil
}

func (s *Script) readGlobals() error {
	if s.compiled.IsDefined("title") {
		if t := strings.TrimSpace(objectAsString(s.compiled.Get("title").Object())); t != "" {
			s.title = t
		}
	}
	if s.compiled.IsDefined("start_score") {
		s.score = s.compiled.Get("start_score").Int()
	}
	if !s.compiled.IsDefined("pots") {
		return nil
	}
	arr, ok := s.compiled.Get("pots").Object().(*tengo.Array)
	if !ok {
		return fmt.Errorf("%w: %s: pots must be an array", ErrInvalidScript, s.name)
	}
	for i, item := range arr.Value {
		pair, ok := item.(*tengo.Array)
		if !ok || len(pair.Value) != 2 {
			return fmt.Errorf("%w: %s: pot %d must be [x, y]", ErrInvalidScript, s.name, i)
		}
		x, okX := tengo.ToFloat64(pair.Value[0])
		y, okY := tengo.ToFloat64(pair.Value[1])
		if !okX || !okY {
			return fmt.Errorf("%w: %s: pot %d has non-numeric coordinates", ErrInvalidScript, s.name, i)
		}
		s.pots = append(s.pots, cp.Vector{X: x, Y: y})
	}
	return nil
}

func (s *Script) run(phase string) error {
	if err := s.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := s.compiled.Set("__engine", s.engine()); err != nil {
		return err
	}
	if err := s.compiled.Set("__state", s.state); err != nil {
		return err
	}
	if err := s.compiled.Run(); err != nil {
		return fmt.Errorf("level: %s %s: %w", s.name, phase, err)
	}
	return nil
}

func (s *Script) Name() string      { return s.name }
func (s *Script) Title() string     { return s.title }
func (s *Script) Score() int        { return s.score }
func (s *Script) Meter() float64    { return s.meter }
func (s *Script) Status() Status    { return s.status }
func (s *Script) Pots() []cp.Vector { return append([]cp.Vector(nil), s.pots...) }

// Update advances the level clock. Once the level is won or lost it stops
// ticking and asks for nothing.
func (s *Script) Update(elapsed float64, foods []Food) []Spawn {
	if s.status == Playing {
		s.foods = foods
		if err := s.compiled.Set("__elapsed", elapsed); err != nil {
			s.log.Error("level: set elapsed", zap.Error(err))
		} else if err := s.run("update"); err != nil {
			s.log.Error("level: update failed", zap.String("level", s.name), zap.Error(err))
		}
		s.foods = nil
	}
	out := s.pending
	s.pending = nil
	return out
}

func (s *Script) Collision(food string, pot int) bool {
	if s.status != Playing {
		return false
	}
	if err := s.compiled.Set("__food", food); err != nil {
		return false
	}
	if err := s.compiled.Set("__pot", pot); err != nil {
		return false
	}
	if err := s.compiled.Set("__result", false); err != nil {
		return false
	}
	if err := s.run("collision"); err != nil {
		s.log.Error("level: collision failed", zap.String("level", s.name), zap.Error(err))
		return false
	}
	return s.compiled.Get("__result").Bool()
}

func (s *Script) FallOff(food string) {
	if s.status != Playing {
		return
	}
	if err := s.compiled.Set("__food", food); err != nil {
		return
	}
	if err := s.run("fall_off"); err != nil {
		s.log.Error("level: fall off failed", zap.String("level", s.name), zap.Error(err))
	}
}

func (s *Script) finish(st Status) {
	if s.status != Playing {
		return
	}
	s.status = st
	s.log.Info("level: finished",
		zap.String("level", s.name),
		zap.Stringer("status", st),
		zap.Int("score", s.score))
}

func (s *Script) engine() *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["spawn"] = &tengo.UserFunction{Name: "spawn", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 3 {
			return tengo.FalseValue, nil
		}
		name := strings.TrimSpace(objectAsString(args[0]))
		x, okX := tengo.ToFloat64(args[1])
		y, okY := tengo.ToFloat64(args[2])
		if name == "" || !okX || !okY {
			return tengo.FalseValue, nil
		}
		s.pending = append(s.pending, Spawn{Food: name, X: x, Y: y})
		return tengo.TrueValue, nil
	}}

	values["add_score"] = &tengo.UserFunction{Name: "add_score", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		n, ok := tengo.ToInt(args[0])
		if !ok {
			return tengo.FalseValue, nil
		}
		s.score += n
		return &tengo.Int{Value: int64(s.score)}, nil
	}}

	values["score"] = &tengo.UserFunction{Name: "score", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(s.score)}, nil
	}}

	values["meter"] = &tengo.UserFunction{Name: "meter", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		v, ok := tengo.ToFloat64(args[0])
		if !ok {
			return tengo.FalseValue, nil
		}
		s.meter = v
		return tengo.TrueValue, nil
	}}

	values["win"] = &tengo.UserFunction{Name: "win", Value: func(args ...tengo.Object) (tengo.Object, error) {
		s.finish(Won)
		return tengo.TrueValue, nil
	}}

	values["lose"] = &tengo.UserFunction{Name: "lose", Value: func(args ...tengo.Object) (tengo.Object, error) {
		s.finish(Lost)
		return tengo.TrueValue, nil
	}}

	values["random"] = &tengo.UserFunction{Name: "random", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return &tengo.Int{Value: 0}, nil
		}
		n, ok := tengo.ToInt64(args[0])
		if !ok || n <= 0 {
			return &tengo.Int{Value: 0}, nil
		}
		return &tengo.Int{Value: s.rng.Int63n(n)}, nil
	}}

	values["foods"] = &tengo.UserFunction{Name: "foods", Value: func(args ...tengo.Object) (tengo.Object, error) {
		out := make([]tengo.Object, 0, len(s.foods))
		for _, f := range s.foods {
			out = append(out, foodObject(f))
		}
		return &tengo.ImmutableArray{Value: out}, nil
	}}

	values["food"] = &tengo.UserFunction{Name: "food", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.UndefinedValue, nil
		}
		name := objectAsString(args[0])
		for _, f := range s.foods {
			if f.Name == name {
				return foodObject(f), nil
			}
		}
		return tengo.UndefinedValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		s.log.Info("level: script", zap.String("level", s.name), zap.String("msg", strings.Join(parts, " ")))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func foodObject(f Food) tengo.Object {
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"name": &tengo.String{Value: f.Name},
		"x":    &tengo.Float{Value: f.X},
		"y":    &tengo.Float{Value: f.Y},
	}}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
