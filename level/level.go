package level

import "github.com/jakecoffman/cp"

// Status is the progress of a level.
type Status int

const (
	Playing Status = iota
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "playing"
	}
}

// Spawn asks the simulation to create a food at a position.
type Spawn struct {
	Food string
	X, Y float64
}

// Food is the read-only view of a live food handed to a level each tick.
type Food struct {
	Name string
	X, Y float64
}

// Level holds the rules of one stage: what spawns, what scores and when the
// stage ends. Levels never touch the simulation directly.
type Level interface {
	Name() string
	Title() string
	// Pots are the positions of the pot mouths the level uses, if any.
	Pots() []cp.Vector
	Update(elapsed float64, foods []Food) []Spawn
	// Collision reports whether food is consumed by landing in pot.
	Collision(food string, pot int) bool
	FallOff(food string)
	Score() int
	// Meter is a level specific gauge in [0, 100], e.g. oven heat.
	Meter() float64
	Status() Status
}
