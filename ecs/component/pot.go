package component

import "github.com/jakecoffman/cp"

// Pot is a scoring target. Index is the position of the pot in the level's
// pot list; Mouth is the region a food center must enter to land in it.
type Pot struct {
	Index    int
	Position cp.Vector
	Mouth    cp.BB
}

var PotComponent = NewComponent[Pot]()
