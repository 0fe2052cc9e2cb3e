package common

const (
	BaseWidth  = 1280
	BaseHeight = 720
)

// ViewMargin is the number of world units shown beyond the arena's floor and
// ceiling.
const ViewMargin = 3.0
