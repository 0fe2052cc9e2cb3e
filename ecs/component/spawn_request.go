package component

// SpawnRequest asks the spawn system to turn its entity into a food built
// from the named catalog template.
type SpawnRequest struct {
	Food string
	X, Y float64
}

var SpawnRequestComponent = NewComponent[SpawnRequest]()
