package component

// Physics holds the ballistic constants shared by every food.
type Physics struct {
	Gravity       float64
	TerminalSpeed float64
}

var PhysicsComponent = NewComponent[Physics]()
