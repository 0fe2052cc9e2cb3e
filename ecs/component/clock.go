package component

// Clock is the singleton frame clock. Elapsed is the length of the current
// tick in seconds.
type Clock struct {
	Elapsed float64
	Time    float64
	Tick    uint64
}

var ClockComponent = NewComponent[Clock]()
