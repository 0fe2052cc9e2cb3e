package component

// Arena stores the world-space limits of the play field.
type Arena struct {
	Ceiling        float64
	Wall           float64
	Floor          float64
	PotTop         float64
	PotHalfWidth   float64
	CeilingDamping float64
	WallDamping    float64
}

var ArenaComponent = NewComponent[Arena]()
