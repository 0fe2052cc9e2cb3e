package component

// Food names the catalog template a movable object was spawned from.
type Food struct {
	Name string
}

var FoodComponent = NewComponent[Food]()
