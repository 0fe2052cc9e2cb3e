package component

import "github.com/milk9111/portalchef/level"

// LevelState is the singleton holding the running level.
type LevelState struct {
	Level level.Level
}

var LevelStateComponent = NewComponent[LevelState]()
