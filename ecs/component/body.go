package component

import "github.com/milk9111/portalchef/portal"

// Body is the simulated state of a movable object. The body's ID is the
// owning entity.
type Body = portal.Body

var BodyComponent = NewComponent[Body]()
