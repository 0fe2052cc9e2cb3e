package ecs

// EventKind identifies what happened to an entity during a tick.
type EventKind uint8

const (
	EventSpawned EventKind = iota + 1
	EventTeleported
	EventBounced
	EventPotHit
	EventFellOff
)

func (k EventKind) String() string {
	switch k {
	case EventSpawned:
		return "spawned"
	case EventTeleported:
		return "teleported"
	case EventBounced:
		return "bounced"
	case EventPotHit:
		return "pot_hit"
	case EventFellOff:
		return "fell_off"
	default:
		return "unknown"
	}
}

// Event is one entry of the world's event queue. Data holds a kind specific
// payload.
type Event struct {
	Kind EventKind
	Data any
}

// EventQueue is a FIFO of events raised by systems, drained once per tick.
type EventQueue struct {
	items []Event
}

func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Count returns the number of queued events of kind.
func (q *EventQueue) Count(kind EventKind) int {
	if q == nil {
		return 0
	}
	n := 0
	for _, evt := range q.items {
		if evt.Kind == kind {
			n++
		}
	}
	return n
}
