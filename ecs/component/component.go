package component

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
)

// ComponentKind is a typed key for one component store. The zero kind is
// invalid; kinds come from NewComponentKind.
type ComponentKind[T any] struct {
	id ComponentID
}

// NewComponentKind allocates a fresh kind for T and records T's type name
// for diagnostics.
func NewComponentKind[T any]() ComponentKind[T] {
	id := ComponentID(nextComponentID.Add(1))
	var zero T
	kindNames.Store(id, fmt.Sprintf("%T", zero))
	return ComponentKind[T]{id: id}
}

func (k ComponentKind[T]) ID() ComponentID {
	return k.id
}

func (k ComponentKind[T]) Valid() bool {
	return k.id != 0
}

func (k ComponentKind[T]) String() string {
	return k.id.String()
}

type ComponentHandle[T any] struct {
	kind ComponentKind[T]
}

func NewComponent[T any]() ComponentHandle[T] {
	return ComponentHandle[T]{kind: NewComponentKind[T]()}
}

func (h ComponentHandle[T]) Kind() ComponentKind[T] {
	return h.kind
}

type ComponentID uint32

// String returns the component's type name, e.g. "component.Food".
func (id ComponentID) String() string {
	if name, ok := kindNames.Load(id); ok {
		return name.(string)
	}
	return "component#" + strconv.FormatUint(uint64(id), 10)
}

var (
	nextComponentID atomic.Uint32
	kindNames       sync.Map
)
