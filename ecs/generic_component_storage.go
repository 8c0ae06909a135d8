package ecs

import (
	"reflect"

	"github.com/kamstrup/intmap"
)

// ComponentRegistry manages component type registration for an ECS instance.
// Each Storage instance has its own ComponentRegistry, allowing multiple
// independent ECS systems to coexist without interference.
type ComponentRegistry struct {
	factories map[reflect.Type]func() iComponentStorage
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() iComponentStorage),
	}
}

// RegisterComponent registers a new component type with the given registry.
// This must be called for each component type before it can be used.
func RegisterComponent[T any](r *ComponentRegistry) {
	t := reflect.TypeFor[T]()
	r.factories[t] = func() iComponentStorage {
		return &genericComponentStorage[T]{
			typ:   t,
			slots: intmap.New[EntityId, int](64),
		}
	}
}

// Registered reports whether the component type has been registered.
func (r *ComponentRegistry) Registered(t reflect.Type) bool {
	_, ok := r.factories[t]
	return ok
}

func (r *ComponentRegistry) getFactory(t reflect.Type) func() iComponentStorage {
	return r.factories[t]
}

const (
	genericBlockSize = 64
)

// genericComponentStorage stores components of type T in fixed-size blocks so
// pointers handed out by Get stay valid while other entities are added.
// slots maps an owning entity to its position in the blocks.
type genericComponentStorage[T any] struct {
	typ       reflect.Type
	blocks    []*[genericBlockSize]T
	owners    []EntityId
	slots     *intmap.Map[EntityId, int]
	freeSlots []int
}

func (cs *genericComponentStorage[T]) componentType() reflect.Type {
	return cs.typ
}

// Put stores item for the entity, overwriting any existing value.
// Returns false if item is neither T nor *T.
func (cs *genericComponentStorage[T]) Put(id EntityId, item any) bool {
	var value T
	switch v := item.(type) {
	case T:
		value = v
	case *T:
		value = *v
	default:
		return false
	}

	if pos, ok := cs.slots.Get(id); ok {
		*cs.at(pos) = value
		return true
	}

	var pos int
	if n := len(cs.freeSlots); n > 0 {
		pos = cs.freeSlots[n-1]
		cs.freeSlots = cs.freeSlots[:n-1]
		cs.owners[pos] = id
	} else {
		pos = len(cs.owners)
		if pos/genericBlockSize >= len(cs.blocks) {
			cs.blocks = append(cs.blocks, new([genericBlockSize]T))
		}
		cs.owners = append(cs.owners, id)
	}

	*cs.at(pos) = value
	cs.slots.Put(id, pos)
	return true
}

func (cs *genericComponentStorage[T]) at(pos int) *T {
	return &cs.blocks[pos/genericBlockSize][pos%genericBlockSize]
}

// Get returns a *T for the entity, or nil.
func (cs *genericComponentStorage[T]) Get(id EntityId) any {
	pos, ok := cs.slots.Get(id)
	if !ok {
		return nil
	}
	return cs.at(pos)
}

func (cs *genericComponentStorage[T]) Has(id EntityId) bool {
	return cs.slots.Has(id)
}

// Delete zeroes the entity's slot and returns it to the free list.
func (cs *genericComponentStorage[T]) Delete(id EntityId) bool {
	pos, ok := cs.slots.Get(id)
	if !ok {
		return false
	}

	var zero T
	*cs.at(pos) = zero
	cs.owners[pos] = 0
	cs.slots.Del(id)
	cs.freeSlots = append(cs.freeSlots, pos)
	return true
}

func (cs *genericComponentStorage[T]) Len() int {
	return cs.slots.Len()
}

// Entities returns a snapshot of the owning entities in slot order.
func (cs *genericComponentStorage[T]) Entities() []EntityId {
	ids := make([]EntityId, 0, cs.slots.Len())
	for _, id := range cs.owners {
		if id != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
