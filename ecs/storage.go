package ecs

import (
	"reflect"
	"sort"
)

// Storage is the main ECS storage interface
type Storage struct {
	registry   *ComponentRegistry
	slots      []entitySlot
	free       []uint32
	stores     map[reflect.Type]iComponentStorage
	singletons map[reflect.Type]any
	alive      int
}

// NewStorage creates a new ECS storage system with the given component registry
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		registry: registry,
		// slot 0 is a sentinel so the zero EntityId is never valid
		slots:      make([]entitySlot, 1, 64),
		stores:     make(map[reflect.Type]iComponentStorage),
		singletons: make(map[reflect.Type]any),
	}
}

// reserve allocates an id without making it visible to queries.
func (s *Storage) reserve() EntityId {
	var index uint32
	if n := len(s.free); n > 0 {
		index = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		index = uint32(len(s.slots))
		s.slots = append(s.slots, entitySlot{})
	}

	slot := &s.slots[index]
	slot.state = slotReserved
	return NewEntityId(slot.generation, index)
}

// materialize attaches components to a reserved id and marks it alive.
// Returns false if the reservation was released in the meantime.
func (s *Storage) materialize(id EntityId, components []any) bool {
	slot := s.slot(id)
	if slot == nil || slot.state != slotReserved {
		return false
	}

	for _, comp := range components {
		s.storeFor(componentTypeOf(comp)).Put(id, comp)
	}
	slot.state = slotAlive
	s.alive++
	return true
}

func (s *Storage) slot(id EntityId) *entitySlot {
	index := id.Index()
	if index == 0 || int(index) >= len(s.slots) {
		return nil
	}
	slot := &s.slots[index]
	if slot.generation != id.Generation() {
		return nil
	}
	return slot
}

func (s *Storage) release(id EntityId, slot *entitySlot) {
	slot.generation++
	slot.state = slotFree
	s.free = append(s.free, id.Index())
}

// storeFor returns the component store for t, creating it on first use.
func (s *Storage) storeFor(t reflect.Type) iComponentStorage {
	store, ok := s.stores[t]
	if ok {
		return store
	}

	factory := s.registry.getFactory(t)
	if factory == nil {
		panic("component type " + t.String() + " not registered")
	}
	store = factory()
	s.stores[t] = store
	return store
}

// Spawn creates a new entity with the provided components
func (s *Storage) Spawn(components ...any) EntityId {
	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}

	id := s.reserve()
	s.materialize(id, components)
	return id
}

// Alive reports whether id names an entity that currently exists
func (s *Storage) Alive(id EntityId) bool {
	slot := s.slot(id)
	return slot != nil && slot.state == slotAlive
}

// Delete removes all data related to the entity ID. Deleting a reserved id
// cancels the pending spawn; unknown or stale ids are ignored.
func (s *Storage) Delete(id EntityId) {
	slot := s.slot(id)
	if slot == nil || slot.state == slotFree {
		return
	}

	if slot.state == slotAlive {
		for _, store := range s.stores {
			store.Delete(id)
		}
		s.alive--
	}
	s.release(id, slot)
}

// AddComponent attaches (or replaces) a component on a live entity
func (s *Storage) AddComponent(id EntityId, component any) bool {
	if !s.Alive(id) {
		return false
	}
	return s.storeFor(componentTypeOf(component)).Put(id, component)
}

// RemoveComponent detaches a component; an entity left without components is deleted
func (s *Storage) RemoveComponent(id EntityId, compType reflect.Type) bool {
	if !s.Alive(id) {
		return false
	}

	store, ok := s.stores[compType]
	if !ok || !store.Delete(id) {
		return false
	}

	for _, other := range s.stores {
		if other.Has(id) {
			return true
		}
	}
	s.Delete(id)
	return true
}

// GetComponent returns a pointer to the component for the given entity ID and
// component type, or nil if the entity is gone or lacks the component
func (s *Storage) GetComponent(id EntityId, compType reflect.Type) any {
	store, ok := s.stores[compType]
	if !ok || !s.Alive(id) {
		return nil
	}
	return store.Get(id)
}

// HasComponent checks if an entity has a specific component type
func (s *Storage) HasComponent(id EntityId, compType reflect.Type) bool {
	store, ok := s.stores[compType]
	if !ok || !s.Alive(id) {
		return false
	}
	return store.Has(id)
}

// ComponentTypes lists the component types attached to a live entity, sorted by name
func (s *Storage) ComponentTypes(id EntityId) []reflect.Type {
	if !s.Alive(id) {
		return nil
	}

	var types []reflect.Type
	for t, store := range s.stores {
		if store.Has(id) {
			types = append(types, t)
		}
	}
	sort.Slice(types, func(i, j int) bool {
		return types[i].String() < types[j].String()
	})
	return types
}

// EntityCount returns the number of live entities
func (s *Storage) EntityCount() int {
	return s.alive
}

// AddSingleton stores value as the singleton of its type, replacing any previous one
// in place, so pointers returned earlier stay valid
func (s *Storage) AddSingleton(value any) {
	t := componentTypeOf(value)
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if existing, ok := s.singletons[t]; ok {
		reflect.ValueOf(existing).Elem().Set(v)
		return
	}

	ptr := reflect.New(t)
	ptr.Elem().Set(v)
	s.singletons[t] = ptr.Interface()
}

// ReadSingleton fills target (a **T) with the stored singleton of type T.
// Returns false if no such singleton exists.
func (s *Storage) ReadSingleton(target any) bool {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Ptr {
		panic("ReadSingleton target must be a pointer to a pointer")
	}

	ptr := s.getSingleton(v.Elem().Type().Elem())
	if ptr == nil {
		return false
	}
	v.Elem().Set(reflect.ValueOf(ptr))
	return true
}

func (s *Storage) getSingleton(t reflect.Type) any {
	return s.singletons[t]
}

// StorageStats summarises storage contents.
type StorageStats struct {
	TotalEntityCount   int
	ComponentTypeCount int
	ComponentBreakdown []ComponentStats
	SingletonCount     int
	SingletonTypes     []string
}

// ComponentStats describes one component store.
type ComponentStats struct {
	Type  string
	Count int
}

// CollectStats gathers entity/component/singleton statistics, sorted by type name
func (s *Storage) CollectStats() *StorageStats {
	stats := &StorageStats{
		TotalEntityCount:   s.alive,
		ComponentTypeCount: len(s.stores),
		SingletonCount:     len(s.singletons),
	}

	for t, store := range s.stores {
		stats.ComponentBreakdown = append(stats.ComponentBreakdown, ComponentStats{
			Type:  t.String(),
			Count: store.Len(),
		})
	}
	sort.Slice(stats.ComponentBreakdown, func(i, j int) bool {
		return stats.ComponentBreakdown[i].Type < stats.ComponentBreakdown[j].Type
	})

	for t := range s.singletons {
		stats.SingletonTypes = append(stats.SingletonTypes, t.String())
	}
	sort.Strings(stats.SingletonTypes)

	return stats
}

// componentTypeOf returns the value type of a component, dereferencing pointers
func componentTypeOf(component any) reflect.Type {
	compType := reflect.TypeOf(component)
	if compType == nil {
		panic("component cannot be nil")
	}

	// If it's a pointer, get the underlying type
	if compType.Kind() == reflect.Ptr {
		compType = compType.Elem()
	}

	// Components can be structs or primitives (int, string, etc.)
	// But not pointers, maps, channels, or functions (those aren't value types)
	switch compType.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func:
		panic("components cannot be pointers, maps, channels, or functions")
	}

	return compType
}

type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

// ReadComponent returns the entity's component of type T, or nil
func ReadComponent[T any](reader ComponentReader, entityId EntityId) *T {
	comp, _ := reader.GetComponent(entityId, reflect.TypeFor[T]()).(*T)
	return comp
}
