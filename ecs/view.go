package ecs

import (
	"iter"
	"reflect"
)

var entityIdType = reflect.TypeFor[EntityId]()

// View represents a query for entities with a specific combination of components
// The type T should be a struct with embedded pointer fields for each component type
// Named fields can be marked as optional using the `ecs:"optional"` struct tag
// A field of type EntityId (embedded or named) receives the entity's id
type View[T any] struct {
	storage *Storage
	fields  []viewField
	idField int
}

type viewField struct {
	index    int
	typ      reflect.Type
	optional bool
}

// NewView creates a new view for the given struct type
// Embedded fields are always required
func NewView[T any](storage *Storage) *View[T] {
	structType := reflect.TypeFor[T]()

	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	v := &View[T]{
		storage: storage,
		idField: -1,
	}

	required := 0
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if field.Type == entityIdType {
			v.idField = i
			continue
		}

		if field.Type.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types or EntityId")
		}

		// Parse struct tag to check if component is optional
		// Embedded fields (field.Anonymous) are always required
		isOptional := false
		if !field.Anonymous {
			if tag := field.Tag.Get("ecs"); tag != "" {
				if tag != "optional" {
					panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
				}
				isOptional = true
			}
		}
		if !isOptional {
			required++
		}

		v.fields = append(v.fields, viewField{
			index:    i,
			typ:      field.Type.Elem(),
			optional: isOptional,
		})
	}

	if required == 0 {
		panic("View struct needs at least one required component")
	}

	return v
}

// Fill populates the provided struct pointer with component data for the given entity
// Returns false if the entity is gone or missing any required components
// Optional components are set to nil if not present
func (v *View[T]) Fill(id EntityId, ptr *T) bool {
	if !v.storage.Alive(id) {
		return false
	}

	out := reflect.ValueOf(ptr).Elem()
	for _, f := range v.fields {
		var component any
		if store, ok := v.storage.stores[f.typ]; ok {
			component = store.Get(id)
		}

		if component == nil {
			if !f.optional {
				return false
			}
			out.Field(f.index).SetZero()
			continue
		}
		out.Field(f.index).Set(reflect.ValueOf(component))
	}

	if v.idField >= 0 {
		out.Field(v.idField).Set(reflect.ValueOf(id))
	}
	return true
}

// Get returns a populated view struct for the given entity, or nil if the entity
// doesn't have all the required components
func (v *View[T]) Get(id EntityId) *T {
	var result T
	if !v.Fill(id, &result) {
		return nil
	}
	return &result
}

// candidates returns the owners of the smallest required store, which bounds
// the set of entities that can match.
func (v *View[T]) candidates() []EntityId {
	var smallest iComponentStorage
	for _, f := range v.fields {
		if f.optional {
			continue
		}
		store, ok := v.storage.stores[f.typ]
		if !ok {
			return nil
		}
		if smallest == nil || store.Len() < smallest.Len() {
			smallest = store
		}
	}
	return smallest.Entities()
}

// Iter returns an iterator over all entities that have all the required components for this view
// The iterator yields (EntityId, T) pairs where T is the populated view struct
// Entities deleted between Iter calls are skipped
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		var result T
		for _, id := range v.candidates() {
			if !v.Fill(id, &result) {
				continue
			}
			if !yield(id, result) {
				return
			}
		}
	}
}

// Values returns an iterator over just the view structs (without entity IDs)
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Count returns the number of matching entities
func (v *View[T]) Count() int {
	n := 0
	for range v.Iter() {
		n++
	}
	return n
}
