package ecs

import "reflect"

// iComponentStorage is an interface for a type-erased component storage.
type iComponentStorage interface {
	componentType() reflect.Type
	Put(id EntityId, item any) bool
	Delete(id EntityId) bool
	Get(id EntityId) any
	Has(id EntityId) bool
	Len() int
	Entities() []EntityId
}
