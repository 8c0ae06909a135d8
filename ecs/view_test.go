package ecs_test

import (
	"testing"

	"github.com/plus3/tumbletris/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewIter(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	a := storage.Spawn(Position{X: 1}, Velocity{DX: 1})
	b := storage.Spawn(Position{X: 2}, Velocity{DX: 2}, Health{Current: 5})
	storage.Spawn(Position{X: 3})
	storage.Spawn(Velocity{DX: 4})

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](storage)

	seen := make(map[ecs.EntityId]float32)
	for id, item := range view.Iter() {
		assert.Equal(t, item.Position.X, item.Velocity.DX)
		seen[id] = item.Position.X
	}

	assert.Equal(t, map[ecs.EntityId]float32{a: 1, b: 2}, seen)
	assert.Equal(t, 2, view.Count())
}

func TestViewMutatesStorage(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Position{X: 1}, Velocity{DX: 10})

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](storage)

	for item := range view.Values() {
		item.Position.X += item.Velocity.DX
	}

	assert.Equal(t, float32(11), ecs.ReadComponent[Position](storage, id).X)
}

func TestViewEntityIdField(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Position{X: 1})

	view := ecs.NewView[struct {
		ecs.EntityId
		*Position
	}](storage)

	for item := range view.Values() {
		assert.Equal(t, id, item.EntityId)
	}

	item := view.Get(id)
	require.NotNil(t, item)
	assert.Equal(t, id, item.EntityId)
}

func TestViewOptionalFields(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	withHealth := storage.Spawn(Position{X: 1}, Health{Current: 3})
	without := storage.Spawn(Position{X: 2})

	view := ecs.NewView[struct {
		*Position
		Health *Health `ecs:"optional"`
	}](storage)

	got := view.Get(withHealth)
	require.NotNil(t, got)
	require.NotNil(t, got.Health)
	assert.Equal(t, 3, got.Health.Current)

	got = view.Get(without)
	require.NotNil(t, got)
	assert.Nil(t, got.Health)

	assert.Equal(t, 2, view.Count())
}

func TestViewOptionalResetBetweenEntities(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.Spawn(Position{X: 1}, Health{Current: 3})
	storage.Spawn(Position{X: 2})

	view := ecs.NewView[struct {
		*Position
		Health *Health `ecs:"optional"`
	}](storage)

	for item := range view.Values() {
		if item.Position.X == 2 {
			assert.Nil(t, item.Health)
		} else {
			assert.NotNil(t, item.Health)
		}
	}
}

func TestViewGetMissing(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Position{})

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](storage)

	assert.Nil(t, view.Get(id))
	storage.Delete(id)
	assert.Nil(t, ecs.NewView[struct{ *Position }](storage).Get(id))
}

func TestViewNoStoreYet(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[struct{ *Velocity }](storage)

	assert.Equal(t, 0, view.Count())

	storage.Spawn(Velocity{})
	assert.Equal(t, 1, view.Count())
}

func TestViewInvalidShapes(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	assert.Panics(t, func() { ecs.NewView[int](storage) })
	assert.Panics(t, func() { ecs.NewView[struct{ Position }](storage) })
	assert.Panics(t, func() { ecs.NewView[struct{ ecs.EntityId }](storage) })
	assert.Panics(t, func() {
		ecs.NewView[struct {
			Position *Position `ecs:"optional"`
		}](storage)
	})
	assert.Panics(t, func() {
		ecs.NewView[struct {
			*Velocity
			Position *Position `ecs:"sometimes"`
		}](storage)
	})
}

func TestViewSkipsEntitiesDeletedDuringIteration(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	first := storage.Spawn(Position{X: 1})
	second := storage.Spawn(Position{X: 2})

	view := ecs.NewView[struct {
		ecs.EntityId
		*Position
	}](storage)

	var visited []ecs.EntityId
	for item := range view.Values() {
		visited = append(visited, item.EntityId)
		if item.EntityId == first {
			storage.Delete(second)
		}
	}

	assert.Equal(t, []ecs.EntityId{first}, visited)
}
