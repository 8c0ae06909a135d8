package tetris_test

import (
	"time"

	"github.com/plus3/tumbletris/ecs"
	"github.com/plus3/tumbletris/physics"
	"github.com/plus3/tumbletris/tetris"
)

// fakeEntities hands out sequential ids and records every call in order.
type fakeEntities struct {
	next       uint32
	log        []string
	components map[ecs.EntityId][]any
	deleted    []ecs.EntityId
	onSpawn    func()
}

func newFakeEntities() *fakeEntities {
	return &fakeEntities{components: map[ecs.EntityId][]any{}}
}

func (f *fakeEntities) Spawn(components ...any) ecs.EntityId {
	if f.onSpawn != nil {
		f.onSpawn()
	}
	f.next++
	id := ecs.NewEntityId(0, f.next)
	f.components[id] = components
	f.log = append(f.log, "spawn")
	return id
}

func (f *fakeEntities) Delete(id ecs.EntityId) {
	f.deleted = append(f.deleted, id)
	f.log = append(f.log, "delete")
}

func findComponent[T any](components []any) (T, bool) {
	for _, c := range components {
		if v, ok := c.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// fakeBodies answers sleep queries and hands out force accumulators.
type fakeBodies struct {
	asleep map[ecs.EntityId]bool
	forces map[ecs.EntityId]*physics.ExternalForce
}

func newFakeBodies() *fakeBodies {
	return &fakeBodies{
		asleep: map[ecs.EntityId]bool{},
		forces: map[ecs.EntityId]*physics.ExternalForce{},
	}
}

func (f *fakeBodies) Sleeping(id ecs.EntityId) (bool, bool) {
	asleep, ok := f.asleep[id]
	return asleep, ok
}

func (f *fakeBodies) Force(id ecs.EntityId) *physics.ExternalForce {
	return f.forces[id]
}

// fixedRandomizer deals kinds from a list, repeating the last one.
type fixedRandomizer struct {
	kinds []tetris.Kind
}

func (r *fixedRandomizer) Next() tetris.Kind {
	kind := r.kinds[0]
	if len(r.kinds) > 1 {
		r.kinds = r.kinds[1:]
	}
	return kind
}

type countingObserver struct {
	spawned map[tetris.Kind]int
	rested  int
	frames  int
	blocks  int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{spawned: map[tetris.Kind]int{}}
}

func (o *countingObserver) PieceSpawned(kind tetris.Kind) { o.spawned[kind]++ }
func (o *countingObserver) PieceRested(tetris.Kind)       { o.rested++ }
func (o *countingObserver) FrameCompleted(_ time.Duration, blocks int) {
	o.frames++
	o.blocks = blocks
}

type heldKeys map[tetris.Action]bool

func (k heldKeys) Held(action tetris.Action) bool { return k[action] }
