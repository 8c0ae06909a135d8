package tetris

import (
	"time"

	"github.com/plus3/tumbletris/ecs"
	"github.com/plus3/tumbletris/physics"
)

// ActivityReader reports the sleep state of a body. found is false when the
// entity no longer exists or has no physics body.
type ActivityReader interface {
	Sleeping(id ecs.EntityId) (asleep, found bool)
}

// ForceWriter gives access to a body's force accumulator, or nil.
type ForceWriter interface {
	Force(id ecs.EntityId) *physics.ExternalForce
}

// ComponentBodies reads physics components straight from storage.
type ComponentBodies struct {
	Reader ecs.ComponentReader
}

func (b ComponentBodies) Sleeping(id ecs.EntityId) (bool, bool) {
	activation := ecs.ReadComponent[physics.Activation](b.Reader, id)
	if activation == nil {
		return false, false
	}
	return activation.Sleeping, true
}

func (b ComponentBodies) Force(id ecs.EntityId) *physics.ExternalForce {
	return ecs.ReadComponent[physics.ExternalForce](b.Reader, id)
}

// Observer is notified of piece lifecycle events and frame timings.
type Observer interface {
	PieceSpawned(kind Kind)
	PieceRested(kind Kind)
	FrameCompleted(elapsed time.Duration, activeBlocks int)
}

type nopObserver struct{}

func (nopObserver) PieceSpawned(Kind)                  {}
func (nopObserver) PieceRested(Kind)                   {}
func (nopObserver) FrameCompleted(time.Duration, int) {}
