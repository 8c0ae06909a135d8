package tetris

import (
	"github.com/plus3/tumbletris/ecs"
	"go.uber.org/zap"
)

// PieceAtRest reports whether every block of the current piece is asleep.
// An empty registry is never at rest, and a block the physics world no longer
// knows about counts as awake.
func PieceAtRest(session *Session, activity ActivityReader) bool {
	if session.Piece.Empty() {
		return false
	}

	rest := true
	session.Piece.Blocks.ForEach(func(id ecs.EntityId) bool {
		asleep, found := activity.Sleeping(id)
		rest = found && asleep
		return rest
	})
	return rest
}

// RespawnDriver replaces the current piece once it has come to rest.
type RespawnDriver struct {
	Spawner  *Spawner
	Observer Observer
	Logger   *zap.Logger
}

// Step despawns the resting piece's joints and spawns the next piece. The
// blocks stay in the world. Returns true if a respawn happened.
func (d *RespawnDriver) Step(entities Entities, session *Session, activity ActivityReader) bool {
	if !PieceAtRest(session, activity) {
		return false
	}

	rested := session.Piece
	for _, joint := range rested.Joints {
		entities.Delete(joint)
	}
	session.Piece.Joints = nil

	if d.Observer != nil {
		d.Observer.PieceRested(rested.Kind)
	}
	if d.Logger != nil {
		d.Logger.Info("piece at rest",
			zap.Stringer("kind", rested.Kind),
			zap.Uint64("piece", rested.Sequence),
			zap.Int("joints_removed", len(rested.Joints)))
	}

	d.Spawner.Spawn(entities, session)
	return true
}

// RestSystem runs the RespawnDriver against the frame's deferred commands, so
// the next piece appears in storage once the frame ends.
type RestSystem struct {
	Session *Session
	Driver  *RespawnDriver

	Respawns uint64
}

func (s *RestSystem) Execute(frame *ecs.UpdateFrame) {
	if s.Driver.Step(frame.Commands, s.Session, ComponentBodies{Reader: frame.Storage}) {
		s.Respawns++
	}
}
