package tetris

import (
	"github.com/jakecoffman/cp"
	"github.com/plus3/tumbletris/ecs"
	"github.com/plus3/tumbletris/physics"
)

// SetupBoard spawns the static floor directly under the board's bottom edge,
// spanning its full width.
func SetupBoard(entities Entities, board Board, floorHeight, friction float64) ecs.EntityId {
	center := cp.Vector{X: 0, Y: board.FloorY() - floorHeight/2}
	return entities.Spawn(
		Floor{},
		physics.RigidBody{
			Type:     physics.BodyStatic,
			Position: center,
		},
		physics.Collider{
			HalfExtents: cp.Vector{X: float64(board.Lanes) / 2, Y: floorHeight / 2},
			Friction:    friction,
		},
		physics.Transform{Position: center},
	)
}
