package tetris

import (
	"github.com/jakecoffman/cp"
	"github.com/plus3/tumbletris/ecs"
	"github.com/plus3/tumbletris/physics"
	"go.uber.org/zap"
)

// BlockSpec is the physical description shared by every spawned block.
type BlockSpec struct {
	Mass           float64
	LinearDamping  float64
	AngularDamping float64
	Friction       float64
}

// DefaultBlockSpec returns unit-mass blocks with linear damping only.
func DefaultBlockSpec() BlockSpec {
	return BlockSpec{
		Mass:           1,
		LinearDamping:  1,
		AngularDamping: 0,
		Friction:       0.5,
	}
}

// Spawner builds new pieces at the top of the board.
type Spawner struct {
	Randomizer Randomizer
	Block      BlockSpec
	// Joints pins adjacent blocks together. Without it the four blocks fall
	// as independent bodies.
	Joints   bool
	Observer Observer
	Logger   *zap.Logger
}

// Spawn creates the blocks and joints of a new piece and installs them as the
// session's current piece, replacing the previous registry.
func (s *Spawner) Spawn(entities Entities, session *Session) PieceRegistry {
	kind := s.Randomizer.Next()
	layout := LayoutFor(kind)
	cells := session.Board.TranslateToBoardCenterTop(layout.Coords)

	session.Spawned++
	piece := PieceRegistry{
		Kind:     kind,
		Sequence: session.Spawned,
		Blocks:   NewBlockSet(),
	}

	logger := s.logger().With(
		zap.Stringer("session", session.ID),
		zap.Stringer("kind", kind),
		zap.Uint64("piece", piece.Sequence),
	)

	var blocks [4]ecs.EntityId
	for i, cell := range cells {
		position := session.Board.ToPhysics(cell)
		blocks[i] = entities.Spawn(
			Block{Kind: kind},
			physics.RigidBody{
				Type:           physics.BodyDynamic,
				Position:       position,
				Mass:           s.Block.Mass,
				LinearDamping:  s.Block.LinearDamping,
				AngularDamping: s.Block.AngularDamping,
			},
			physics.Collider{
				HalfExtents: cp.Vector{X: 0.5, Y: 0.5},
				Friction:    s.Block.Friction,
			},
			physics.ExternalForce{},
			physics.Activation{},
			physics.Transform{Position: position},
		)
		piece.Blocks.Add(blocks[i])

		logger.Debug("block spawned",
			zap.Int("col", cell.X),
			zap.Int("row", cell.Y),
			zap.Float64("x", position.X),
			zap.Float64("y", position.Y))
	}

	if s.Joints {
		for _, spec := range layout.Joints {
			// anchors meet at the midpoint of the shared edge
			d := layout.Coords[spec.B].Sub(layout.Coords[spec.A])
			offset := cp.Vector{X: float64(d.X) / 2, Y: float64(d.Y) / 2}
			piece.Joints = append(piece.Joints, entities.Spawn(physics.Joint{
				BodyA:   blocks[spec.A],
				BodyB:   blocks[spec.B],
				AnchorA: offset,
				AnchorB: offset.Neg(),
			}))
		}
	}

	session.Piece = piece
	s.observer().PieceSpawned(kind)
	logger.Debug("piece spawned", zap.Int("joints", len(piece.Joints)))

	return piece
}

func (s *Spawner) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Spawner) observer() Observer {
	if s.Observer == nil {
		return nopObserver{}
	}
	return s.Observer
}
