package tetris_test

import (
	"math/rand/v2"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/plus3/tumbletris/ecs"
	"github.com/plus3/tumbletris/internal/config"
	"github.com/plus3/tumbletris/physics"
	"github.com/plus3/tumbletris/tetris"
)

const frame = 1.0 / 60.0

func newTestGame(t *testing.T, keyboard tetris.Keyboard, mutate ...func(*config.Config)) *tetris.Game {
	t.Helper()

	cfg := config.Default()
	for _, m := range mutate {
		m(&cfg)
	}

	game, err := tetris.NewGame(cfg,
		tetris.WithLogger(zaptest.NewLogger(t)),
		tetris.WithKeyboard(keyboard),
		tetris.WithRand(rand.New(rand.NewPCG(42, 1))),
	)
	require.NoError(t, err)
	return game
}

func disableJoints(c *config.Config) { c.Piece.Joints = false }

func TestNewGame(t *testing.T) {
	game := newTestGame(t, nil)

	assert.Equal(t, tetris.Board{Lanes: 10, Rows: 20}, game.Session.Board)
	assert.Equal(t, uint64(1), game.Session.Spawned)
	assert.Equal(t, 4, game.Session.Piece.Blocks.Len())
	assert.NotEmpty(t, game.Session.Piece.Joints)

	camera := ecs.ReadComponent[tetris.Camera](game.Storage, game.Session.Camera)
	require.NotNil(t, camera)
	assert.Equal(t, 30.0, camera.PixelsPerUnit)
	assert.NotZero(t, game.Session.BlockAppearance.A)

	floors := ecs.NewView[struct{ *tetris.Floor }](game.Storage)
	assert.Equal(t, 1, floors.Count())

	blocks := ecs.NewView[struct{ *tetris.Block }](game.Storage)
	assert.Equal(t, 4, blocks.Count(), "exactly one active piece")

	stats := game.Scheduler.GetStats()
	require.Len(t, stats.Systems, 3)
	assert.Equal(t, "InputSystem", stats.Systems[0].Name)
	assert.Equal(t, "RestSystem", stats.Systems[1].Name)
	assert.Equal(t, "System", stats.Systems[2].Name)
}

func TestNewGameValidatesConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"zero lanes", func(c *config.Config) { c.Board.Lanes = 0 }, "board.lanes"},
		{"board narrower than a piece", func(c *config.Config) { c.Board.Lanes = 2 }, "board.lanes"},
		{"flat floor", func(c *config.Config) { c.Board.FloorHeight = 0 }, "board.floor_height"},
		{"no timestep", func(c *config.Config) { c.Physics.Timestep = 0 }, "physics.timestep"},
		{"no substeps", func(c *config.Config) { c.Physics.MaxSubsteps = 0 }, "physics.max_substeps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)

			game, err := tetris.NewGame(cfg)
			require.ErrorIs(t, err, config.ErrInvalid)
			assert.Contains(t, err.Error(), tt.field)
			assert.Nil(t, game)
		})
	}
}

func TestFirstTickBuildsPhysics(t *testing.T) {
	game := newTestGame(t, nil)
	game.Tick(frame)

	// floor, four blocks, and the joints of the first piece
	assert.Equal(t, 5, game.Physics.World.BodyCount())
	assert.Equal(t, len(game.Session.Piece.Joints), game.Physics.World.JointCount())
	assert.Equal(t, 1, game.Physics.LastSubsteps)
}

func TestInputMovesPiece(t *testing.T) {
	keys := heldKeys{}
	game := newTestGame(t, keys, disableJoints)
	game.Tick(frame)

	startX := meanX(game)
	keys[tetris.ActionRight] = true
	for range 30 {
		game.Tick(frame)
	}
	assert.Greater(t, meanX(game), startX+0.1)

	keys[tetris.ActionRight] = false
	keys[tetris.ActionLeft] = true
	movedRight := meanX(game)
	for range 60 {
		game.Tick(frame)
	}
	assert.Less(t, meanX(game), movedRight)
	assert.True(t, game.Input.Last.Left)
}

func meanX(game *tetris.Game) float64 {
	sum := 0.0
	ids := game.Session.Piece.Blocks.IDs()
	for _, id := range ids {
		sum += ecs.ReadComponent[physics.Transform](game.Storage, id).Position.X
	}
	return sum / float64(len(ids))
}

func TestForcePersistsThroughNeutralInput(t *testing.T) {
	keys := heldKeys{}
	game := newTestGame(t, keys)
	game.Tick(frame)

	keys[tetris.ActionRight] = true
	game.Tick(frame)
	keys[tetris.ActionRight] = false
	for range 10 {
		game.Tick(frame)
	}

	ids := game.Session.Piece.Blocks.IDs()
	require.Len(t, ids, 4)
	for _, id := range ids {
		force := ecs.ReadComponent[physics.ExternalForce](game.Storage, id)
		require.NotNil(t, force)
		assert.Equal(t, cp.Vector{X: 20, Y: 0}, force.Force, "released keys leave the last force in place")

		stored, ok := game.Physics.World.Force(id)
		require.True(t, ok)
		assert.Equal(t, 20.0, stored.Force.X)
	}
	assert.Equal(t, tetris.InputSnapshot{}, game.Input.Last)
}

func TestPieceRestsAndRespawns(t *testing.T) {
	obs := newCountingObserver()
	cfg := config.Default()
	cfg.Piece.Joints = false
	game, err := tetris.NewGame(cfg,
		tetris.WithLogger(zaptest.NewLogger(t)),
		tetris.WithObserver(obs),
		tetris.WithRand(rand.New(rand.NewPCG(3, 4))),
	)
	require.NoError(t, err)

	bodies := tetris.ComponentBodies{Reader: game.Storage}
	resting := false
	for i := 0; i < 3000 && !resting; i++ {
		game.Tick(frame)
		require.Zero(t, game.Respawns(), "respawned before the piece came to rest")
		resting = tetris.PieceAtRest(game.Session, bodies)
	}
	require.True(t, resting, "first piece never came to rest")

	old := game.Session.Piece.Blocks.IDs()
	game.Tick(frame)

	require.Equal(t, uint64(1), game.Respawns())
	assert.Equal(t, uint64(2), game.Session.Spawned)
	assert.Equal(t, 1, obs.rested)

	piece := game.Session.Piece
	require.Equal(t, 4, piece.Blocks.Len())
	for _, id := range old {
		assert.False(t, piece.Blocks.Has(id), "new registry must be disjoint")
		assert.True(t, game.Storage.Alive(id), "resting blocks stay on the board")
	}
	for _, id := range piece.Blocks.IDs() {
		assert.True(t, game.Storage.Alive(id), "new blocks exist once the frame ends")
	}

	blocks := ecs.NewView[struct{ *tetris.Block }](game.Storage)
	assert.Equal(t, 8, blocks.Count())

	// the new piece is airborne, so nothing fires on the following frame
	game.Tick(frame)
	assert.Equal(t, uint64(1), game.Respawns())
	assert.Equal(t, 4, obs.blocks)
}

func TestJointedPieceRestsAndRespawns(t *testing.T) {
	game := newTestGame(t, nil)
	require.NotEmpty(t, game.Session.Piece.Joints)

	bodies := tetris.ComponentBodies{Reader: game.Storage}
	resting := false
	for i := 0; i < 3000 && !resting; i++ {
		game.Tick(frame)
		require.Zero(t, game.Respawns(), "respawned before the piece came to rest")
		resting = tetris.PieceAtRest(game.Session, bodies)
	}
	require.True(t, resting, "jointed piece never came to rest")

	rested := game.Session.Piece
	oldJoints := append([]ecs.EntityId(nil), rested.Joints...)
	game.Tick(frame)

	require.Equal(t, uint64(1), game.Respawns())
	for _, id := range oldJoints {
		assert.False(t, game.Storage.Alive(id), "joints of the rested piece are torn down")
	}
	for _, id := range rested.Blocks.IDs() {
		assert.True(t, game.Storage.Alive(id), "rested blocks stay on the board")
	}

	piece := game.Session.Piece
	assert.Equal(t, rested.Sequence+1, piece.Sequence)
	assert.Len(t, piece.Joints, len(tetris.LayoutFor(piece.Kind).Joints))

	// only the new piece's joints reach the space
	game.Tick(frame)
	assert.Equal(t, len(piece.Joints), game.Physics.World.JointCount())
}

func TestJointsCanBeDisabled(t *testing.T) {
	game := newTestGame(t, nil, disableJoints)
	game.Tick(frame)

	joints := ecs.NewView[struct{ *physics.Joint }](game.Storage)
	assert.Zero(t, joints.Count())
	assert.Zero(t, game.Physics.World.JointCount())
}

func TestJointedPieceHoldsTogether(t *testing.T) {
	game := newTestGame(t, nil)

	for range 60 {
		game.Tick(frame)
	}

	require.NotZero(t, game.Physics.World.JointCount())
	piece := game.Session.Piece
	layout := tetris.LayoutFor(piece.Kind)

	ids := piece.Blocks.IDs()
	require.Len(t, ids, 4)

	// adjacent blocks of an airborne jointed piece keep their spacing
	for _, id := range piece.Joints {
		joint := ecs.ReadComponent[physics.Joint](game.Storage, id)
		require.NotNil(t, joint)
		a := ecs.ReadComponent[physics.Transform](game.Storage, joint.BodyA).Position
		b := ecs.ReadComponent[physics.Transform](game.Storage, joint.BodyB).Position
		assert.InDelta(t, 1.0, a.Distance(b), 0.1, "%s joint", piece.Kind)
	}
	assert.Len(t, piece.Joints, len(layout.Joints))
}

type Overlay struct{ Frames int }

type overlaySystem struct {
	Overlays ecs.Query[struct{ *Overlay }]
	Blocks   ecs.Query[struct{ *tetris.Block }]
	counted  int
}

func (s *overlaySystem) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Overlays.Values() {
		item.Overlay.Frames++
	}
	s.counted = s.Blocks.Len()
}

func TestExtraSystemsRunAfterPhysics(t *testing.T) {
	sys := &overlaySystem{}
	game, err := tetris.NewGame(config.Default(),
		tetris.WithRand(rand.New(rand.NewPCG(7, 7))),
		tetris.WithComponents(func(r *ecs.ComponentRegistry) { ecs.RegisterComponent[Overlay](r) }),
		tetris.WithSystems(sys),
	)
	require.NoError(t, err)
	id := game.Storage.Spawn(Overlay{})

	game.Tick(frame)
	game.Tick(frame)

	stats := game.Scheduler.GetStats()
	require.Len(t, stats.Systems, 4)
	assert.Equal(t, "overlaySystem", stats.Systems[3].Name)
	assert.Equal(t, 2, ecs.ReadComponent[Overlay](game.Storage, id).Frames)
	assert.Equal(t, 4, sys.counted)
}
