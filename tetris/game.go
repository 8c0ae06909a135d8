package tetris

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/plus3/tumbletris/ecs"
	"github.com/plus3/tumbletris/internal/config"
	"github.com/plus3/tumbletris/physics"
)

// Game wires the gameplay systems and the physics step into one scheduler.
type Game struct {
	Session   *Session
	Storage   *ecs.Storage
	Scheduler *ecs.Scheduler
	Floor     ecs.EntityId

	Input   *InputSystem
	Rest    *RestSystem
	Physics *physics.System

	observer Observer
	logger   *zap.Logger
}

type gameOptions struct {
	logger   *zap.Logger
	observer Observer
	keyboard Keyboard
	rng      *rand.Rand
	systems  []ecs.System
	register []func(*ecs.ComponentRegistry)
}

// Option customises NewGame.
type Option func(*gameOptions)

func WithLogger(logger *zap.Logger) Option {
	return func(o *gameOptions) { o.logger = logger }
}

func WithObserver(observer Observer) Option {
	return func(o *gameOptions) { o.observer = observer }
}

func WithKeyboard(keyboard Keyboard) Option {
	return func(o *gameOptions) { o.keyboard = keyboard }
}

// WithRand fixes the source of piece kinds. It overrides piece.seed.
func WithRand(rng *rand.Rand) Option {
	return func(o *gameOptions) { o.rng = rng }
}

// WithSystems registers extra systems after the physics step, such as
// rendering or debug overlays.
func WithSystems(systems ...ecs.System) Option {
	return func(o *gameOptions) { o.systems = append(o.systems, systems...) }
}

// WithComponents registers extra component types, for use by the systems
// passed to WithSystems.
func WithComponents(register ...func(*ecs.ComponentRegistry)) Option {
	return func(o *gameOptions) { o.register = append(o.register, register...) }
}

// NewGame builds a running game from cfg: the floor is in place and the first
// piece has been spawned. cfg is validated first, so a hand-built Config gets
// the same checks as one from config.Load.
func NewGame(cfg config.Config, opts ...Option) (*Game, error) {
	var o gameOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.observer == nil {
		o.observer = nopObserver{}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	board, err := NewBoard(cfg.Board.Lanes, cfg.Board.Rows)
	if err != nil {
		return nil, err
	}
	appearance, err := config.ParseColor(cfg.Render.BlockColor)
	if err != nil {
		return nil, fmt.Errorf("block colour: %w", err)
	}

	rng := o.rng
	if rng == nil {
		seed := cfg.Piece.Seed
		if seed == 0 {
			seed = rand.Uint64()
		}
		rng = rand.New(rand.NewPCG(seed, seed>>32|seed<<32))
	}

	var randomizer Randomizer = NewUniformRandomizer(rng)
	if cfg.Piece.Randomizer == config.RandomizerBag {
		randomizer = NewBagRandomizer(rng)
	}

	registry := ecs.NewComponentRegistry()
	physics.RegisterComponents(registry)
	RegisterComponents(registry)
	for _, register := range o.register {
		register(registry)
	}
	storage := ecs.NewStorage(registry)

	session := NewSession(board)
	session.BlockAppearance = appearance
	session.Camera = storage.Spawn(Camera{PixelsPerUnit: float64(cfg.Render.BlockPixelSize)})

	logger := o.logger.With(zap.Stringer("session", session.ID))

	spawner := &Spawner{
		Randomizer: randomizer,
		Block: BlockSpec{
			Mass:           cfg.Piece.Mass,
			LinearDamping:  cfg.Piece.LinearDamping,
			AngularDamping: cfg.Piece.AngularDamping,
			Friction:       cfg.Piece.Friction,
		},
		Joints:   cfg.Piece.Joints,
		Observer: o.observer,
		Logger:   o.logger,
	}

	floor := SetupBoard(storage, board, cfg.Board.FloorHeight, cfg.Board.Friction)
	spawner.Spawn(storage, session)

	world := physics.NewWorld(physics.Config{
		Gravity:            cp.Vector{X: 0, Y: cfg.Physics.Gravity},
		Iterations:         uint(cfg.Physics.Iterations),
		SleepTimeThreshold: cfg.Physics.SleepTimeThreshold,
		Timestep:           cfg.Physics.Timestep,
		MaxSubsteps:        cfg.Physics.MaxSubsteps,
	}, logger.Named("physics"))

	g := &Game{
		Session:   session,
		Storage:   storage,
		Scheduler: ecs.NewScheduler(storage),
		Floor:     floor,
		Input: &InputSystem{
			Session:  session,
			Keyboard: o.keyboard,
			Controller: Controller{
				MovementForce: cfg.Input.MovementForce,
				Torque:        cfg.Input.Torque,
			},
		},
		Rest: &RestSystem{
			Session: session,
			Driver: &RespawnDriver{
				Spawner:  spawner,
				Observer: o.observer,
				Logger:   logger,
			},
		},
		Physics:  physics.NewSystem(world),
		observer: o.observer,
		logger:   logger,
	}

	g.Scheduler.Register(g.Input)
	g.Scheduler.Register(g.Rest)
	g.Scheduler.Register(g.Physics)
	for _, system := range o.systems {
		g.Scheduler.Register(system)
	}

	logger.Info("game started",
		zap.Int("lanes", board.Lanes),
		zap.Int("rows", board.Rows),
		zap.String("randomizer", cfg.Piece.Randomizer),
		zap.Bool("joints", cfg.Piece.Joints))

	return g, nil
}

// Tick runs one frame: input, rest detection, then the physics step.
func (g *Game) Tick(dt float64) {
	start := time.Now()
	g.Scheduler.Once(dt)
	g.observer.FrameCompleted(time.Since(start), g.Session.Piece.Blocks.Len())
}

// Respawns returns how many times a resting piece has been replaced.
func (g *Game) Respawns() uint64 {
	return g.Rest.Respawns
}

// Logger returns the game's session-scoped logger.
func (g *Game) Logger() *zap.Logger {
	return g.logger
}
