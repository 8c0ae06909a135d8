// Package config loads the game configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable consulted when no path is given.
const EnvPath = "TUMBLETRIS_CONFIG"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the root of the configuration file.
type Config struct {
	Board   BoardConfig   `yaml:"board"`
	Piece   PieceConfig   `yaml:"piece"`
	Input   InputConfig   `yaml:"input"`
	Physics PhysicsConfig `yaml:"physics"`
	Render  RenderConfig  `yaml:"render"`
	Log     LogConfig     `yaml:"log"`
}

type BoardConfig struct {
	Lanes       int     `yaml:"lanes"`
	Rows        int     `yaml:"rows"`
	FloorHeight float64 `yaml:"floor_height"`
	Friction    float64 `yaml:"friction"`
}

type PieceConfig struct {
	// Randomizer is "uniform" or "bag".
	Randomizer     string  `yaml:"randomizer"`
	Joints         bool    `yaml:"joints"`
	Seed           uint64  `yaml:"seed"`
	Mass           float64 `yaml:"mass"`
	LinearDamping  float64 `yaml:"linear_damping"`
	AngularDamping float64 `yaml:"angular_damping"`
	Friction       float64 `yaml:"friction"`
}

type InputConfig struct {
	MovementForce float64 `yaml:"movement_force"`
	Torque        float64 `yaml:"torque"`
}

type PhysicsConfig struct {
	Gravity            float64 `yaml:"gravity"`
	Iterations         int     `yaml:"iterations"`
	SleepTimeThreshold float64 `yaml:"sleep_time_threshold"`
	Timestep           float64 `yaml:"timestep"`
	MaxSubsteps        int     `yaml:"max_substeps"`
}

type RenderConfig struct {
	BlockPixelSize int `yaml:"block_pixel_size"`
	// BlockColor is a #rrggbb hex string.
	BlockColor string `yaml:"block_color"`
	Title      string `yaml:"title"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// File enables a rolling log file alongside stderr when set.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// The smallest board every piece kind fits on: the I piece is four wide and
// the others are two tall.
const (
	MinLanes = 4
	MinRows  = 2
)

const (
	RandomizerUniform = "uniform"
	RandomizerBag     = "bag"
)

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Board: BoardConfig{
			Lanes:       10,
			Rows:        20,
			FloorHeight: 2,
			Friction:    0.5,
		},
		Piece: PieceConfig{
			Randomizer:     RandomizerUniform,
			Joints:         true,
			Mass:           1,
			LinearDamping:  1,
			AngularDamping: 0,
			Friction:       0.5,
		},
		Input: InputConfig{
			MovementForce: 20,
			Torque:        20,
		},
		Physics: PhysicsConfig{
			Gravity:            -9.81,
			Iterations:         10,
			SleepTimeThreshold: 0.5,
			Timestep:           1.0 / 60.0,
			MaxSubsteps:        4,
		},
		Render: RenderConfig{
			BlockPixelSize: 30,
			BlockColor:     "#4fc3f7",
			Title:          "tumbletris",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result. An empty
// path falls back to $TUMBLETRIS_CONFIG; with neither set the defaults are
// returned.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings that would build degenerate geometry or an
// unusable solver.
func (c Config) Validate() error {
	switch {
	case c.Board.Lanes < MinLanes:
		return invalid("board.lanes", c.Board.Lanes)
	case c.Board.Rows < MinRows:
		return invalid("board.rows", c.Board.Rows)
	case c.Board.FloorHeight <= 0:
		return invalid("board.floor_height", c.Board.FloorHeight)
	case c.Piece.Randomizer != RandomizerUniform && c.Piece.Randomizer != RandomizerBag:
		return invalid("piece.randomizer", c.Piece.Randomizer)
	case c.Piece.Mass <= 0:
		return invalid("piece.mass", c.Piece.Mass)
	case c.Piece.LinearDamping < 0:
		return invalid("piece.linear_damping", c.Piece.LinearDamping)
	case c.Piece.AngularDamping < 0:
		return invalid("piece.angular_damping", c.Piece.AngularDamping)
	case c.Input.MovementForce < 0:
		return invalid("input.movement_force", c.Input.MovementForce)
	case c.Input.Torque < 0:
		return invalid("input.torque", c.Input.Torque)
	case c.Physics.Iterations <= 0:
		return invalid("physics.iterations", c.Physics.Iterations)
	case c.Physics.SleepTimeThreshold <= 0:
		return invalid("physics.sleep_time_threshold", c.Physics.SleepTimeThreshold)
	case c.Physics.Timestep <= 0:
		return invalid("physics.timestep", c.Physics.Timestep)
	case c.Physics.MaxSubsteps <= 0:
		return invalid("physics.max_substeps", c.Physics.MaxSubsteps)
	case c.Render.BlockPixelSize <= 0:
		return invalid("render.block_pixel_size", c.Render.BlockPixelSize)
	}

	if _, err := ParseColor(c.Render.BlockColor); err != nil {
		return fmt.Errorf("%w: render.block_color: %v", ErrInvalid, err)
	}
	return nil
}

func invalid(field string, value any) error {
	return fmt.Errorf("%w: %s = %v", ErrInvalid, field, value)
}
