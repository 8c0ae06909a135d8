// Package render turns the physics state of a game into screen-space sprites.
// It does not draw; the frontend paints the sprite list however it likes.
package render

import (
	"image/color"

	"github.com/jakecoffman/cp"

	"github.com/plus3/tumbletris/ecs"
	"github.com/plus3/tumbletris/physics"
	"github.com/plus3/tumbletris/tetris"
)

// FloorColor is used for the static floor.
var FloorColor = color.RGBA{R: 90, G: 90, B: 90, A: 255}

// Sprite is a filled rectangle in screen pixels, centered on X, Y. Angle is
// in radians, positive clockwise on screen.
type Sprite struct {
	X, Y          float64
	Width, Height float64
	Angle         float64
	Color         color.RGBA
}

// Projection maps world units to screen pixels. The world origin sits at the
// screen center and the y axis points up.
type Projection struct {
	PixelsPerUnit float64
	ScreenWidth   int
	ScreenHeight  int
}

func (p Projection) ToScreen(v cp.Vector) (x, y float64) {
	x = float64(p.ScreenWidth)/2 + v.X*p.PixelsPerUnit
	y = float64(p.ScreenHeight)/2 - v.Y*p.PixelsPerUnit
	return x, y
}

func (p Projection) sprite(t *physics.Transform, c *physics.Collider, clr color.RGBA) Sprite {
	x, y := p.ToScreen(t.Position)
	return Sprite{
		X:      x,
		Y:      y,
		Width:  2 * c.HalfExtents.X * p.PixelsPerUnit,
		Height: 2 * c.HalfExtents.Y * p.PixelsPerUnit,
		Angle:  -t.Angle,
		Color:  clr,
	}
}

// System rebuilds Sprites every frame. Register it after the physics step so
// the poses are current.
type System struct {
	Session *tetris.Session

	// ScreenWidth and ScreenHeight follow the window; the frontend updates
	// them from its layout callback.
	ScreenWidth  int
	ScreenHeight int

	Floors ecs.Query[struct {
		*tetris.Floor
		*physics.Transform
		*physics.Collider
	}]
	Blocks ecs.Query[struct {
		*tetris.Block
		*physics.Transform
		*physics.Collider
	}]

	Sprites []Sprite
}

func (s *System) Execute(frame *ecs.UpdateFrame) {
	projection := s.Projection(frame.Storage)

	s.Sprites = s.Sprites[:0]
	for floor := range s.Floors.Values() {
		s.Sprites = append(s.Sprites, projection.sprite(floor.Transform, floor.Collider, FloorColor))
	}
	for block := range s.Blocks.Values() {
		s.Sprites = append(s.Sprites, projection.sprite(block.Transform, block.Collider, s.Session.BlockAppearance))
	}
}

// Projection reads the session camera. Without one, a block is one pixel.
func (s *System) Projection(reader ecs.ComponentReader) Projection {
	p := Projection{
		PixelsPerUnit: 1,
		ScreenWidth:   s.ScreenWidth,
		ScreenHeight:  s.ScreenHeight,
	}
	if camera := ecs.ReadComponent[tetris.Camera](reader, s.Session.Camera); camera != nil {
		p.PixelsPerUnit = camera.PixelsPerUnit
	}
	return p
}
