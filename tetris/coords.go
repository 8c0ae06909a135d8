package tetris

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

// ErrInvalidBoard is returned for boards without a positive lane and row count.
var ErrInvalidBoard = errors.New("invalid board dimensions")

// IVec is a discrete (column, row) coordinate, either relative to a piece's
// pivot block or relative to the board's bottom-left cell.
type IVec struct {
	X, Y int
}

func (v IVec) Add(o IVec) IVec {
	return IVec{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v IVec) Sub(o IVec) IVec {
	return IVec{X: v.X - o.X, Y: v.Y - o.Y}
}

// Board is the playfield size in cells. Physics space is measured in block
// sides with its origin at the center of the board.
type Board struct {
	Lanes int
	Rows  int
}

// NewBoard validates the dimensions.
func NewBoard(lanes, rows int) (Board, error) {
	if lanes <= 0 || rows <= 0 {
		return Board{}, fmt.Errorf("%w: %dx%d", ErrInvalidBoard, lanes, rows)
	}
	return Board{Lanes: lanes, Rows: rows}, nil
}

// FloorY is the physics y of the board's bottom edge.
func (b Board) FloorY() float64 {
	return -float64(b.Rows) * 0.5
}

// LeftEdgeX is the physics x of the board's left edge.
func (b Board) LeftEdgeX() float64 {
	return -float64(b.Lanes) * 0.5
}

// ToPhysics returns the physics position of a cell's center.
func (b Board) ToPhysics(cell IVec) cp.Vector {
	return cp.Vector{
		X: b.LeftEdgeX() + float64(cell.X) + 0.5,
		Y: b.FloorY() + float64(cell.Y) + 0.5,
	}
}

// FromPhysics returns the cell containing p.
func (b Board) FromPhysics(p cp.Vector) IVec {
	return IVec{
		X: int(math.Floor(p.X - b.LeftEdgeX())),
		Y: int(math.Floor(p.Y - b.FloorY())),
	}
}

// TranslateToBoardCenterTop moves a piece from tetromino space to board space
// so that it is horizontally centered (rounding left) and its highest cell
// sits on the top row.
func (b Board) TranslateToBoardCenterTop(coords [4]IVec) [4]IVec {
	minX, maxX, maxY := coords[0].X, coords[0].X, coords[0].Y
	for _, c := range coords[1:] {
		minX = min(minX, c.X)
		maxX = max(maxX, c.X)
		maxY = max(maxY, c.Y)
	}

	width := maxX - minX + 1
	offset := IVec{
		X: (b.Lanes-width)/2 - minX,
		Y: (b.Rows - 1) - maxY,
	}

	var out [4]IVec
	for i, c := range coords {
		out[i] = c.Add(offset)
	}
	return out
}
