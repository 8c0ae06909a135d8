package tetris

import (
	"github.com/plus3/tumbletris/ecs"
)

// Action is a logical control, bound to physical keys by the frontend.
type Action int

const (
	ActionLeft Action = iota
	ActionRight
	ActionRotateCCW
	ActionRotateCW
)

// Keyboard reports whether the keys bound to an action are held this frame.
type Keyboard interface {
	Held(action Action) bool
}

// InputSnapshot is the control state sampled once per frame.
type InputSnapshot struct {
	Left      bool
	Right     bool
	RotateCCW bool
	RotateCW  bool
}

// Sample reads every action from keyboard. A nil keyboard yields an empty
// snapshot.
func Sample(keyboard Keyboard) InputSnapshot {
	if keyboard == nil {
		return InputSnapshot{}
	}
	return InputSnapshot{
		Left:      keyboard.Held(ActionLeft),
		Right:     keyboard.Held(ActionRight),
		RotateCCW: keyboard.Held(ActionRotateCCW),
		RotateCW:  keyboard.Held(ActionRotateCW),
	}
}

// Direction is +1 for right, -1 for left and 0 when both or neither are held.
func (in InputSnapshot) Direction() int {
	return b2i(in.Right) - b2i(in.Left)
}

// Spin is +1 for counter-clockwise, -1 for clockwise, 0 otherwise.
func (in InputSnapshot) Spin() int {
	return b2i(in.RotateCCW) - b2i(in.RotateCW)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Controller turns input into forces on the blocks of the current piece.
type Controller struct {
	MovementForce float64
	Torque        float64
}

// Apply writes the horizontal force, and the torque when rotation is held, to
// every block of the current piece. Neutral input leaves the accumulators
// untouched. Blocks without a force accumulator are skipped. Returns the
// number of blocks written.
func (c Controller) Apply(in InputSnapshot, session *Session, forces ForceWriter) int {
	dir := in.Direction()
	spin := in.Spin()
	if c.Torque <= 0 {
		spin = 0
	}
	if dir == 0 && spin == 0 {
		return 0
	}

	written := 0
	session.Piece.Blocks.ForEach(func(id ecs.EntityId) bool {
		force := forces.Force(id)
		if force == nil {
			return true
		}
		if dir != 0 {
			force.Force.X = float64(dir) * c.MovementForce
			force.Force.Y = 0
		}
		if spin != 0 {
			force.Torque = float64(spin) * c.Torque
		}
		written++
		return true
	})
	return written
}

// InputSystem samples the keyboard and drives the Controller each frame.
type InputSystem struct {
	Session    *Session
	Keyboard   Keyboard
	Controller Controller

	// Last is the snapshot taken during the most recent frame.
	Last InputSnapshot
}

func (s *InputSystem) Execute(frame *ecs.UpdateFrame) {
	s.Last = Sample(s.Keyboard)
	s.Controller.Apply(s.Last, s.Session, ComponentBodies{Reader: frame.Storage})
}
