// Package physics mirrors rigid-body components into a Chipmunk2D space
// (github.com/jakecoffman/cp) and writes simulation results back onto the
// owning entities.
//
// Gameplay code never touches cp objects directly. It spawns entities carrying
// RigidBody and Collider descriptors, writes ExternalForce, and reads
// Activation and Transform, which are refreshed after every physics step.
package physics

import (
	"github.com/jakecoffman/cp"
	"github.com/plus3/tumbletris/ecs"
)

// BodyType selects how the solver treats a body.
type BodyType int

const (
	// BodyDynamic bodies have finite mass and react to forces and contacts.
	BodyDynamic BodyType = iota
	// BodyStatic bodies have infinite mass and never move.
	BodyStatic
)

func (t BodyType) String() string {
	switch t {
	case BodyDynamic:
		return "dynamic"
	case BodyStatic:
		return "static"
	default:
		return "unknown"
	}
}

// RigidBody describes the body to create. Position and Angle are only read
// when the body is first created; afterwards Transform carries the live pose.
type RigidBody struct {
	Type           BodyType
	Position       cp.Vector
	Angle          float64
	Mass           float64
	LinearDamping  float64
	AngularDamping float64
}

// Collider is a box centered on its body.
type Collider struct {
	HalfExtents cp.Vector
	Friction    float64
	Elasticity  float64
}

// ExternalForce is the force accumulator for a dynamic body. It is applied on
// every physics step until it is overwritten; the physics step never clears it.
type ExternalForce struct {
	Force  cp.Vector
	Torque float64
}

// IsZero reports whether there is nothing to apply.
func (f ExternalForce) IsZero() bool {
	return f.Force.X == 0 && f.Force.Y == 0 && f.Torque == 0
}

// Activation reports whether the solver has put the body to sleep.
// It starts out false and is only set by the physics step.
type Activation struct {
	Sleeping bool
}

// Transform is the body pose after the most recent physics step.
type Transform struct {
	Position cp.Vector
	Angle    float64
}

// Joint pins BodyA and BodyB together at a shared point. Anchors are in the
// local frame of their respective body.
type Joint struct {
	BodyA   ecs.EntityId
	BodyB   ecs.EntityId
	AnchorA cp.Vector
	AnchorB cp.Vector
}

// RegisterComponents registers every physics component type.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[RigidBody](registry)
	ecs.RegisterComponent[Collider](registry)
	ecs.RegisterComponent[ExternalForce](registry)
	ecs.RegisterComponent[Activation](registry)
	ecs.RegisterComponent[Transform](registry)
	ecs.RegisterComponent[Joint](registry)
}
