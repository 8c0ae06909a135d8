package physics

import (
	"github.com/jakecoffman/cp"
	"github.com/plus3/tumbletris/ecs"
	"go.uber.org/zap"
)

// Config holds solver parameters. Units are block sides and seconds.
type Config struct {
	Gravity            cp.Vector
	Iterations         uint
	SleepTimeThreshold float64
	Timestep           float64
	MaxSubsteps        int
}

// DefaultConfig mirrors the defaults the game shipped with.
func DefaultConfig() Config {
	return Config{
		Gravity:            cp.Vector{X: 0, Y: -9.81},
		Iterations:         10,
		SleepTimeThreshold: 0.5,
		Timestep:           1.0 / 60.0,
		MaxSubsteps:        4,
	}
}

type bodyHandle struct {
	body  *cp.Body
	shape *cp.Shape
	force ExternalForce
}

type jointHandle struct {
	constraint *cp.Constraint
	bodyA      ecs.EntityId
	bodyB      ecs.EntityId
}

// World owns the cp.Space and the mapping between entities and cp objects.
type World struct {
	cfg         Config
	space       *cp.Space
	bodies      map[ecs.EntityId]*bodyHandle
	joints      map[ecs.EntityId]*jointHandle
	accumulator float64
	logger      *zap.Logger
}

// NewWorld creates an empty space configured from cfg.
func NewWorld(cfg Config, logger *zap.Logger) *World {
	if logger == nil {
		logger = zap.NewNop()
	}

	space := cp.NewSpace()
	space.SetGravity(cfg.Gravity)
	space.Iterations = cfg.Iterations
	space.SleepTimeThreshold = cfg.SleepTimeThreshold

	logger.Debug("physics world created",
		zap.Float64("gravity_y", cfg.Gravity.Y),
		zap.Uint("iterations", cfg.Iterations),
		zap.Float64("sleep_time_threshold", cfg.SleepTimeThreshold),
		zap.Float64("timestep", cfg.Timestep))

	return &World{
		cfg:    cfg,
		space:  space,
		bodies: make(map[ecs.EntityId]*bodyHandle),
		joints: make(map[ecs.EntityId]*jointHandle),
		logger: logger,
	}
}

// Space exposes the underlying cp space.
func (w *World) Space() *cp.Space {
	return w.space
}

// BodyCount returns the number of bodies currently in the space.
func (w *World) BodyCount() int {
	return len(w.bodies)
}

// JointCount returns the number of constraints currently in the space.
func (w *World) JointCount() int {
	return len(w.joints)
}

// HasBody reports whether a cp body exists for the entity.
func (w *World) HasBody(id ecs.EntityId) bool {
	_, ok := w.bodies[id]
	return ok
}

// HasJoint reports whether a cp constraint exists for the entity.
func (w *World) HasJoint(id ecs.EntityId) bool {
	_, ok := w.joints[id]
	return ok
}

// Body returns the cp body behind an entity, or nil.
func (w *World) Body(id ecs.EntityId) *cp.Body {
	if h, ok := w.bodies[id]; ok {
		return h.body
	}
	return nil
}

func (w *World) addBody(id ecs.EntityId, rb *RigidBody, col *Collider) {
	width, height := col.HalfExtents.X*2, col.HalfExtents.Y*2

	h := &bodyHandle{}
	switch rb.Type {
	case BodyStatic:
		h.body = cp.NewStaticBody()
	default:
		mass := rb.Mass
		if mass <= 0 {
			mass = 1
		}
		h.body = cp.NewBody(mass, cp.MomentForBox(mass, width, height))
		h.body.SetVelocityUpdateFunc(h.integrateVelocity(rb.LinearDamping, rb.AngularDamping))
	}
	h.body.SetPosition(rb.Position)
	h.body.SetAngle(rb.Angle)
	h.body.UserData = id
	w.space.AddBody(h.body)

	h.shape = w.space.AddShape(cp.NewBox(h.body, width, height, 0))
	h.shape.SetFriction(col.Friction)
	h.shape.SetElasticity(col.Elasticity)

	w.bodies[id] = h
}

// setForce stores the force applied on every following substep. A changed,
// non-zero force wakes the body; an unchanged one does not, so a body can
// still fall asleep while it is being pushed.
func (w *World) setForce(id ecs.EntityId, force ExternalForce) {
	h, ok := w.bodies[id]
	if !ok || h.force == force {
		return
	}
	h.force = force
	if !force.IsZero() && h.body.IsSleeping() {
		h.body.Activate()
	}
}

// Force returns the force currently stored for a body.
func (w *World) Force(id ecs.EntityId) (ExternalForce, bool) {
	h, ok := w.bodies[id]
	if !ok {
		return ExternalForce{}, false
	}
	return h.force, true
}

// addJoint creates a pivot constraint once both bodies exist in the space.
// Returns false if either body is still missing.
func (w *World) addJoint(id ecs.EntityId, joint *Joint) bool {
	a, okA := w.bodies[joint.BodyA]
	b, okB := w.bodies[joint.BodyB]
	if !okA || !okB {
		return false
	}

	constraint := w.space.AddConstraint(cp.NewPivotJoint2(a.body, b.body, joint.AnchorA, joint.AnchorB))
	w.joints[id] = &jointHandle{
		constraint: constraint,
		bodyA:      joint.BodyA,
		bodyB:      joint.BodyB,
	}
	return true
}

func (w *World) removeJoint(id ecs.EntityId) {
	h, ok := w.joints[id]
	if !ok {
		return
	}
	w.space.RemoveConstraint(h.constraint)
	delete(w.joints, id)
}

func (w *World) removeBody(id ecs.EntityId) {
	h, ok := w.bodies[id]
	if !ok {
		return
	}

	// constraints must leave the space before the bodies they reference
	for jointId, joint := range w.joints {
		if joint.bodyA == id || joint.bodyB == id {
			w.removeJoint(jointId)
		}
	}

	w.space.RemoveShape(h.shape)
	w.space.RemoveBody(h.body)
	delete(w.bodies, id)
}

// prune drops cp objects whose entities no longer exist.
func (w *World) prune(alive func(ecs.EntityId) bool) {
	for id, joint := range w.joints {
		if !alive(id) || !alive(joint.bodyA) || !alive(joint.bodyB) {
			w.removeJoint(id)
		}
	}
	for id := range w.bodies {
		if !alive(id) {
			w.removeBody(id)
		}
	}
}

// Step advances the simulation by dt using fixed substeps. beforeStep, if not
// nil, runs before every substep. Leftover time carries into the next call;
// time beyond MaxSubsteps is dropped. Returns the number of substeps taken.
func (w *World) Step(dt float64, beforeStep func()) int {
	w.accumulator += dt

	steps := 0
	for w.accumulator >= w.cfg.Timestep && steps < w.cfg.MaxSubsteps {
		if beforeStep != nil {
			beforeStep()
		}
		w.space.Step(w.cfg.Timestep)
		w.accumulator -= w.cfg.Timestep
		steps++
	}

	if steps == w.cfg.MaxSubsteps && w.accumulator >= w.cfg.Timestep {
		w.accumulator = 0
	}
	return steps
}

// integrateVelocity integrates velocity like cp.BodyUpdateVelocity with the
// stored force added to gravity, then applies per-body damping as
// v *= 1/(1 + dt*damping). cp only calls it for awake bodies.
func (h *bodyHandle) integrateVelocity(linear, angular float64) func(*cp.Body, cp.Vector, float64, float64) {
	return func(body *cp.Body, gravity cp.Vector, damping, dt float64) {
		linearFactor := 1 / (1 + dt*linear)
		// body.SetForce would wake the body on every substep
		accel := gravity.Add(h.force.Force.Mult(1 / body.Mass()))
		cp.BodyUpdateVelocity(body, accel, damping*linearFactor, dt)

		if angular == linear && h.force.Torque == 0 {
			return
		}

		// cp has a single damping term for both axes. Re-scale the spin and add
		// the torque, but only while the result is above the idle threshold:
		// SetAngularVelocity wakes the body and would otherwise keep it from
		// ever sleeping.
		w := body.AngularVelocity() / linearFactor / (1 + dt*angular)
		w += h.force.Torque / body.Moment() * dt
		idle := gravity.Length() * dt
		if body.Moment()*w*w > idle*idle*body.Mass() {
			body.SetAngularVelocity(w)
		}
	}
}
