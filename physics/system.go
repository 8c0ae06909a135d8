package physics

import (
	"github.com/plus3/tumbletris/ecs"
)

// System keeps the cp space in sync with body and joint entities and steps it
// once per frame. Register it after every system that spawns bodies or writes
// forces, so their changes are picked up by the next step.
type System struct {
	World *World

	Bodies ecs.Query[struct {
		ecs.EntityId
		*RigidBody
		*Collider
		Force      *ExternalForce `ecs:"optional"`
		Activation *Activation    `ecs:"optional"`
		Transform  *Transform     `ecs:"optional"`
	}]
	Joints ecs.Query[struct {
		ecs.EntityId
		*Joint
	}]

	// LastSubsteps is the number of substeps taken during the latest frame.
	LastSubsteps int
}

// NewSystem returns a System stepping the given world.
func NewSystem(world *World) *System {
	return &System{World: world}
}

func (s *System) Execute(frame *ecs.UpdateFrame) {
	s.World.prune(frame.Storage.Alive)

	for item := range s.Bodies.Values() {
		if !s.World.HasBody(item.EntityId) {
			s.World.addBody(item.EntityId, item.RigidBody, item.Collider)
		}
	}

	for item := range s.Joints.Values() {
		if !s.World.HasJoint(item.EntityId) {
			// bodies spawned this frame appear in the space on the next one
			s.World.addJoint(item.EntityId, item.Joint)
		}
	}

	s.LastSubsteps = s.World.Step(frame.DeltaTime, s.applyForces)

	for item := range s.Bodies.Values() {
		body := s.World.Body(item.EntityId)
		if body == nil {
			continue
		}

		if item.Transform != nil {
			item.Transform.Position = body.Position()
			item.Transform.Angle = body.Angle()
		}
		if item.Activation != nil {
			item.Activation.Sleeping = body.IsSleeping()
		}
	}
}

// applyForces hands every stored force to the world before each substep. The
// component keeps its value; only gameplay overwrites it.
func (s *System) applyForces() {
	for item := range s.Bodies.Values() {
		if item.Force == nil || item.RigidBody.Type != BodyDynamic {
			continue
		}
		s.World.setForce(item.EntityId, *item.Force)
	}
}
