package physics

import (
	"math"

	"github.com/jakecoffman/cp"
)

// BodyType selects how a body is simulated.
type BodyType int

const (
	StaticBody BodyType = iota
	KinematicBody
	DynamicBody
)

// WorldDef configures a new world.
type WorldDef struct {
	Gravity cp.Vector
	// Bodies idle longer than this fall asleep. Zero disables sleeping.
	SleepTimeThreshold float64
	Iterations         int
}

// DefaultWorldDef returns earth-like gravity with sleeping enabled.
func DefaultWorldDef() WorldDef {
	return WorldDef{
		Gravity:            cp.Vector{X: 0, Y: -10},
		SleepTimeThreshold: 0.5,
		Iterations:         10,
	}
}

// BodyDef configures a new body.
type BodyDef struct {
	Type          BodyType
	Position      cp.Vector
	Angle         float64
	FixedRotation bool
	UserData      any
}

// DefaultBodyDef returns a static body at the origin.
func DefaultBodyDef() BodyDef {
	return BodyDef{}
}

// ShapeDef configures a shape attached to a body.
type ShapeDef struct {
	Density    float64
	Friction   float64
	Elasticity float64
	Sensor     bool
}

// DefaultShapeDef returns a unit-density shape with moderate friction.
func DefaultShapeDef() ShapeDef {
	return ShapeDef{Density: 1.0, Friction: 0.6}
}

type bodyState struct {
	body          *cp.Body
	shapes        []*cp.Shape
	joints        map[JointID]struct{}
	mass, moment  float64
	fixedRotation bool
	userData      any
}

// World owns bodies and joints and wraps the underlying Chipmunk space.
// All mutation must happen outside an in-progress Step.
type World struct {
	space  *cp.Space
	bodies arena[*bodyState]
	joints arena[*jointState]
}

// NewWorld creates an empty world.
func NewWorld(def WorldDef) *World {
	space := cp.NewSpace()
	if def.Iterations > 0 {
		space.Iterations = uint(def.Iterations)
	}
	space.SetGravity(def.Gravity)
	if def.SleepTimeThreshold > 0 {
		space.SleepTimeThreshold = def.SleepTimeThreshold
	}
	return &World{space: space}
}

// Space returns the underlying Chipmunk space.
func (w *World) Space() *cp.Space {
	return w.space
}

// SetGravity replaces the world gravity vector.
func (w *World) SetGravity(g cp.Vector) {
	w.space.SetGravity(g)
}

// CreateBody adds a new body to the world and returns its handle.
func (w *World) CreateBody(def BodyDef) BodyID {
	var body *cp.Body
	switch def.Type {
	case DynamicBody:
		// Placeholder mass properties, replaced as shapes are attached.
		body = cp.NewBody(1, 1)
	case KinematicBody:
		body = cp.NewKinematicBody()
	default:
		body = cp.NewStaticBody()
	}
	body.SetPosition(def.Position)
	body.SetAngle(def.Angle)
	w.space.AddBody(body)

	st := &bodyState{
		body:          body,
		joints:        make(map[JointID]struct{}),
		fixedRotation: def.FixedRotation,
		userData:      def.UserData,
	}
	id, gen := w.bodies.insert(st)
	return BodyID{id: id, gen: gen}
}

// DestroyBody removes a body from the world. Joints attached to the body are
// destroyed first so that no joint outlives a body it references. The handle
// is invalid afterward.
func (w *World) DestroyBody(id BodyID) {
	st := w.mustBody(id, "DestroyBody")
	for jid := range st.joints {
		w.DestroyJoint(jid)
	}
	for _, shape := range st.shapes {
		w.space.RemoveShape(shape)
	}
	w.space.RemoveBody(st.body)
	w.bodies.remove(id.id, id.gen)
}

// IsBodyAlive reports whether the handle refers to a live body.
func (w *World) IsBodyAlive(id BodyID) bool {
	return w.bodies.alive(id.id, id.gen)
}

// AddCircle attaches a circle shape to a body.
func (w *World) AddCircle(id BodyID, radius float64, offset cp.Vector, def ShapeDef) {
	st := w.mustBody(id, "AddCircle")
	shape := cp.NewCircle(st.body, radius, offset)
	mass := def.Density * cp.AreaForCircle(0, radius)
	w.attachShape(st, shape, def, mass, cp.MomentForCircle(mass, 0, radius, offset))
}

// AddPolygon attaches a convex polygon shape to a body. The vertices are in
// the body's local frame; their convex hull is used.
func (w *World) AddPolygon(id BodyID, verts []cp.Vector, def ShapeDef) {
	st := w.mustBody(id, "AddPolygon")
	shape := cp.NewPolyShape(st.body, len(verts), verts, cp.NewTransformIdentity(), 0)
	mass := def.Density * cp.AreaForPoly(len(verts), verts, 0)
	w.attachShape(st, shape, def, mass, cp.MomentForPoly(mass, len(verts), verts, cp.Vector{}, 0))
}

// AddSegment attaches a line-segment shape to a body.
func (w *World) AddSegment(id BodyID, a, b cp.Vector, radius float64, def ShapeDef) {
	st := w.mustBody(id, "AddSegment")
	shape := cp.NewSegment(st.body, a, b, radius)
	mass := def.Density * cp.AreaForSegment(a, b, radius)
	w.attachShape(st, shape, def, mass, cp.MomentForSegment(mass, a, b, radius))
}

func (w *World) attachShape(st *bodyState, shape *cp.Shape, def ShapeDef, mass, moment float64) {
	shape.SetFriction(def.Friction)
	shape.SetElasticity(def.Elasticity)
	shape.SetSensor(def.Sensor)
	w.space.AddShape(shape)
	if st.body.GetType() == cp.BODY_DYNAMIC {
		st.mass += mass
		st.moment += moment
		st.body.SetMass(st.mass)
		if st.fixedRotation {
			st.body.SetMoment(math.Inf(1))
		} else {
			st.body.SetMoment(st.moment)
		}
	}
	st.shapes = append(st.shapes, shape)
}

// Position returns the body origin in world space.
func (w *World) Position(id BodyID) cp.Vector {
	return w.mustBody(id, "Position").body.Position()
}

// Angle returns the body rotation in radians.
func (w *World) Angle(id BodyID) float64 {
	return w.mustBody(id, "Angle").body.Angle()
}

// Velocity returns the body's linear velocity.
func (w *World) Velocity(id BodyID) cp.Vector {
	return w.mustBody(id, "Velocity").body.Velocity()
}

// AngularVelocity returns the body's angular velocity in radians per second.
func (w *World) AngularVelocity(id BodyID) float64 {
	return w.mustBody(id, "AngularVelocity").body.AngularVelocity()
}

// WorldPoint transforms a point from the body's local frame to world space.
func (w *World) WorldPoint(id BodyID, local cp.Vector) cp.Vector {
	return w.mustBody(id, "WorldPoint").body.LocalToWorld(local)
}

// LocalPoint transforms a world-space point into the body's local frame.
func (w *World) LocalPoint(id BodyID, world cp.Vector) cp.Vector {
	return w.mustBody(id, "LocalPoint").body.WorldToLocal(world)
}

// WorldVector rotates a direction from the body's local frame to world space.
func (w *World) WorldVector(id BodyID, local cp.Vector) cp.Vector {
	return local.Rotate(w.mustBody(id, "WorldVector").body.Rotation())
}

// LocalVector rotates a world-space direction into the body's local frame.
func (w *World) LocalVector(id BodyID, world cp.Vector) cp.Vector {
	return world.Unrotate(w.mustBody(id, "LocalVector").body.Rotation())
}

// ApplyImpulse applies an impulse to the body at a world-space point and
// wakes it.
func (w *World) ApplyImpulse(id BodyID, impulse, point cp.Vector) {
	w.mustBody(id, "ApplyImpulse").body.ApplyImpulseAtWorldPoint(impulse, point)
}

// WakeBody wakes a sleeping body.
func (w *World) WakeBody(id BodyID) {
	w.mustBody(id, "WakeBody").body.Activate()
}

// IsAwake reports whether the body is not sleeping.
func (w *World) IsAwake(id BodyID) bool {
	return !w.mustBody(id, "IsAwake").body.IsSleeping()
}

// BodyUserData returns the caller-owned context stored on the body.
func (w *World) BodyUserData(id BodyID) any {
	return w.mustBody(id, "BodyUserData").userData
}

// Step advances the simulation by dt seconds. Linear joint motors are applied
// as body forces before the solver runs.
func (w *World) Step(dt float64) {
	w.joints.each(func(_, _ uint32, j *jointState) {
		j.applyLinearMotor(w)
	})
	w.space.Step(dt)
}

func (w *World) mustBody(id BodyID, op string) *bodyState {
	st, ok := w.bodies.get(id.id, id.gen)
	Precondition(ok, op, "body handle is not alive")
	return st
}

func (w *World) lookupBody(id BodyID) (*bodyState, bool) {
	return w.bodies.get(id.id, id.gen)
}
