package physics

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

// Translation span used when a prismatic or wheel joint has no limit.
const freeTravel = 1000.0

// Lever arm used to give axis springs a well-defined direction. The spring
// anchor on bodyA sits this far along the axis from the pivot, with a rest
// length to match, so the spring is unloaded in the reference pose.
const springArm = 1.0

// Gain converting a linear motor's velocity error into a force, applied to
// the reduced mass of the pair. Matches a 60 Hz correction rate.
const linearMotorRate = 60.0

// jointState is a live joint: a composite of Chipmunk constraints plus the
// declared sub-state. The stored fields are the source of truth for getters;
// setters push changes down into the member constraints.
type jointState struct {
	typ      JointType
	bodyA    BodyID
	bodyB    BodyID
	userData any

	// All member constraints, registered with the space.
	constraints []*cp.Constraint

	localAnchorA cp.Vector
	localAnchorB cp.Vector
	localAxisA   cp.Vector

	enableSpring bool
	enableMotor  bool
	enableLimit  bool

	hertz          float64
	dampingRatio   float64
	motorSpeed     float64
	maxMotorForce  float64
	maxMotorTorque float64

	motor     *cp.SimpleMotor
	motorCons *cp.Constraint
	spring    *cp.DampedSpring
	rotSpring *cp.DampedRotarySpring
	pivotCons *cp.Constraint
}

// CreateJoint validates a definition and realizes it as a live joint bound to
// both bodies. On any validation failure nothing is created. Creation does
// not wake sleeping bodies; runtime control operations do.
func (w *World) CreateJoint(def JointDef) (JointID, error) {
	if err := def.validate(); err != nil {
		return JointID{}, err
	}
	c := def.common()
	a, okA := w.lookupBody(c.BodyA)
	if !okA {
		return JointID{}, fmt.Errorf("%w: %s joint: bodyA", ErrDanglingBody, def.Type())
	}
	b, okB := w.lookupBody(c.BodyB)
	if !okB {
		return JointID{}, fmt.Errorf("%w: %s joint: bodyB", ErrDanglingBody, def.Type())
	}
	if c.BodyA == c.BodyB {
		return JointID{}, fmt.Errorf("%w: %s joint: bodyA and bodyB are the same body", ErrInvalidParameter, def.Type())
	}

	j := &jointState{
		typ:      def.Type(),
		bodyA:    c.BodyA,
		bodyB:    c.BodyB,
		userData: c.UserData,
	}
	switch d := def.(type) {
	case DistanceJointDef:
		j.buildDistance(w, d, a, b)
	case MotorJointDef:
		j.buildMotor(d, a, b)
	case MouseJointDef:
		j.buildMouse(d, a, b)
	case PrismaticJointDef:
		j.buildPrismatic(d, a, b)
	case RevoluteJointDef:
		j.buildRevolute(w, d, a, b)
	case WeldJointDef:
		j.buildWeld(w, d, a, b)
	case WheelJointDef:
		j.buildWheel(w, d, a, b)
	default:
		return JointID{}, fmt.Errorf("%w: unknown joint definition %T", ErrInvalidParameter, def)
	}

	sleepA := a.body.IsSleeping()
	sleepB := b.body.IsSleeping()
	for _, cons := range j.constraints {
		cons.SetCollideBodies(c.CollideConnected)
		w.space.AddConstraint(cons)
	}
	// Adding a constraint activates its bodies; joint creation must not.
	if sleepA {
		a.body.Sleep()
	}
	if sleepB {
		b.body.Sleep()
	}

	id, gen := w.joints.insert(j)
	jid := JointID{id: id, gen: gen}
	a.joints[jid] = struct{}{}
	b.joints[jid] = struct{}{}
	return jid, nil
}

// DestroyJoint removes a joint from the world and invalidates its handle.
// The referenced bodies are untouched.
func (w *World) DestroyJoint(id JointID) {
	j := w.mustJoint(id, "DestroyJoint")
	for _, cons := range j.constraints {
		w.space.RemoveConstraint(cons)
	}
	if a, ok := w.lookupBody(j.bodyA); ok {
		delete(a.joints, id)
	}
	if b, ok := w.lookupBody(j.bodyB); ok {
		delete(b.joints, id)
	}
	w.joints.remove(id.id, id.gen)
}

// IsJointAlive reports whether the handle refers to a live joint.
func (w *World) IsJointAlive(id JointID) bool {
	return w.joints.alive(id.id, id.gen)
}

// JointKind returns the joint's kind.
func (w *World) JointKind(id JointID) JointType {
	return w.mustJoint(id, "JointKind").typ
}

// JointBodies returns the two bodies the joint connects.
func (w *World) JointBodies(id JointID) (BodyID, BodyID) {
	j := w.mustJoint(id, "JointBodies")
	return j.bodyA, j.bodyB
}

// JointUserData returns the caller-owned context stored on the joint.
func (w *World) JointUserData(id JointID) any {
	return w.mustJoint(id, "JointUserData").userData
}

// JointLocalAnchorA returns the joint anchor in bodyA's frame.
func (w *World) JointLocalAnchorA(id JointID) cp.Vector {
	return w.mustJoint(id, "JointLocalAnchorA").localAnchorA
}

// JointLocalAnchorB returns the joint anchor in bodyB's frame.
func (w *World) JointLocalAnchorB(id JointID) cp.Vector {
	return w.mustJoint(id, "JointLocalAnchorB").localAnchorB
}

// WakeJointBodies wakes both bodies referenced by the joint.
func (w *World) WakeJointBodies(id JointID) {
	j := w.mustJoint(id, "WakeJointBodies")
	if a, ok := w.lookupBody(j.bodyA); ok {
		a.body.Activate()
	}
	if b, ok := w.lookupBody(j.bodyB); ok {
		b.body.Activate()
	}
}

func (w *World) mustJoint(id JointID, op string) *jointState {
	j, ok := w.joints.get(id.id, id.gen)
	Precondition(ok, op, "joint handle is not alive")
	return j
}

func (j *jointState) add(cons *cp.Constraint) *cp.Constraint {
	j.constraints = append(j.constraints, cons)
	return cons
}

func (j *jointState) buildDistance(w *World, d DistanceJointDef, a, b *bodyState) {
	length := math.Max(d.Length, minJointLength)
	minLength := math.Max(d.MinLength, minJointLength)
	// Flooring the minimum must not invert the limit range.
	maxLength := math.Max(d.MaxLength, minLength)
	j.localAnchorA = d.LocalAnchorA
	j.localAnchorB = d.LocalAnchorB
	j.enableSpring = d.EnableSpring
	j.hertz = d.Hertz
	j.dampingRatio = d.DampingRatio
	j.enableLimit = d.EnableLimit
	j.enableMotor = d.EnableMotor
	j.motorSpeed = d.MotorSpeed
	j.maxMotorForce = d.MaxMotorForce

	if !d.EnableSpring {
		// Rigid distance overrides the limit and motor. The declared
		// sub-state stays readable.
		pin := cp.NewPinJoint(a.body, b.body, d.LocalAnchorA, d.LocalAnchorB)
		pin.Class.(*cp.PinJoint).Dist = length
		j.add(pin)
		return
	}

	stiffness, damping := w.linearSpring(d.Hertz, d.DampingRatio, a, b)
	spring := cp.NewDampedSpring(a.body, b.body, d.LocalAnchorA, d.LocalAnchorB, length, stiffness, damping)
	j.spring = spring.Class.(*cp.DampedSpring)
	j.add(spring)

	if d.EnableLimit {
		j.add(cp.NewSlideJoint(a.body, b.body, d.LocalAnchorA, d.LocalAnchorB, minLength, maxLength))
	}
}

func (j *jointState) buildMotor(d MotorJointDef, a, b *bodyState) {
	pivot := cp.NewPivotJoint2(a.body, b.body, d.LinearOffset, cp.Vector{})
	pivot.SetMaxForce(d.MaxForce)
	pivot.SetErrorBias(math.Pow(1.0-d.CorrectionFactor, 60.0))
	j.pivotCons = pivot
	j.add(pivot)

	gear := cp.NewGearJoint(a.body, b.body, d.AngularOffset, 1.0)
	gear.SetMaxForce(d.MaxTorque)
	gear.SetErrorBias(math.Pow(1.0-d.CorrectionFactor, 60.0))
	j.add(gear)
}

func (j *jointState) buildMouse(d MouseJointDef, a, b *bodyState) {
	j.localAnchorA = a.body.WorldToLocal(d.Target)
	j.localAnchorB = b.body.WorldToLocal(d.Target)
	j.hertz = d.Hertz
	j.dampingRatio = d.DampingRatio

	pivot := cp.NewPivotJoint2(a.body, b.body, j.localAnchorA, j.localAnchorB)
	pivot.SetMaxForce(d.MaxForce)
	pivot.SetErrorBias(softErrorBias(d.Hertz))
	j.pivotCons = pivot
	j.add(pivot)
}

func (j *jointState) buildPrismatic(d PrismaticJointDef, a, b *bodyState) {
	axis := d.LocalAxisA.Normalize()
	j.localAnchorA = d.LocalAnchorA
	j.localAnchorB = d.LocalAnchorB
	j.localAxisA = axis
	j.enableSpring = d.EnableSpring
	j.hertz = d.Hertz
	j.dampingRatio = d.DampingRatio

	j.enableLimit = d.EnableLimit
	lower, upper := -freeTravel, freeTravel
	if d.EnableLimit {
		lower, upper = d.LowerTranslation, d.UpperTranslation
	}
	grooveA := d.LocalAnchorA.Add(axis.Mult(lower))
	grooveB := d.LocalAnchorA.Add(axis.Mult(upper))
	j.add(cp.NewGrooveJoint(a.body, b.body, grooveA, grooveB, d.LocalAnchorB))

	// A prismatic joint permits no relative rotation.
	j.add(cp.NewGearJoint(a.body, b.body, d.ReferenceAngle, 1.0))

	j.attachAxisSpring(d.EnableSpring, d.Hertz, d.DampingRatio, a, b)

	j.enableMotor = d.EnableMotor
	j.motorSpeed = d.MotorSpeed
	j.maxMotorForce = d.MaxMotorForce
}

func (j *jointState) buildRevolute(w *World, d RevoluteJointDef, a, b *bodyState) {
	j.localAnchorA = d.LocalAnchorA
	j.localAnchorB = d.LocalAnchorB
	j.enableSpring = d.EnableSpring
	j.hertz = d.Hertz
	j.dampingRatio = d.DampingRatio

	j.add(cp.NewPivotJoint2(a.body, b.body, d.LocalAnchorA, d.LocalAnchorB))

	j.enableLimit = d.EnableLimit
	if d.EnableLimit {
		j.add(cp.NewRotaryLimitJoint(a.body, b.body, d.ReferenceAngle+d.LowerAngle, d.ReferenceAngle+d.UpperAngle))
	}

	stiffness, damping := w.angularSpring(d.Hertz, d.DampingRatio, a, b)
	if !d.EnableSpring {
		stiffness, damping = 0, 0
	}
	rotSpring := cp.NewDampedRotarySpring(a.body, b.body, -d.ReferenceAngle, stiffness, damping)
	j.rotSpring = rotSpring.Class.(*cp.DampedRotarySpring)
	j.add(rotSpring)

	j.attachAngularMotor(d.EnableMotor, d.MotorSpeed, d.MaxMotorTorque, a, b)
}

func (j *jointState) buildWeld(w *World, d WeldJointDef, a, b *bodyState) {
	j.localAnchorA = d.LocalAnchorA
	j.localAnchorB = d.LocalAnchorB

	pivot := cp.NewPivotJoint2(a.body, b.body, d.LocalAnchorA, d.LocalAnchorB)
	if d.LinearHertz > 0 {
		// Soft linear coupling; zero hertz stays maximally stiff.
		pivot.SetErrorBias(softErrorBias(d.LinearHertz))
	}
	j.pivotCons = pivot
	j.add(pivot)

	if d.AngularHertz > 0 {
		stiffness, damping := w.angularSpring(d.AngularHertz, d.AngularDampingRatio, a, b)
		rotSpring := cp.NewDampedRotarySpring(a.body, b.body, -d.ReferenceAngle, stiffness, damping)
		j.rotSpring = rotSpring.Class.(*cp.DampedRotarySpring)
		j.add(rotSpring)
	} else {
		j.add(cp.NewGearJoint(a.body, b.body, d.ReferenceAngle, 1.0))
	}
}

func (j *jointState) buildWheel(w *World, d WheelJointDef, a, b *bodyState) {
	axis := d.LocalAxisA.Normalize()
	j.localAnchorA = d.LocalAnchorA
	j.localAnchorB = d.LocalAnchorB
	j.localAxisA = axis
	j.enableSpring = d.EnableSpring
	j.hertz = d.Hertz
	j.dampingRatio = d.DampingRatio

	j.enableLimit = d.EnableLimit
	lower, upper := -freeTravel, freeTravel
	if d.EnableLimit {
		lower, upper = d.LowerTranslation, d.UpperTranslation
	}
	grooveA := d.LocalAnchorA.Add(axis.Mult(lower))
	grooveB := d.LocalAnchorA.Add(axis.Mult(upper))
	j.add(cp.NewGrooveJoint(a.body, b.body, grooveA, grooveB, d.LocalAnchorB))

	j.attachAxisSpring(d.EnableSpring, d.Hertz, d.DampingRatio, a, b)
	j.attachAngularMotor(d.EnableMotor, d.MotorSpeed, d.MaxMotorTorque, a, b)
}

// attachAxisSpring adds the suspension spring along the joint axis. The
// spring is always attached; a disabled spring has zero constants so later
// enabling does not rebuild the composite.
func (j *jointState) attachAxisSpring(enabled bool, hertz, dampingRatio float64, a, b *bodyState) {
	springAnchorA := j.localAnchorA.Add(j.localAxisA.Mult(springArm))
	var stiffness, damping float64
	if enabled {
		stiffness, damping = springConstants(hertz, dampingRatio, reduced(bodyMass(a), bodyMass(b)))
	}
	spring := cp.NewDampedSpring(a.body, b.body, springAnchorA, j.localAnchorB, springArm, stiffness, damping)
	j.spring = spring.Class.(*cp.DampedSpring)
	j.add(spring)
}

// attachAngularMotor adds the drive motor. A disabled motor is held at zero
// max force so SetEnableMotor is a toggle rather than a rebuild.
func (j *jointState) attachAngularMotor(enabled bool, speed, maxTorque float64, a, b *bodyState) {
	j.enableMotor = enabled
	j.motorSpeed = speed
	j.maxMotorTorque = maxTorque

	// Chipmunk motors drive the relative rate toward the negated value.
	motor := cp.NewSimpleMotor(a.body, b.body, -speed)
	if enabled {
		motor.SetMaxForce(maxTorque)
	} else {
		motor.SetMaxForce(0)
	}
	j.motor = motor.Class.(*cp.SimpleMotor)
	j.motorCons = motor
	j.add(motor)
}

// applyLinearMotor drives the axial motors of distance and prismatic joints.
// Chipmunk has no linear motor constraint, so the drive is a force-capped
// velocity servo applied to the bodies before the solver runs.
func (j *jointState) applyLinearMotor(w *World) {
	if !j.enableMotor {
		return
	}
	if j.typ != DistanceJoint && j.typ != PrismaticJoint {
		return
	}
	// A rigid distance joint overrides its motor.
	if j.typ == DistanceJoint && !j.enableSpring {
		return
	}
	a, okA := w.lookupBody(j.bodyA)
	b, okB := w.lookupBody(j.bodyB)
	if !okA || !okB {
		return
	}
	if a.body.IsSleeping() && b.body.IsSleeping() {
		return
	}

	pA := a.body.LocalToWorld(j.localAnchorA)
	pB := b.body.LocalToWorld(j.localAnchorB)

	var n cp.Vector
	if j.typ == PrismaticJoint {
		n = j.localAxisA.Rotate(a.body.Rotation())
	} else {
		n = pB.Sub(pA)
		if n.Length() < minJointLength {
			return
		}
		n = n.Normalize()
	}

	vRel := b.body.VelocityAtWorldPoint(pB).Sub(a.body.VelocityAtWorldPoint(pA)).Dot(n)
	gain := reduced(bodyMass(a), bodyMass(b)) * linearMotorRate
	force := cp.Clamp(gain*(j.motorSpeed-vRel), -j.maxMotorForce, j.maxMotorForce)

	a.body.ApplyForceAtWorldPoint(n.Mult(-force), pA)
	b.body.ApplyForceAtWorldPoint(n.Mult(force), pB)
}
