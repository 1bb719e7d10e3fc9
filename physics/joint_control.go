package physics

import "fmt"

// Runtime control mutates a live joint in place; no reconstruction, no new
// handle. Every control operation wakes the joint's bodies, since a sleeping
// body would not respond to the new target until woken. Setting a value does
// not implicitly enable the matching sub-behavior.

func (w *World) unsupported(op string, j *jointState) error {
	return fmt.Errorf("%w: %s on %s joint", ErrUnsupportedOperation, op, j.typ)
}

func (j *jointState) motorized() bool {
	switch j.typ {
	case DistanceJoint, PrismaticJoint, RevoluteJoint, WheelJoint:
		return true
	}
	return false
}

func (j *jointState) springy() bool {
	switch j.typ {
	case DistanceJoint, MouseJoint, PrismaticJoint, RevoluteJoint, WheelJoint:
		return true
	}
	return false
}

// SetMotorSpeed sets the target motor speed: meters per second for linear
// motors, radians per second for rotary ones.
func (w *World) SetMotorSpeed(id JointID, speed float64) error {
	j := w.mustJoint(id, "SetMotorSpeed")
	if !j.motorized() {
		return w.unsupported("SetMotorSpeed", j)
	}
	j.motorSpeed = speed
	if j.motor != nil {
		j.motor.Rate = -speed
	}
	w.WakeJointBodies(id)
	return nil
}

// MotorSpeed returns the target motor speed.
func (w *World) MotorSpeed(id JointID) (float64, error) {
	j := w.mustJoint(id, "MotorSpeed")
	if !j.motorized() {
		return 0, w.unsupported("MotorSpeed", j)
	}
	return j.motorSpeed, nil
}

// SetMaxMotorForce bounds the linear motor force of a distance or prismatic
// joint.
func (w *World) SetMaxMotorForce(id JointID, force float64) error {
	j := w.mustJoint(id, "SetMaxMotorForce")
	if j.typ != DistanceJoint && j.typ != PrismaticJoint {
		return w.unsupported("SetMaxMotorForce", j)
	}
	if force < 0 {
		return fmt.Errorf("%w: negative maxMotorForce %g", ErrInvalidParameter, force)
	}
	j.maxMotorForce = force
	w.WakeJointBodies(id)
	return nil
}

// MaxMotorForce returns the linear motor force bound.
func (w *World) MaxMotorForce(id JointID) (float64, error) {
	j := w.mustJoint(id, "MaxMotorForce")
	if j.typ != DistanceJoint && j.typ != PrismaticJoint {
		return 0, w.unsupported("MaxMotorForce", j)
	}
	return j.maxMotorForce, nil
}

// SetMaxMotorTorque bounds the rotary motor torque of a revolute or wheel
// joint.
func (w *World) SetMaxMotorTorque(id JointID, torque float64) error {
	j := w.mustJoint(id, "SetMaxMotorTorque")
	if j.typ != RevoluteJoint && j.typ != WheelJoint {
		return w.unsupported("SetMaxMotorTorque", j)
	}
	if torque < 0 {
		return fmt.Errorf("%w: negative maxMotorTorque %g", ErrInvalidParameter, torque)
	}
	j.maxMotorTorque = torque
	if j.motorCons != nil && j.enableMotor {
		j.motorCons.SetMaxForce(torque)
	}
	w.WakeJointBodies(id)
	return nil
}

// MaxMotorTorque returns the rotary motor torque bound.
func (w *World) MaxMotorTorque(id JointID) (float64, error) {
	j := w.mustJoint(id, "MaxMotorTorque")
	if j.typ != RevoluteJoint && j.typ != WheelJoint {
		return 0, w.unsupported("MaxMotorTorque", j)
	}
	return j.maxMotorTorque, nil
}

// SetEnableMotor turns the joint motor on or off without touching its speed
// or force bound.
func (w *World) SetEnableMotor(id JointID, enabled bool) error {
	j := w.mustJoint(id, "SetEnableMotor")
	if !j.motorized() {
		return w.unsupported("SetEnableMotor", j)
	}
	j.enableMotor = enabled
	if j.motorCons != nil {
		if enabled {
			j.motorCons.SetMaxForce(j.maxMotorTorque)
		} else {
			j.motorCons.SetMaxForce(0)
		}
	}
	w.WakeJointBodies(id)
	return nil
}

// IsMotorEnabled reports whether the joint motor is on.
func (w *World) IsMotorEnabled(id JointID) (bool, error) {
	j := w.mustJoint(id, "IsMotorEnabled")
	if !j.motorized() {
		return false, w.unsupported("IsMotorEnabled", j)
	}
	return j.enableMotor, nil
}

// SetSpringHertz sets the spring stiffness frequency.
func (w *World) SetSpringHertz(id JointID, hertz float64) error {
	j := w.mustJoint(id, "SetSpringHertz")
	if !j.springy() {
		return w.unsupported("SetSpringHertz", j)
	}
	if hertz < 0 {
		return fmt.Errorf("%w: negative hertz %g", ErrInvalidParameter, hertz)
	}
	j.hertz = hertz
	w.retuneSpring(j)
	w.WakeJointBodies(id)
	return nil
}

// SpringHertz returns the spring stiffness frequency.
func (w *World) SpringHertz(id JointID) (float64, error) {
	j := w.mustJoint(id, "SpringHertz")
	if !j.springy() {
		return 0, w.unsupported("SpringHertz", j)
	}
	return j.hertz, nil
}

// SetSpringDampingRatio sets the spring damping ratio; 1 is critical damping.
func (w *World) SetSpringDampingRatio(id JointID, dampingRatio float64) error {
	j := w.mustJoint(id, "SetSpringDampingRatio")
	if !j.springy() {
		return w.unsupported("SetSpringDampingRatio", j)
	}
	if dampingRatio < 0 {
		return fmt.Errorf("%w: negative damping ratio %g", ErrInvalidParameter, dampingRatio)
	}
	j.dampingRatio = dampingRatio
	w.retuneSpring(j)
	w.WakeJointBodies(id)
	return nil
}

// SpringDampingRatio returns the spring damping ratio.
func (w *World) SpringDampingRatio(id JointID) (float64, error) {
	j := w.mustJoint(id, "SpringDampingRatio")
	if !j.springy() {
		return 0, w.unsupported("SpringDampingRatio", j)
	}
	return j.dampingRatio, nil
}

// retuneSpring pushes the stored hertz and damping ratio down into the live
// constraint. A spring disabled at creation keeps the new values stored but
// stays inert.
func (w *World) retuneSpring(j *jointState) {
	a, okA := w.lookupBody(j.bodyA)
	b, okB := w.lookupBody(j.bodyB)
	if !okA || !okB {
		return
	}
	switch {
	case j.typ == MouseJoint && j.pivotCons != nil:
		j.pivotCons.SetErrorBias(softErrorBias(j.hertz))
	case j.spring != nil && j.enableSpring:
		j.spring.Stiffness, j.spring.Damping = w.linearSpring(j.hertz, j.dampingRatio, a, b)
	case j.rotSpring != nil && j.enableSpring:
		j.rotSpring.Stiffness, j.rotSpring.Damping = w.angularSpring(j.hertz, j.dampingRatio, a, b)
	}
}
