package physics

import (
	"fmt"

	"github.com/jakecoffman/cp"
)

// JointType identifies a joint kind.
type JointType int

const (
	DistanceJoint JointType = iota
	MotorJoint
	MouseJoint
	PrismaticJoint
	RevoluteJoint
	WeldJoint
	WheelJoint
)

func (t JointType) String() string {
	switch t {
	case DistanceJoint:
		return "distance"
	case MotorJoint:
		return "motor"
	case MouseJoint:
		return "mouse"
	case PrismaticJoint:
		return "prismatic"
	case RevoluteJoint:
		return "revolute"
	case WeldJoint:
		return "weld"
	case WheelJoint:
		return "wheel"
	}
	return fmt.Sprintf("JointType(%d)", int(t))
}

const (
	// Rest and minimum lengths are clamped to this to stay numerically stable.
	minJointLength = 0.005
	// Stands in for an unbounded length limit.
	maxJointLength = 100000.0
)

// JointDef is the sealed set of joint definitions. A definition is a
// transient value: build one from its Default factory, edit it, and submit it
// to World.CreateJoint once. The catalog does not validate; CreateJoint does.
type JointDef interface {
	Type() JointType
	validate() error
	common() JointDefCommon
}

// JointDefCommon carries the fields shared by every joint kind. It is
// embedded in each definition struct.
type JointDefCommon struct {
	BodyA, BodyB BodyID
	// Whether the two connected bodies may still collide with each other.
	CollideConnected bool
	// Caller-owned context. Stored and returned, never inspected.
	UserData any
}

func (c JointDefCommon) common() JointDefCommon { return c }

// DistanceJointDef keeps two local anchor points a fixed distance apart, or
// connects them with a spring. With the spring disabled the joint is rigid
// and overrides the limit and motor.
type DistanceJointDef struct {
	JointDefCommon

	LocalAnchorA cp.Vector
	LocalAnchorB cp.Vector

	// Rest length, clamped to a stable minimum.
	Length float64

	EnableSpring bool
	Hertz        float64
	DampingRatio float64

	EnableLimit bool
	MinLength   float64
	MaxLength   float64

	EnableMotor   bool
	MaxMotorForce float64
	MotorSpeed    float64
}

// DefaultDistanceJointDef returns a rigid minimum-length definition with the
// spring, limit, and motor disabled.
func DefaultDistanceJointDef() DistanceJointDef {
	return DistanceJointDef{
		Length:    minJointLength,
		MinLength: minJointLength,
		MaxLength: maxJointLength,
	}
}

func (DistanceJointDef) Type() JointType { return DistanceJoint }

func (d DistanceJointDef) validate() error {
	if err := validSpring(d.Type(), d.Hertz, d.DampingRatio); err != nil {
		return err
	}
	if d.MaxLength < d.MinLength {
		return fmt.Errorf("%w: distance joint: maxLength %g < minLength %g", ErrInvalidParameter, d.MaxLength, d.MinLength)
	}
	if d.MaxMotorForce < 0 {
		return fmt.Errorf("%w: distance joint: negative maxMotorForce %g", ErrInvalidParameter, d.MaxMotorForce)
	}
	return nil
}

// MotorJointDef drives the relative transform of two bodies toward a linear
// and angular offset, bounded by a maximum force and torque.
type MotorJointDef struct {
	JointDefCommon

	// Position of bodyB minus position of bodyA, in bodyA's frame.
	LinearOffset cp.Vector
	// Angle of bodyB minus angle of bodyA, in radians.
	AngularOffset float64

	MaxForce  float64
	MaxTorque float64
	// Position correction strength in [0, 1].
	CorrectionFactor float64
}

func DefaultMotorJointDef() MotorJointDef {
	return MotorJointDef{
		MaxForce:         1,
		MaxTorque:        1,
		CorrectionFactor: 0.3,
	}
}

func (MotorJointDef) Type() JointType { return MotorJoint }

func (d MotorJointDef) validate() error {
	if d.CorrectionFactor < 0 || d.CorrectionFactor > 1 {
		return fmt.Errorf("%w: motor joint: correctionFactor %g outside [0, 1]", ErrInvalidParameter, d.CorrectionFactor)
	}
	if d.MaxForce < 0 {
		return fmt.Errorf("%w: motor joint: negative maxForce %g", ErrInvalidParameter, d.MaxForce)
	}
	if d.MaxTorque < 0 {
		return fmt.Errorf("%w: motor joint: negative maxTorque %g", ErrInvalidParameter, d.MaxTorque)
	}
	return nil
}

// MouseJointDef softly drags a point on bodyB toward a world-space target.
type MouseJointDef struct {
	JointDefCommon

	// Initial target point in world space. The target is pinned in
	// bodyA's frame, so bodyA should be a static or ground body; a
	// moving bodyA carries the target with it.
	Target cp.Vector

	Hertz        float64
	DampingRatio float64
	MaxForce     float64
}

func DefaultMouseJointDef() MouseJointDef {
	return MouseJointDef{
		Hertz:        4,
		DampingRatio: 1,
	}
}

func (MouseJointDef) Type() JointType { return MouseJoint }

func (d MouseJointDef) validate() error {
	if err := validSpring(d.Type(), d.Hertz, d.DampingRatio); err != nil {
		return err
	}
	if d.MaxForce < 0 {
		return fmt.Errorf("%w: mouse joint: negative maxForce %g", ErrInvalidParameter, d.MaxForce)
	}
	return nil
}

// PrismaticJointDef restricts relative motion to translation along an axis
// fixed in bodyA, with no relative rotation.
type PrismaticJointDef struct {
	JointDefCommon

	LocalAnchorA cp.Vector
	LocalAnchorB cp.Vector
	// Translation axis in bodyA's frame. Normalized at creation.
	LocalAxisA cp.Vector
	// Angle of bodyB minus angle of bodyA in the reference pose.
	ReferenceAngle float64

	EnableSpring bool
	Hertz        float64
	DampingRatio float64

	EnableLimit      bool
	LowerTranslation float64
	UpperTranslation float64

	EnableMotor   bool
	MaxMotorForce float64
	MotorSpeed    float64
}

func DefaultPrismaticJointDef() PrismaticJointDef {
	return PrismaticJointDef{
		LocalAxisA: cp.Vector{X: 1, Y: 0},
	}
}

func (PrismaticJointDef) Type() JointType { return PrismaticJoint }

func (d PrismaticJointDef) validate() error {
	if err := validSpring(d.Type(), d.Hertz, d.DampingRatio); err != nil {
		return err
	}
	if d.LocalAxisA.Length() == 0 {
		return fmt.Errorf("%w: prismatic joint: localAxisA is zero", ErrInvalidParameter)
	}
	if d.UpperTranslation < d.LowerTranslation {
		return fmt.Errorf("%w: prismatic joint: upperTranslation %g < lowerTranslation %g", ErrInvalidParameter, d.UpperTranslation, d.LowerTranslation)
	}
	if d.MaxMotorForce < 0 {
		return fmt.Errorf("%w: prismatic joint: negative maxMotorForce %g", ErrInvalidParameter, d.MaxMotorForce)
	}
	return nil
}

// RevoluteJointDef pins two bodies at a point and lets them rotate about it,
// optionally within an angular limit and driven by a motor.
type RevoluteJointDef struct {
	JointDefCommon

	LocalAnchorA cp.Vector
	LocalAnchorB cp.Vector
	// Angle of bodyB minus angle of bodyA in the reference pose. Defines the
	// zero angle for the limit.
	ReferenceAngle float64

	EnableSpring bool
	Hertz        float64
	DampingRatio float64

	EnableLimit bool
	LowerAngle  float64
	UpperAngle  float64

	EnableMotor    bool
	MaxMotorTorque float64
	MotorSpeed     float64

	// Scales debug drawing of the hinge.
	DrawSize float64
}

func DefaultRevoluteJointDef() RevoluteJointDef {
	return RevoluteJointDef{DrawSize: 0.25}
}

func (RevoluteJointDef) Type() JointType { return RevoluteJoint }

func (d RevoluteJointDef) validate() error {
	if err := validSpring(d.Type(), d.Hertz, d.DampingRatio); err != nil {
		return err
	}
	if d.UpperAngle < d.LowerAngle {
		return fmt.Errorf("%w: revolute joint: upperAngle %g < lowerAngle %g", ErrInvalidParameter, d.UpperAngle, d.LowerAngle)
	}
	if d.MaxMotorTorque < 0 {
		return fmt.Errorf("%w: revolute joint: negative maxMotorTorque %g", ErrInvalidParameter, d.MaxMotorTorque)
	}
	return nil
}

// WeldJointDef holds two bodies in a fixed relative pose. A stiffness of zero
// hertz means maximally stiff, not disabled.
type WeldJointDef struct {
	JointDefCommon

	LocalAnchorA cp.Vector
	LocalAnchorB cp.Vector
	// Angle of bodyB minus angle of bodyA in the reference pose.
	ReferenceAngle float64

	LinearHertz         float64
	AngularHertz        float64
	LinearDampingRatio  float64
	AngularDampingRatio float64
}

func DefaultWeldJointDef() WeldJointDef {
	return WeldJointDef{}
}

func (WeldJointDef) Type() JointType { return WeldJoint }

func (d WeldJointDef) validate() error {
	if err := validSpring(d.Type(), d.LinearHertz, d.LinearDampingRatio); err != nil {
		return err
	}
	return validSpring(d.Type(), d.AngularHertz, d.AngularDampingRatio)
}

// WheelJointDef provides a suspension axis fixed in bodyA, a spring along
// that axis, and a rotational drive motor; the wheel pattern.
type WheelJointDef struct {
	JointDefCommon

	LocalAnchorA cp.Vector
	LocalAnchorB cp.Vector
	// Suspension travel axis in bodyA's frame. Normalized at creation.
	LocalAxisA cp.Vector

	EnableSpring bool
	Hertz        float64
	DampingRatio float64

	EnableLimit      bool
	LowerTranslation float64
	UpperTranslation float64

	EnableMotor    bool
	MaxMotorTorque float64
	MotorSpeed     float64
}

func DefaultWheelJointDef() WheelJointDef {
	return WheelJointDef{
		LocalAxisA: cp.Vector{X: 0, Y: 1},
	}
}

func (WheelJointDef) Type() JointType { return WheelJoint }

func (d WheelJointDef) validate() error {
	if err := validSpring(d.Type(), d.Hertz, d.DampingRatio); err != nil {
		return err
	}
	if d.LocalAxisA.Length() == 0 {
		return fmt.Errorf("%w: wheel joint: localAxisA is zero", ErrInvalidParameter)
	}
	if d.UpperTranslation < d.LowerTranslation {
		return fmt.Errorf("%w: wheel joint: upperTranslation %g < lowerTranslation %g", ErrInvalidParameter, d.UpperTranslation, d.LowerTranslation)
	}
	if d.MaxMotorTorque < 0 {
		return fmt.Errorf("%w: wheel joint: negative maxMotorTorque %g", ErrInvalidParameter, d.MaxMotorTorque)
	}
	return nil
}

func validSpring(t JointType, hertz, dampingRatio float64) error {
	if hertz < 0 {
		return fmt.Errorf("%w: %s joint: negative hertz %g", ErrInvalidParameter, t, hertz)
	}
	if dampingRatio < 0 {
		return fmt.Errorf("%w: %s joint: negative damping ratio %g", ErrInvalidParameter, t, dampingRatio)
	}
	return nil
}
