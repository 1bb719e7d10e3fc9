package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/jakecoffman/cp"
)

const stepDt = 1.0 / 60.0

func stepFor(w *World, seconds float64) {
	for i := 0; i < int(seconds/stepDt); i++ {
		w.Step(stepDt)
	}
}

func revoluteBetween(t *testing.T, w *World, a, b BodyID) JointID {
	t.Helper()
	def := DefaultRevoluteJointDef()
	def.BodyA = a
	def.BodyB = b
	def.LocalAnchorB = cp.Vector{}
	def.LocalAnchorA = w.LocalPoint(a, w.Position(b))
	id, err := w.CreateJoint(def)
	if err != nil {
		t.Fatalf("CreateJoint: %v", err)
	}
	return id
}

func TestCreateJointRejectsInvalidDef(t *testing.T) {
	w := newTestWorld()
	a := addAnchor(w, cp.Vector{})
	b := addBall(t, w, cp.Vector{X: 1, Y: 0})

	def := DefaultDistanceJointDef()
	def.BodyA = a
	def.BodyB = b
	def.MinLength = 2
	def.MaxLength = 1

	id, err := w.CreateJoint(def)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if id.Valid() {
		t.Fatalf("failed creation should return the zero handle")
	}
}

func TestCreateJointRejectsDanglingBody(t *testing.T) {
	w := newTestWorld()
	a := addAnchor(w, cp.Vector{})
	b := addBall(t, w, cp.Vector{X: 1, Y: 0})
	w.DestroyBody(b)

	def := DefaultRevoluteJointDef()
	def.BodyA = a
	def.BodyB = b

	if _, err := w.CreateJoint(def); !errors.Is(err, ErrDanglingBody) {
		t.Fatalf("expected ErrDanglingBody, got %v", err)
	}

	def.BodyA = b
	def.BodyB = a
	if _, err := w.CreateJoint(def); !errors.Is(err, ErrDanglingBody) {
		t.Fatalf("expected ErrDanglingBody for bodyA, got %v", err)
	}
}

func TestCreateJointRejectsSelfJoint(t *testing.T) {
	w := newTestWorld()
	a := addBall(t, w, cp.Vector{})

	def := DefaultRevoluteJointDef()
	def.BodyA = a
	def.BodyB = a

	if _, err := w.CreateJoint(def); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestCreateJointDegenerateLimit(t *testing.T) {
	w := newTestWorld()
	a := addAnchor(w, cp.Vector{})
	b := addBall(t, w, cp.Vector{X: 1, Y: 0})

	def := DefaultDistanceJointDef()
	def.BodyA = a
	def.BodyB = b
	def.EnableSpring = true
	def.Hertz = 2
	def.DampingRatio = 0.7
	def.EnableLimit = true
	def.Length = 1
	def.MinLength = 1
	def.MaxLength = 1

	id, err := w.CreateJoint(def)
	if err != nil {
		t.Fatalf("equal limits should create, got %v", err)
	}
	if !w.IsJointAlive(id) {
		t.Fatalf("created joint should be alive")
	}
}

func TestCreateJointFloorsZeroLimits(t *testing.T) {
	w := newTestWorld()
	a := addAnchor(w, cp.Vector{})
	b := addBall(t, w, cp.Vector{X: 1, Y: 0})

	def := DefaultDistanceJointDef()
	def.BodyA = a
	def.BodyB = b
	def.EnableSpring = true
	def.Hertz = 2
	def.DampingRatio = 0.7
	def.EnableLimit = true
	def.Length = 0
	def.MinLength = 0
	def.MaxLength = 0

	id, err := w.CreateJoint(def)
	if err != nil {
		t.Fatalf("zero limits should create, got %v", err)
	}

	j, ok := w.joints.get(id.id, id.gen)
	if !ok {
		t.Fatalf("joint state missing")
	}
	var slide *cp.SlideJoint
	for _, cons := range j.constraints {
		if s, isSlide := cons.Class.(*cp.SlideJoint); isSlide {
			slide = s
		}
	}
	if slide == nil {
		t.Fatalf("limited distance joint should carry a slide joint")
	}
	if slide.Min != minJointLength || slide.Max != minJointLength {
		t.Fatalf("floored limits = [%v, %v], want both %v", slide.Min, slide.Max, minJointLength)
	}
	if slide.Max < slide.Min {
		t.Fatalf("limit range inverted: [%v, %v]", slide.Min, slide.Max)
	}

	stepFor(w, 0.5)
	pos := w.Position(b)
	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) {
		t.Fatalf("body position diverged: %v", pos)
	}
}

func TestJointAccessors(t *testing.T) {
	w := newTestWorld()
	a := addAnchor(w, cp.Vector{})
	b := addBall(t, w, cp.Vector{X: 1, Y: 0})

	def := DefaultRevoluteJointDef()
	def.BodyA = a
	def.BodyB = b
	def.LocalAnchorA = cp.Vector{X: 1, Y: 0}
	def.LocalAnchorB = cp.Vector{}
	def.UserData = "hinge"

	id, err := w.CreateJoint(def)
	if err != nil {
		t.Fatalf("CreateJoint: %v", err)
	}

	if got := w.JointKind(id); got != RevoluteJoint {
		t.Fatalf("expected revolute kind, got %v", got)
	}
	gotA, gotB := w.JointBodies(id)
	if gotA != a || gotB != b {
		t.Fatalf("joint bodies do not round trip")
	}
	if got := w.JointUserData(id); got != "hinge" {
		t.Fatalf("expected stored user data, got %v", got)
	}
	if !nearVec(w.JointLocalAnchorA(id), cp.Vector{X: 1, Y: 0}, 1e-9) {
		t.Fatalf("anchor A drifted: %v", w.JointLocalAnchorA(id))
	}
	if !nearVec(w.JointLocalAnchorB(id), cp.Vector{}, 1e-9) {
		t.Fatalf("anchor B drifted: %v", w.JointLocalAnchorB(id))
	}
}

func TestDestroyJointInvalidatesHandle(t *testing.T) {
	w := newTestWorld()
	a := addAnchor(w, cp.Vector{})
	b := addBall(t, w, cp.Vector{X: 1, Y: 0})
	id := revoluteBetween(t, w, a, b)

	w.DestroyJoint(id)
	if w.IsJointAlive(id) {
		t.Fatalf("destroyed joint should not be alive")
	}
	if !w.IsBodyAlive(a) || !w.IsBodyAlive(b) {
		t.Fatalf("destroying a joint must not touch its bodies")
	}

	expectPrecondition(t, "DestroyJoint", func() { w.DestroyJoint(id) })
	expectPrecondition(t, "JointKind", func() { w.JointKind(id) })
}

func TestDestroyBodyDestroysJoints(t *testing.T) {
	w := newTestWorld()
	a := addAnchor(w, cp.Vector{})
	b := addBall(t, w, cp.Vector{X: 1, Y: 0})
	c := addBall(t, w, cp.Vector{X: 2, Y: 0})
	ab := revoluteBetween(t, w, a, b)
	bc := revoluteBetween(t, w, b, c)
	ac := revoluteBetween(t, w, a, c)

	w.DestroyBody(b)

	if w.IsJointAlive(ab) || w.IsJointAlive(bc) {
		t.Fatalf("joints on a destroyed body should die with it")
	}
	if !w.IsJointAlive(ac) {
		t.Fatalf("unrelated joint should survive")
	}
	if !w.IsBodyAlive(a) || !w.IsBodyAlive(c) {
		t.Fatalf("other bodies should survive")
	}
}

func TestControlSurfaceByKind(t *testing.T) {
	w := newTestWorld()

	makeJoint := func(t *testing.T, build func(a, b BodyID) JointDef) JointID {
		t.Helper()
		a := addAnchor(w, cp.Vector{})
		b := addBall(t, w, cp.Vector{X: 1, Y: 0})
		id, err := w.CreateJoint(build(a, b))
		if err != nil {
			t.Fatalf("CreateJoint: %v", err)
		}
		return id
	}

	cases := []struct {
		name      string
		build     func(a, b BodyID) JointDef
		hasMotor  bool
		hasForce  bool
		hasTorque bool
		hasSpring bool
	}{
		{
			name: "distance",
			build: func(a, b BodyID) JointDef {
				d := DefaultDistanceJointDef()
				d.BodyA, d.BodyB = a, b
				d.Length = 1
				return d
			},
			hasMotor: true, hasForce: true, hasSpring: true,
		},
		{
			name: "motor",
			build: func(a, b BodyID) JointDef {
				d := DefaultMotorJointDef()
				d.BodyA, d.BodyB = a, b
				return d
			},
		},
		{
			name: "mouse",
			build: func(a, b BodyID) JointDef {
				d := DefaultMouseJointDef()
				d.BodyA, d.BodyB = a, b
				d.Target = cp.Vector{X: 1, Y: 0}
				return d
			},
			hasSpring: true,
		},
		{
			name: "prismatic",
			build: func(a, b BodyID) JointDef {
				d := DefaultPrismaticJointDef()
				d.BodyA, d.BodyB = a, b
				return d
			},
			hasMotor: true, hasForce: true, hasSpring: true,
		},
		{
			name: "revolute",
			build: func(a, b BodyID) JointDef {
				d := DefaultRevoluteJointDef()
				d.BodyA, d.BodyB = a, b
				d.LocalAnchorA = cp.Vector{X: 1, Y: 0}
				return d
			},
			hasMotor: true, hasTorque: true, hasSpring: true,
		},
		{
			name: "weld",
			build: func(a, b BodyID) JointDef {
				d := DefaultWeldJointDef()
				d.BodyA, d.BodyB = a, b
				d.LocalAnchorA = cp.Vector{X: 1, Y: 0}
				return d
			},
		},
		{
			name: "wheel",
			build: func(a, b BodyID) JointDef {
				d := DefaultWheelJointDef()
				d.BodyA, d.BodyB = a, b
				d.LocalAnchorA = cp.Vector{X: 1, Y: 0}
				return d
			},
			hasMotor: true, hasTorque: true, hasSpring: true,
		},
	}

	checkOp := func(t *testing.T, supported bool, err error) {
		t.Helper()
		if supported && err != nil {
			t.Fatalf("expected supported operation, got %v", err)
		}
		if !supported && !errors.Is(err, ErrUnsupportedOperation) {
			t.Fatalf("expected ErrUnsupportedOperation, got %v", err)
		}
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			id := makeJoint(t, c.build)

			checkOp(t, c.hasMotor, w.SetMotorSpeed(id, 1))
			_, err := w.MotorSpeed(id)
			checkOp(t, c.hasMotor, err)

			checkOp(t, c.hasForce, w.SetMaxMotorForce(id, 1))
			_, err = w.MaxMotorForce(id)
			checkOp(t, c.hasForce, err)

			checkOp(t, c.hasTorque, w.SetMaxMotorTorque(id, 1))
			_, err = w.MaxMotorTorque(id)
			checkOp(t, c.hasTorque, err)

			checkOp(t, c.hasMotor, w.SetEnableMotor(id, true))
			_, err = w.IsMotorEnabled(id)
			checkOp(t, c.hasMotor, err)

			checkOp(t, c.hasSpring, w.SetSpringHertz(id, 2))
			_, err = w.SpringHertz(id)
			checkOp(t, c.hasSpring, err)

			checkOp(t, c.hasSpring, w.SetSpringDampingRatio(id, 0.5))
			_, err = w.SpringDampingRatio(id)
			checkOp(t, c.hasSpring, err)
		})
	}
}

func TestMotorControlRoundTrip(t *testing.T) {
	w := newTestWorld()
	a := addAnchor(w, cp.Vector{})
	b := addBall(t, w, cp.Vector{X: 1, Y: 0})
	id := revoluteBetween(t, w, a, b)

	if err := w.SetMotorSpeed(id, 3); err != nil {
		t.Fatalf("SetMotorSpeed: %v", err)
	}
	if got, _ := w.MotorSpeed(id); got != 3 {
		t.Fatalf("expected motor speed 3, got %g", got)
	}

	if err := w.SetMaxMotorTorque(id, 7); err != nil {
		t.Fatalf("SetMaxMotorTorque: %v", err)
	}
	if got, _ := w.MaxMotorTorque(id); got != 7 {
		t.Fatalf("expected motor torque 7, got %g", got)
	}

	if err := w.SetMaxMotorTorque(id, -1); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("negative torque should be rejected, got %v", err)
	}
	if got, _ := w.MaxMotorTorque(id); got != 7 {
		t.Fatalf("rejected torque should leave the old value, got %g", got)
	}

	if enabled, _ := w.IsMotorEnabled(id); enabled {
		t.Fatalf("motor should default off")
	}
	if err := w.SetEnableMotor(id, true); err != nil {
		t.Fatalf("SetEnableMotor: %v", err)
	}
	if enabled, _ := w.IsMotorEnabled(id); !enabled {
		t.Fatalf("motor should report enabled")
	}
}

func TestSpringControlRoundTrip(t *testing.T) {
	w := newTestWorld()
	a := addAnchor(w, cp.Vector{})
	b := addBall(t, w, cp.Vector{X: 1, Y: 0})

	def := DefaultWheelJointDef()
	def.BodyA = a
	def.BodyB = b
	def.LocalAnchorA = cp.Vector{X: 1, Y: 0}
	id, err := w.CreateJoint(def)
	if err != nil {
		t.Fatalf("CreateJoint: %v", err)
	}

	if err := w.SetSpringHertz(id, 4); err != nil {
		t.Fatalf("SetSpringHertz: %v", err)
	}
	if got, _ := w.SpringHertz(id); got != 4 {
		t.Fatalf("expected hertz 4, got %g", got)
	}
	if err := w.SetSpringDampingRatio(id, 0.5); err != nil {
		t.Fatalf("SetSpringDampingRatio: %v", err)
	}
	if got, _ := w.SpringDampingRatio(id); got != 0.5 {
		t.Fatalf("expected damping ratio 0.5, got %g", got)
	}

	if err := w.SetSpringHertz(id, -1); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("negative hertz should be rejected, got %v", err)
	}
	if err := w.SetSpringDampingRatio(id, -1); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("negative damping ratio should be rejected, got %v", err)
	}
	if got, _ := w.SpringHertz(id); got != 4 {
		t.Fatalf("rejected hertz should leave the old value, got %g", got)
	}
}

func TestWeldHoldsPose(t *testing.T) {
	w := newTestWorld()
	a := addAnchor(w, cp.Vector{})
	b := addBall(t, w, cp.Vector{X: 1, Y: 0})

	def := DefaultWeldJointDef()
	def.BodyA = a
	def.BodyB = b
	def.LocalAnchorA = cp.Vector{X: 1, Y: 0}
	def.LocalAnchorB = cp.Vector{}
	if _, err := w.CreateJoint(def); err != nil {
		t.Fatalf("CreateJoint: %v", err)
	}

	stepFor(w, 2)

	// Zero hertz means maximally stiff: the body hangs where it was welded.
	if p := w.Position(b); !nearVec(p, cp.Vector{X: 1, Y: 0}, 0.1) {
		t.Fatalf("welded body drifted to %v", p)
	}
	if ang := w.Angle(b); !near(ang, 0, 0.1) {
		t.Fatalf("welded body rotated to %g", ang)
	}
}

func TestRigidDistanceSwings(t *testing.T) {
	w := newTestWorld()
	a := addAnchor(w, cp.Vector{})
	b := addBall(t, w, cp.Vector{X: 1, Y: 0})

	def := DefaultDistanceJointDef()
	def.BodyA = a
	def.BodyB = b
	def.Length = 1
	// Spring off: the rod is rigid and the motor and limit are overridden.
	def.EnableMotor = true
	def.MotorSpeed = 10
	def.MaxMotorForce = 1000
	id, err := w.CreateJoint(def)
	if err != nil {
		t.Fatalf("CreateJoint: %v", err)
	}

	minY := 0.0
	for i := 0; i < 180; i++ {
		w.Step(stepDt)
		p := w.Position(b)
		if p.Y < minY {
			minY = p.Y
		}
		if d := p.Length(); !near(d, 1, 0.1) {
			t.Fatalf("rod length drifted to %g at step %d", d, i)
		}
	}
	if minY > -0.5 {
		t.Fatalf("pendulum never swung down, min y = %g", minY)
	}
	if got, _ := w.MotorSpeed(id); got != 10 {
		t.Fatalf("declared motor speed should still read back, got %g", got)
	}
}

func TestPrismaticMotorDrives(t *testing.T) {
	w := newStillWorld()
	a := addAnchor(w, cp.Vector{})
	b := addBall(t, w, cp.Vector{})

	def := DefaultPrismaticJointDef()
	def.BodyA = a
	def.BodyB = b
	def.EnableMotor = true
	def.MotorSpeed = 2
	def.MaxMotorForce = 100
	if _, err := w.CreateJoint(def); err != nil {
		t.Fatalf("CreateJoint: %v", err)
	}

	stepFor(w, 1)

	p := w.Position(b)
	if p.X < 1.0 || p.X > 2.5 {
		t.Fatalf("motor should have driven the body along +x, got %v", p)
	}
	if !near(p.Y, 0, 0.01) {
		t.Fatalf("prismatic body left its axis, y = %g", p.Y)
	}
	if v := w.Velocity(b); !near(v.X, 2, 0.5) {
		t.Fatalf("expected velocity near the motor speed, got %g", v.X)
	}
	if ang := w.Angle(b); !near(ang, 0, 0.01) {
		t.Fatalf("prismatic body rotated to %g", ang)
	}
}

func TestRevoluteMotorSpins(t *testing.T) {
	w := newStillWorld()
	a := addAnchor(w, cp.Vector{})
	b := addBall(t, w, cp.Vector{})

	def := DefaultRevoluteJointDef()
	def.BodyA = a
	def.BodyB = b
	def.EnableMotor = true
	def.MotorSpeed = 3
	def.MaxMotorTorque = 100
	if _, err := w.CreateJoint(def); err != nil {
		t.Fatalf("CreateJoint: %v", err)
	}

	stepFor(w, 1)

	if omega := w.AngularVelocity(b); !near(omega, 3, 0.1) {
		t.Fatalf("expected angular velocity near 3, got %g", omega)
	}
}

func TestWheelSuspensionSettlesInLimit(t *testing.T) {
	w := newTestWorld()
	a := addAnchor(w, cp.Vector{})
	b := addBall(t, w, cp.Vector{X: 0, Y: -1})

	def := DefaultWheelJointDef()
	def.BodyA = a
	def.BodyB = b
	def.LocalAnchorA = cp.Vector{X: 0, Y: -1}
	def.EnableSpring = true
	def.Hertz = 2
	def.DampingRatio = 0.7
	def.EnableLimit = true
	def.LowerTranslation = -0.25
	def.UpperTranslation = 0.25
	if _, err := w.CreateJoint(def); err != nil {
		t.Fatalf("CreateJoint: %v", err)
	}

	stepFor(w, 3)

	p := w.Position(b)
	if !near(p.X, 0, 0.01) {
		t.Fatalf("wheel left its suspension axis, x = %g", p.X)
	}
	if p.Y < -1.26 || p.Y > -0.99 {
		t.Fatalf("wheel should sag below rest but stay within the limit, y = %g", p.Y)
	}
}

func TestMouseJointTracksTarget(t *testing.T) {
	w := newStillWorld()
	a := addAnchor(w, cp.Vector{})
	b := addBall(t, w, cp.Vector{X: 2, Y: 0})

	def := DefaultMouseJointDef()
	def.BodyA = a
	def.BodyB = b
	def.Target = cp.Vector{X: 2, Y: 0}
	def.MaxForce = 1000
	if _, err := w.CreateJoint(def); err != nil {
		t.Fatalf("CreateJoint: %v", err)
	}

	stepFor(w, 1)

	// Body and target start coincident; the soft pivot holds it there.
	if p := w.Position(b); !nearVec(p, cp.Vector{X: 2, Y: 0}, 0.05) {
		t.Fatalf("mouse joint let the body drift to %v", p)
	}
}

func TestJointCreationDoesNotWake(t *testing.T) {
	w := newTestWorld()
	a := addAnchor(w, cp.Vector{})
	b := addBall(t, w, cp.Vector{X: 1, Y: 0})

	def := DefaultWeldJointDef()
	def.BodyA = a
	def.BodyB = b
	def.LocalAnchorA = cp.Vector{X: 1, Y: 0}
	if _, err := w.CreateJoint(def); err != nil {
		t.Fatalf("CreateJoint: %v", err)
	}

	slept := false
	for i := 0; i < 600; i++ {
		w.Step(stepDt)
		if !w.IsAwake(b) {
			slept = true
			break
		}
	}
	if !slept {
		t.Fatalf("held body never fell asleep")
	}

	c := addAnchor(w, cp.Vector{X: 1, Y: 2})
	dd := DefaultDistanceJointDef()
	dd.BodyA = c
	dd.BodyB = b
	dd.Length = 2
	id, err := w.CreateJoint(dd)
	if err != nil {
		t.Fatalf("CreateJoint: %v", err)
	}
	if w.IsAwake(b) {
		t.Fatalf("joint creation must not wake a sleeping body")
	}

	if err := w.SetMotorSpeed(id, 1); err != nil {
		t.Fatalf("SetMotorSpeed: %v", err)
	}
	if !w.IsAwake(b) {
		t.Fatalf("runtime control must wake the joint's bodies")
	}
}
