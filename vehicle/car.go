// Package vehicle composes bodies and wheel joints into a drivable car: one
// chassis, two wheels, and two suspension axles that spawn and despawn as a
// unit.
package vehicle

import (
	"fmt"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/axle/physics"
)

// Chassis hull in local coordinates, before scaling.
var chassisHull = []cp.Vector{
	{X: -1.5, Y: -0.5},
	{X: 1.5, Y: -0.5},
	{X: 1.5, Y: 0.0},
	{X: 0.0, Y: 0.9},
	{X: -1.15, Y: 0.9},
	{X: -1.5, Y: 0.2},
}

// Car is a chassis, two wheels, and two wheel joints ("axles"). Either all
// five exist or none do; a failed Spawn leaves nothing behind.
type Car struct {
	world *physics.World

	chassis    physics.BodyID
	rearWheel  physics.BodyID
	frontWheel physics.BodyID
	rearAxle   physics.JointID
	frontAxle  physics.JointID

	spawned bool
}

// Spawn builds the car at position. Scale sets the overall size, hertz and
// dampingRatio tune the suspension, torque bounds the drive motors, and
// userContext is stored on every body and axle. Spawning an already spawned
// car is a programmer error and panics.
func (c *Car) Spawn(world *physics.World, position cp.Vector, scale, hertz, dampingRatio, torque float64, userContext any) error {
	physics.Precondition(!c.spawned, "Car.Spawn", "car is already spawned")

	verts := make([]cp.Vector, len(chassisHull))
	for i, v := range chassisHull {
		verts[i] = v.Mult(scale)
	}

	bodyDef := physics.DefaultBodyDef()
	bodyDef.Type = physics.DynamicBody
	bodyDef.UserData = userContext

	shapeDef := physics.DefaultShapeDef()
	shapeDef.Density = 1.0 / scale
	shapeDef.Friction = 0.2

	bodyDef.Position = cp.Vector{X: 0, Y: 1.0 * scale}.Add(position)
	c.chassis = world.CreateBody(bodyDef)
	world.AddPolygon(c.chassis, verts, shapeDef)

	shapeDef.Density = 2.0 / scale
	shapeDef.Friction = 1.5
	radius := 0.4 * scale

	bodyDef.Position = cp.Vector{X: -1.0 * scale, Y: 0.35 * scale}.Add(position)
	c.rearWheel = world.CreateBody(bodyDef)
	world.AddCircle(c.rearWheel, radius, cp.Vector{}, shapeDef)

	bodyDef.Position = cp.Vector{X: 1.0 * scale, Y: 0.4 * scale}.Add(position)
	c.frontWheel = world.CreateBody(bodyDef)
	world.AddCircle(c.frontWheel, radius, cp.Vector{}, shapeDef)

	var err error
	c.rearAxle, err = c.spawnAxle(world, c.rearWheel, scale, hertz, dampingRatio, torque, userContext)
	if err == nil {
		c.frontAxle, err = c.spawnAxle(world, c.frontWheel, scale, hertz, dampingRatio, torque, userContext)
	}
	if err != nil {
		// All-or-nothing: destroying the bodies takes any created axle along.
		world.DestroyBody(c.rearWheel)
		world.DestroyBody(c.frontWheel)
		world.DestroyBody(c.chassis)
		*c = Car{}
		return fmt.Errorf("vehicle: spawn car: %w", err)
	}

	c.world = world
	c.spawned = true
	return nil
}

// spawnAxle connects the chassis to one wheel with a suspension wheel joint.
// The pivot is the wheel's current position and the suspension axis is world
// up, both taken into each body's local frame, so the joint translation
// reads zero in the spawn pose.
func (c *Car) spawnAxle(world *physics.World, wheel physics.BodyID, scale, hertz, dampingRatio, torque float64, userContext any) (physics.JointID, error) {
	axis := cp.Vector{X: 0, Y: 1}
	pivot := world.Position(wheel)

	def := physics.DefaultWheelJointDef()
	def.BodyA = c.chassis
	def.BodyB = wheel
	def.LocalAxisA = world.LocalVector(c.chassis, axis)
	def.LocalAnchorA = world.LocalPoint(c.chassis, pivot)
	def.LocalAnchorB = world.LocalPoint(wheel, pivot)
	def.MotorSpeed = 0
	def.MaxMotorTorque = torque
	def.EnableMotor = true
	def.EnableSpring = true
	def.Hertz = hertz
	def.DampingRatio = dampingRatio
	def.LowerTranslation = -0.25 * scale
	def.UpperTranslation = 0.25 * scale
	def.EnableLimit = true
	def.UserData = userContext

	return world.CreateJoint(def)
}

// Despawn destroys both axles, then the three bodies, and resets the car to
// the unspawned state. Despawning an unspawned car is a programmer error and
// panics.
func (c *Car) Despawn() {
	physics.Precondition(c.spawned, "Car.Despawn", "car is not spawned")

	// Joints must never outlive the bodies they reference.
	c.world.DestroyJoint(c.rearAxle)
	c.world.DestroyJoint(c.frontAxle)
	c.world.DestroyBody(c.rearWheel)
	c.world.DestroyBody(c.frontWheel)
	c.world.DestroyBody(c.chassis)

	*c = Car{}
}

// SetSpeed sets the drive motor speed on both axles and wakes the car so a
// stationary vehicle responds immediately.
func (c *Car) SetSpeed(speed float64) error {
	physics.Precondition(c.spawned, "Car.SetSpeed", "car is not spawned")
	if err := c.world.SetMotorSpeed(c.rearAxle, speed); err != nil {
		return err
	}
	if err := c.world.SetMotorSpeed(c.frontAxle, speed); err != nil {
		return err
	}
	c.world.WakeJointBodies(c.rearAxle)
	c.world.WakeJointBodies(c.frontAxle)
	return nil
}

// SetTorque bounds the drive motor torque on both axles.
func (c *Car) SetTorque(torque float64) error {
	physics.Precondition(c.spawned, "Car.SetTorque", "car is not spawned")
	if err := c.world.SetMaxMotorTorque(c.rearAxle, torque); err != nil {
		return err
	}
	return c.world.SetMaxMotorTorque(c.frontAxle, torque)
}

// SetHertz tunes the suspension stiffness on both axles.
func (c *Car) SetHertz(hertz float64) error {
	physics.Precondition(c.spawned, "Car.SetHertz", "car is not spawned")
	if err := c.world.SetSpringHertz(c.rearAxle, hertz); err != nil {
		return err
	}
	return c.world.SetSpringHertz(c.frontAxle, hertz)
}

// SetDampingRatio tunes the suspension damping on both axles.
func (c *Car) SetDampingRatio(dampingRatio float64) error {
	physics.Precondition(c.spawned, "Car.SetDampingRatio", "car is not spawned")
	if err := c.world.SetSpringDampingRatio(c.rearAxle, dampingRatio); err != nil {
		return err
	}
	return c.world.SetSpringDampingRatio(c.frontAxle, dampingRatio)
}

// IsSpawned reports whether the car currently exists in the world.
func (c *Car) IsSpawned() bool { return c.spawned }

// Chassis returns the chassis body handle.
func (c *Car) Chassis() physics.BodyID { return c.chassis }

// RearWheel returns the rear wheel body handle.
func (c *Car) RearWheel() physics.BodyID { return c.rearWheel }

// FrontWheel returns the front wheel body handle.
func (c *Car) FrontWheel() physics.BodyID { return c.frontWheel }

// RearAxle returns the rear wheel joint handle.
func (c *Car) RearAxle() physics.JointID { return c.rearAxle }

// FrontAxle returns the front wheel joint handle.
func (c *Car) FrontAxle() physics.JointID { return c.frontAxle }
