// Command demo drives a car over rough ground. Left/right arrows drive,
// space brakes, R respawns the car. Editing tuning/car.yaml while the demo
// runs re-tunes the live car.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/jakecoffman/cp"
	"golang.org/x/image/colornames"

	"github.com/milk9111/axle/common"
	"github.com/milk9111/axle/physics"
	"github.com/milk9111/axle/tuning"
	"github.com/milk9111/axle/vehicle"
)

const stepDT = 1.0 / 60.0

func main() {
	watch := flag.Bool("watch", true, "reload tuning presets on change")
	flag.Parse()

	game, err := newGame()
	if err != nil {
		log.Fatal(err)
	}

	if *watch {
		watcher, err := tuning.NewWatcher("tuning")
		if err != nil {
			log.Printf("demo: preset watch disabled: %v", err)
		} else {
			defer watcher.Close()
			game.presetEvents = watcher.Events
		}
	}

	ebiten.SetWindowSize(1280, 720)
	ebiten.SetWindowTitle("axle demo")
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}

type game struct {
	world *physics.World
	car   *vehicle.Car
	spec  tuning.CarSpec

	ground       physics.BodyID
	cameraX      float64
	presetEvents <-chan string
}

func newGame() (*game, error) {
	worldSpec, err := tuning.LoadWorldSpec()
	if err != nil {
		return nil, err
	}
	carSpec, err := tuning.LoadCarSpec()
	if err != nil {
		return nil, err
	}

	worldDef := physics.DefaultWorldDef()
	worldDef.Gravity = cp.Vector{X: 0, Y: worldSpec.GravityY}
	worldDef.SleepTimeThreshold = worldSpec.SleepTimeThreshold
	worldDef.Iterations = worldSpec.Iterations

	g := &game{
		world: physics.NewWorld(worldDef),
		car:   &vehicle.Car{},
		spec:  carSpec,
	}
	g.buildGround()
	if err := g.spawnCar(); err != nil {
		return nil, err
	}
	return g, nil
}

// buildGround lays a flat run-up followed by a stretch of sine hills.
func (g *game) buildGround() {
	def := physics.DefaultBodyDef()
	g.ground = g.world.CreateBody(def)

	shape := physics.DefaultShapeDef()
	shape.Friction = 0.8

	prev := cp.Vector{X: -40, Y: 0}
	g.world.AddSegment(g.ground, cp.Vector{X: -40, Y: 20}, prev, 0, shape)
	for x := -39.0; x <= 120; x++ {
		cur := cp.Vector{X: x, Y: groundHeight(x)}
		g.world.AddSegment(g.ground, prev, cur, 0, shape)
		prev = cur
	}
}

func groundHeight(x float64) float64 {
	if x < 20 {
		return 0
	}
	return 1.5 * (1 - math.Cos((x-20)*0.25))
}

func (g *game) spawnCar() error {
	return g.car.Spawn(g.world, cp.Vector{X: 0, Y: 0}, g.spec.Scale,
		g.spec.SpringHertz, g.spec.DampingRatio, g.spec.MaxTorque*g.spec.Scale, nil)
}

func (g *game) Update() error {
	g.reloadPresets()

	switch {
	case ebiten.IsKeyPressed(ebiten.KeyRight):
		// positive motor speed spins the wheels toward -x
		if err := g.car.SetSpeed(-g.spec.DriveSpeed); err != nil {
			return err
		}
	case ebiten.IsKeyPressed(ebiten.KeyLeft):
		if err := g.car.SetSpeed(g.spec.DriveSpeed); err != nil {
			return err
		}
	case ebiten.IsKeyPressed(ebiten.KeySpace):
		if err := g.car.SetSpeed(0); err != nil {
			return err
		}
	}
	if ebiten.IsKeyPressed(ebiten.KeyR) && !g.car.IsSpawned() {
		if err := g.spawnCar(); err != nil {
			return err
		}
	} else if ebiten.IsKeyPressed(ebiten.KeyBackspace) && g.car.IsSpawned() {
		g.car.Despawn()
	}

	g.world.Step(stepDT)

	if g.car.IsSpawned() {
		target := g.world.Position(g.car.Chassis()).X
		g.cameraX = common.Lerp(g.cameraX, target, 0.1)
	}
	return nil
}

// reloadPresets applies edited car presets to the live car.
func (g *game) reloadPresets() {
	if g.presetEvents == nil {
		return
	}
	select {
	case <-g.presetEvents:
		spec, err := tuning.LoadCarSpec()
		if err != nil {
			log.Printf("demo: reload car preset: %v", err)
			return
		}
		g.spec = spec
		if !g.car.IsSpawned() {
			return
		}
		if err := g.car.SetHertz(spec.SpringHertz); err == nil {
			_ = g.car.SetDampingRatio(spec.DampingRatio)
			_ = g.car.SetTorque(spec.MaxTorque * spec.Scale)
		}
	default:
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)
	drawer := &spaceDrawer{
		screen: screen,
		camera: cp.Vector{X: g.cameraX, Y: 3},
		zoom:   40,
	}
	cp.DrawSpace(g.world.Space(), drawer)

	msg := fmt.Sprintf("%s  hertz=%.1f damping=%.1f torque=%.1f", g.spec.Name,
		g.spec.SpringHertz, g.spec.DampingRatio, g.spec.MaxTorque)
	ebitenutil.DebugPrint(screen, msg)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
