package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/jakecoffman/cp"
)

// spaceDrawer renders the physics space with a y-up world to y-down screen
// camera transform.
type spaceDrawer struct {
	screen *ebiten.Image
	camera cp.Vector // world point at the screen center
	zoom   float64
}

func (d *spaceDrawer) toScreen(p cp.Vector) (float64, float64) {
	w := d.screen.Bounds().Dx()
	h := d.screen.Bounds().Dy()
	x := float64(w)/2 + (p.X-d.camera.X)*d.zoom
	y := float64(h)/2 - (p.Y-d.camera.Y)*d.zoom
	return x, y
}

func (d *spaceDrawer) line(a, b cp.Vector, c color.RGBA) {
	ax, ay := d.toScreen(a)
	bx, by := d.toScreen(b)
	ebitenutil.DrawLine(d.screen, ax, ay, bx, by, c)
}

func (d *spaceDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	c := fcolorToRGBA(outline)
	steps := 20
	prev := pos.Add(cp.Vector{X: radius, Y: 0})
	for i := 1; i <= steps; i++ {
		th := float64(i) * (2 * math.Pi / float64(steps))
		cur := pos.Add(cp.Vector{X: math.Cos(th) * radius, Y: math.Sin(th) * radius})
		d.line(prev, cur, c)
		prev = cur
	}
	// spoke so wheel rotation is visible
	d.line(pos, pos.Add(cp.Vector{X: math.Cos(angle) * radius, Y: math.Sin(angle) * radius}), c)
}

func (d *spaceDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.line(a, b, fcolorToRGBA(fill))
}

func (d *spaceDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.line(a, b, fcolorToRGBA(outline))
	if radius > 0 {
		d.DrawCircle(a, 0, radius, outline, fill, data)
		d.DrawCircle(b, 0, radius, outline, fill, data)
	}
}

func (d *spaceDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	c := fcolorToRGBA(outline)
	for i := 0; i < count; i++ {
		d.line(verts[i], verts[(i+1)%count], c)
	}
}

func (d *spaceDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	c := fcolorToRGBA(fill)
	l := size / (2 * d.zoom)
	d.line(pos.Add(cp.Vector{X: -l}), pos.Add(cp.Vector{X: l}), c)
	d.line(pos.Add(cp.Vector{Y: -l}), pos.Add(cp.Vector{Y: l}), c)
}

func (d *spaceDrawer) Flags() uint {
	return cp.DRAW_SHAPES | cp.DRAW_CONSTRAINTS
}

func (d *spaceDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1.0, B: 0.2, A: 1.0}
}

func (d *spaceDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if shape == nil {
		return cp.FColor{R: 1, G: 1, B: 1, A: 1}
	}
	if shape.Body() != nil && shape.Body().GetType() == cp.BODY_STATIC {
		return cp.FColor{R: 0.4, G: 0.7, B: 1.0, A: 1.0}
	}
	if shape.Body() != nil && shape.Body().IsSleeping() {
		return cp.FColor{R: 0.5, G: 0.5, B: 0.5, A: 1.0}
	}
	return cp.FColor{R: 0.9, G: 0.4, B: 0.9, A: 1.0}
}

func (d *spaceDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 0.7, G: 0.7, B: 0.7, A: 1.0}
}

func (d *spaceDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1.0, G: 0.1, B: 0.1, A: 1.0}
}

func (d *spaceDrawer) Data() interface{} {
	return nil
}

func fcolorToRGBA(c cp.FColor) color.RGBA {
	clamp := func(v float32) uint8 {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return uint8(v * 255)
	}
	return color.RGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}
