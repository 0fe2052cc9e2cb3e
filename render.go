package main

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalchef/common"
	"github.com/milk9111/portalchef/geom"
	"github.com/milk9111/portalchef/level"
	"github.com/milk9111/portalchef/portal"
)

var (
	colorBackground = color.RGBA{R: 0x1d, G: 0x1b, B: 0x24, A: 0xff}
	colorTable      = color.RGBA{R: 0x8a, G: 0x5a, B: 0x3b, A: 0xff}
	colorPot        = color.RGBA{R: 0x5c, G: 0x63, B: 0x6e, A: 0xff}
	colorPortals    = [2]color.RGBA{
		{R: 0xff, G: 0x8c, B: 0x1a, A: 0xff},
		{R: 0x2a, G: 0x9d, B: 0xff, A: 0xff},
	}
	colorFoods = map[string]color.RGBA{
		"Broccoli": {R: 0x3f, G: 0xa3, B: 0x4d, A: 0xff},
		"Potato":   {R: 0xc8, G: 0xa2, B: 0x6b, A: 0xff},
		"Carrot":   {R: 0xf2, G: 0x7b, B: 0x1d, A: 0xff},
		"Mushroom": {R: 0xe6, G: 0xdc, B: 0xcf, A: 0xff},
		"Steak":    {R: 0xa3, G: 0x2a, B: 0x2a, A: 0xff},
	}
	colorFoodDefault = color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
	colorMeterCool   = color.RGBA{R: 0x3f, G: 0xa3, B: 0x4d, A: 0xff}
	colorMeterHot    = color.RGBA{R: 0xe0, G: 0x30, B: 0x20, A: 0xff}
)

var whiteSubImage = func() *ebiten.Image {
	img := ebiten.NewImage(3, 3)
	img.Fill(color.White)
	return img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}()

func (g *Game) drawWorld(screen *ebiten.Image) {
	screen.Fill(colorBackground)
	g.drawArena(screen)

	pair := g.driver.Pair()
	foods := g.driver.Foods()

	// foods part-way through a portal only show the part still in front of it
	for _, f := range foods {
		poly := corners(f.Body.Box)
		if p := pair.Portal(f.Body.Owner); p != nil {
			poly = geom.ClipHalfPlane(poly, p.Position(), p.Normal())
		}
		g.fillPolygon(screen, poly, foodColor(f.Name))
	}

	// and the rest comes out of the other portal
	for _, to := range []portal.ID{portal.First, portal.Second} {
		exit := pair.Portal(to)
		g.driver.Relocate(to)
		for _, f := range foods {
			if f.Body.Owner != to.Other() {
				continue
			}
			poly := geom.ClipHalfPlane(corners(f.Body.Box), exit.Position(), exit.Normal())
			g.fillPolygon(screen, poly, foodColor(f.Name))
		}
		g.driver.Restore()
	}

	for _, id := range []portal.ID{portal.First, portal.Second} {
		g.drawPortal(screen, pair.Portal(id), colorPortals[id])
	}
}

func (g *Game) drawArena(screen *ebiten.Image) {
	arena := g.spec.Arena
	left, floor := g.camera.ToScreen(cp.Vector{X: -arena.Wall, Y: arena.Floor})
	right, ceiling := g.camera.ToScreen(cp.Vector{X: arena.Wall, Y: arena.Ceiling})

	vector.FillRect(screen, float32(left), float32(floor), float32(right-left), 4, colorTable, false)
	vector.StrokeLine(screen, float32(left), float32(ceiling), float32(left), float32(floor), 2, colorTable, false)
	vector.StrokeLine(screen, float32(right), float32(ceiling), float32(right), float32(floor), 2, colorTable, false)
	vector.StrokeLine(screen, float32(left), float32(ceiling), float32(right), float32(ceiling), 1, colorTable, false)

	for _, pot := range g.driver.Pots() {
		x0, y0 := g.camera.ToScreen(cp.Vector{X: pot.Mouth.L, Y: pot.Mouth.T})
		x1, y1 := g.camera.ToScreen(cp.Vector{X: pot.Mouth.R, Y: arena.Floor})
		vector.FillRect(screen, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), colorPot, false)
	}
}

func (g *Game) drawPortal(screen *ebiten.Image, p *portal.Portal, clr color.RGBA) {
	g.strokePolygon(screen, corners(p.Box()), clr, 3)

	// a short tick shows which way the portal faces
	x0, y0 := g.camera.ToScreen(p.Position())
	x1, y1 := g.camera.ToScreen(p.Position().Add(p.Normal().Mult(3)))
	vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), 2, clr, true)

	if g.opts.Debug {
		for _, f := range g.driver.Foods() {
			if p.Near(f.Body) {
				fx, fy := g.camera.ToScreen(f.Body.Position)
				vector.StrokeLine(screen, float32(x0), float32(y0), float32(fx), float32(fy), 1, clr, true)
			}
		}
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	lvl := g.driver.Level()
	if lvl == nil {
		return
	}

	msg := fmt.Sprintf("%s    score %d    time %.0fs", lvl.Title(), lvl.Score(), g.driver.Time())
	switch lvl.Status() {
	case level.Won:
		msg += "\nLEVEL COMPLETE - enter for the next level"
	case level.Lost:
		msg += "\nGAME OVER - enter to retry"
	}
	if g.opts.Debug {
		msg += fmt.Sprintf("\nTPS %.1f  step %s  foods %d  teleports %d  bounces %d",
			ebiten.ActualTPS(), g.driver.StepCost(), len(g.driver.Foods()), g.teleports, g.bounces)
	}
	ebitenutil.DebugPrint(screen, msg)

	if meter := common.Clamp(lvl.Meter(), 0, 100); meter > 0 {
		t := meter / 100
		clr := color.RGBA{
			R: uint8(common.Lerp(float64(colorMeterCool.R), float64(colorMeterHot.R), t)),
			G: uint8(common.Lerp(float64(colorMeterCool.G), float64(colorMeterHot.G), t)),
			B: uint8(common.Lerp(float64(colorMeterCool.B), float64(colorMeterHot.B), t)),
			A: 0xff,
		}
		const width, height = 200, 10
		x := float32(common.BaseWidth - width - 16)
		vector.StrokeRect(screen, x, 16, width, height, 1, color.White, false)
		vector.FillRect(screen, x, 16, float32(width*t), height, clr, false)
	}
}

func corners(b geom.OrientedBox) []cp.Vector {
	c := b.Corners()
	return c[:]
}

func foodColor(name string) color.RGBA {
	if c, ok := colorFoods[name]; ok {
		return c
	}
	return colorFoodDefault
}

func (g *Game) strokePolygon(screen *ebiten.Image, poly []cp.Vector, clr color.Color, width float32) {
	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		x0, y0 := g.camera.ToScreen(p)
		x1, y1 := g.camera.ToScreen(q)
		vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), width, clr, true)
	}
}

// fillPolygon draws a convex polygon as a triangle fan.
func (g *Game) fillPolygon(screen *ebiten.Image, poly []cp.Vector, clr color.RGBA) {
	if len(poly) < 3 {
		return
	}
	r, gr, b, a := float32(clr.R)/0xff, float32(clr.G)/0xff, float32(clr.B)/0xff, float32(clr.A)/0xff
	vertices := make([]ebiten.Vertex, 0, len(poly))
	for _, p := range poly {
		x, y := g.camera.ToScreen(p)
		vertices = append(vertices, ebiten.Vertex{
			DstX: float32(x), DstY: float32(y),
			SrcX: 1, SrcY: 1,
			ColorR: r, ColorG: gr, ColorB: b, ColorA: a,
		})
	}
	indices := make([]uint16, 0, 3*(len(poly)-2))
	for i := 1; i < len(poly)-1; i++ {
		indices = append(indices, 0, uint16(i), uint16(i+1))
	}
	screen.DrawTriangles(vertices, indices, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}
