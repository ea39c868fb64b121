package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

var (
	backgroundColor = color.RGBA{10, 12, 20, 255}
	axisColor       = color.RGBA{50, 60, 90, 255}
	fieldColor      = color.RGBA{0, 220, 200, 255}
	probeColor      = color.RGBA{255, 0, 0, 255}
)

// fieldRange is the |u| mapped to the window half height. The cosine seed
// peaks at one, so a little headroom keeps the walls visible.
const fieldRange = 1.25

// Draw plots u(x) across the window with the rest position as a horizontal
// axis and the audio probe marked in red.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	mid := windowHeight / 2
	drawLine(screen, 0, mid, windowWidth-1, mid, axisColor)

	g.columns = downsample(g.sim.field.current().interior(), windowWidth)
	cols := len(g.columns)
	if cols > 0 {
		prevX, prevY := 0, fieldToRow(g.columns[0])
		for i := 1; i < cols; i++ {
			x := i * (windowWidth - 1) / maxInt(cols-1, 1)
			y := fieldToRow(g.columns[i])
			drawLine(screen, prevX, prevY, x, y, fieldColor)
			prevX, prevY = x, y
		}
		probeX := (cols / 2) * (windowWidth - 1) / maxInt(cols-1, 1)
		drawLine(screen, probeX, mid-4, probeX, mid+4, probeColor)
	}

	if *debugFlag {
		tps := ebiten.ActualTPS()
		if tps < 0 {
			tps = 0
		}
		simMS := g.lastSimDuration.Seconds() * 1000
		state := "running"
		if g.paused {
			state = "paused"
		} else if g.sim.done() {
			state = "done"
		}
		debugMsg := fmt.Sprintf("FPS: %.1f (%.1f TPS)\nIteration: %d/%d (%s)\nSim steps: %.1f/s (mult %dx, +/-)\nSim: %.2f ms\nmax |u|: %.4f energy: %.4f",
			ebiten.ActualFPS(), tps, g.sim.iteration, g.sim.params.MaxIteration, state,
			g.simStepsPerSecond(), g.simStepMultiplier, simMS, g.lastStats.MaxAbs, g.lastStats.Energy)
		ebitenutil.DebugPrint(screen, debugMsg)
	}
}

// Layout reports the logical screen size used by Ebiten.
func (g *Game) Layout(_, _ int) (int, int) { return windowWidth, windowHeight }

// fieldToRow maps a field value to a screen row, clamped to the window.
func fieldToRow(v float64) int {
	if math.IsNaN(v) {
		v = 0
	}
	half := float64(windowHeight-1) / 2
	row := int(math.Round(half - v/fieldRange*half))
	return clampCoord(row, 0, windowHeight-1)
}

// clampCoord constrains v to lie within the inclusive [min, max] range.
func clampCoord(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// drawLine plots a line segment using Bresenham's integer algorithm.
func drawLine(screen *ebiten.Image, x0, y0, x1, y1 int, clr color.Color) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		if x0 >= 0 && x0 < windowWidth && y0 >= 0 && y0 < windowHeight {
			screen.Set(x0, y0, clr)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}
