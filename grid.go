package main

import "fmt"

// grid holds the n interior samples of the field plus one ghost slot on each
// side. Callers address it with logical indices in [-1, n]; the +1 storage
// offset never leaves this file.
type grid struct {
	n    int
	data []float64
}

// newGrid allocates a grid with n interior points.
func newGrid(n int) (*grid, error) {
	if n < 1 || n > maxGridPoints {
		return nil, fmt.Errorf("%w: %d interior points (limit %d)", ErrAllocation, n, maxGridPoints)
	}
	return &grid{n: n, data: make([]float64, n+2)}, nil
}

// size returns the number of interior points.
func (g *grid) size() int { return g.n }

func (g *grid) get(i int) float64 { return g.data[i+1] }

func (g *grid) set(i int, v float64) { g.data[i+1] = v }

// interior exposes the live interior slice, index 0 first.
func (g *grid) interior() []float64 { return g.data[1 : g.n+1] }

// withGhosts exposes the full storage, ghost at -1 first. Only the stepper
// backends use it to hand a contiguous buffer to their kernels.
func (g *grid) withGhosts() []float64 { return g.data }

// copyInterior returns a detached copy of the interior values.
func (g *grid) copyInterior() []float64 {
	out := make([]float64, g.n)
	copy(out, g.interior())
	return out
}

// fill writes v into every slot, ghosts included.
func (g *grid) fill(v float64) {
	for i := range g.data {
		g.data[i] = v
	}
}

// release drops the backing storage. A released grid must not be used again.
func (g *grid) release() {
	g.data = nil
}

// released reports whether release has been called.
func (g *grid) released() bool { return g.data == nil }
