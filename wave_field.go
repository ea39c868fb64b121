package main

import "fmt"

// window holds the three time levels of the leapfrog scheme in a fixed ring.
// prev is ring[head], curr follows it and next follows curr. Rotating moves
// head forward, so the retired prev buffer is reused as the next output and
// nothing is allocated after construction.
type window struct {
	ring    [3]*grid
	head    int
	stepper stepper
	closed  bool
}

// newWindow allocates the ring and seeds prev and curr with the same profile,
// which starts the scheme with zero initial velocity.
func newWindow(n int, seed []float64, st stepper) (*window, error) {
	if len(seed) != n {
		return nil, fmt.Errorf("initial profile has %d values, grid has %d", len(seed), n)
	}
	w := &window{stepper: st}
	for i := range w.ring {
		g, err := newGrid(n)
		if err != nil {
			w.releaseGrids()
			return nil, fmt.Errorf("allocating time level %d: %w", i, err)
		}
		w.ring[i] = g
	}
	copy(w.previous().interior(), seed)
	copy(w.current().interior(), seed)
	return w, nil
}

func (w *window) previous() *grid { return w.ring[w.head] }

func (w *window) current() *grid { return w.ring[(w.head+1)%3] }

func (w *window) nextBuffer() *grid { return w.ring[(w.head+2)%3] }

// advance performs one leapfrog step: ghost fill on curr, stencil into next,
// then rotation so next becomes curr and curr becomes prev.
func (w *window) advance() error {
	if w.closed {
		return fmt.Errorf("advance on a closed window")
	}
	curr := w.current()
	applyReflectiveBoundary(curr)
	if err := w.stepper.step(w.previous(), curr, w.nextBuffer()); err != nil {
		return fmt.Errorf("%s stencil: %w", w.stepper.name(), err)
	}
	w.rotate()
	return nil
}

func (w *window) rotate() {
	w.head = (w.head + 1) % 3
}

// liveGrids counts the allocated grids held by the window.
func (w *window) liveGrids() int {
	live := 0
	for _, g := range w.ring {
		if g != nil && !g.released() {
			live++
		}
	}
	return live
}

// close releases the three grids and the stepper. Calling it again is a no-op.
func (w *window) close() {
	if w.closed {
		return
	}
	w.closed = true
	w.releaseGrids()
	if w.stepper != nil {
		w.stepper.close()
	}
}

func (w *window) releaseGrids() {
	for i, g := range w.ring {
		if g != nil {
			g.release()
		}
		w.ring[i] = nil
	}
}

// applyReflectiveBoundary mirrors the outermost interior values into the
// ghosts, giving a zero spatial derivative at both walls.
func applyReflectiveBoundary(g *grid) {
	n := g.size()
	g.set(-1, g.get(0))
	g.set(n, g.get(n-1))
}
