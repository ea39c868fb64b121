package main

import (
	"fmt"
	"log"
)

// Backend names accepted by -backend.
const (
	backendCPU    = "cpu"
	backendSerial = "serial"
	backendOpenCL = "opencl"
)

// stepper derives time level t+1 from levels t and t-1. Implementations read
// the ghosts of curr, so callers must refresh them first, and must return only
// after every interior point of next has been written.
type stepper interface {
	step(prev, curr, next *grid) error
	name() string
	close()
}

// leapfrogSpan applies the three point update to interior indices [start, end).
// The slices include the ghost slots, so interior index i lives at i+1.
func leapfrogSpan(prev, curr, next []float64, r float64, start, end int) {
	for i := start + 1; i <= end; i++ {
		c := curr[i]
		next[i] = -prev[i] + 2*c + r*(curr[i-1]+curr[i+1]-2*c)
	}
}

// serialStepper runs the update on the calling goroutine.
type serialStepper struct {
	r float64
}

func newSerialStepper(r float64) *serialStepper {
	return &serialStepper{r: r}
}

func (s *serialStepper) step(prev, curr, next *grid) error {
	if err := checkStepShapes(prev, curr, next); err != nil {
		return err
	}
	leapfrogSpan(prev.withGhosts(), curr.withGhosts(), next.withGhosts(), s.r, 0, curr.size())
	return nil
}

func (s *serialStepper) name() string { return backendSerial }

func (s *serialStepper) close() {}

func checkStepShapes(prev, curr, next *grid) error {
	n := curr.size()
	if prev.size() != n || next.size() != n {
		return fmt.Errorf("stencil grids disagree on size: prev=%d curr=%d next=%d", prev.size(), n, next.size())
	}
	return nil
}

// newStepper builds the backend selected in p. Small grids fall back to the
// serial loop because the worker barrier costs more than the update itself.
func newStepper(p simParams) (stepper, error) {
	r := p.courantSquared()
	switch p.Backend {
	case backendSerial:
		return newSerialStepper(r), nil
	case backendOpenCL:
		solver, err := newOpenCLStepper(p.N, r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		log.Printf("OpenCL stepper enabled (device: %s)", solver.DeviceName())
		return solver, nil
	default:
		if p.Workers <= 1 || p.N < minParallelSpan*2 {
			return newSerialStepper(r), nil
		}
		return newParallelStepper(p.N, r, p.Workers), nil
	}
}
