package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// simulation owns one window and its snapshot writer. It is driven either by
// run (batch mode) or one iteration at a time by the viewer.
type simulation struct {
	params    simParams
	field     *window
	snapshots *snapshotWriter
	iteration int
	diverged  bool
	closed    bool
}

// runStats reports what a finished run did.
type runStats struct {
	Iterations       int
	SnapshotsWritten int
	SnapshotsFailed  int
	Final            fieldStats
	Elapsed          time.Duration
}

// newSimulation allocates the window for p, seeds it with seed and attaches
// the snapshot writer. The caller must call close.
func newSimulation(p simParams, seed []float64, snapshots *snapshotWriter) (*simulation, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	st, err := newStepper(p)
	if err != nil {
		return nil, err
	}
	field, err := newWindow(p.N, seed, st)
	if err != nil {
		st.close()
		return nil, err
	}
	return &simulation{params: p, field: field, snapshots: snapshots}, nil
}

// done reports whether the fixed iteration count has been reached.
func (s *simulation) done() bool { return s.iteration >= s.params.MaxIteration }

// stepOnce advances the field and offers the new level to the snapshot writer.
func (s *simulation) stepOnce() error {
	if s.done() {
		return nil
	}
	if err := s.field.advance(); err != nil {
		return err
	}
	if err := s.snapshots.maybeSnapshot(s.iteration, s.field.current()); err != nil {
		return fmt.Errorf("iteration %d: %w", s.iteration, err)
	}
	if err := s.snapshots.poll(); err != nil {
		return fmt.Errorf("iteration %d: %w", s.iteration, err)
	}
	s.iteration++
	if s.params.LogEvery > 0 && s.iteration%s.params.LogEvery == 0 {
		s.logProgress()
	}
	return nil
}

// run loops until the iteration count is reached or ctx is cancelled.
func (s *simulation) run(ctx context.Context) error {
	for !s.done() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("stopped after %d iterations: %w", s.iteration, err)
		}
		if err := s.stepOnce(); err != nil {
			return err
		}
	}
	return nil
}

func (s *simulation) stats() fieldStats {
	return measureField(s.field.previous().interior(), s.field.current().interior(), s.params)
}

func (s *simulation) logProgress() {
	st := s.stats()
	if st.Diverged {
		if !s.diverged {
			log.Printf("Field diverged at iteration %d (max |u| = %g)", s.iteration, st.MaxAbs)
			s.diverged = true
		}
		return
	}
	log.Printf("Iteration %d/%d: max |u| %.6f, energy %.6f",
		s.iteration, s.params.MaxIteration, st.MaxAbs, st.Energy)
}

// close flushes the snapshot writer and releases the window.
func (s *simulation) close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.snapshots.close()
	s.field.close()
	return err
}

// runSimulation initializes a window, runs the fixed iteration loop and
// finalizes, writing snapshots into p.OutputDir.
func runSimulation(ctx context.Context, p simParams, seed []float64) (runStats, error) {
	start := time.Now()
	writer := newSnapshotWriter(p)
	sim, err := newSimulation(p, seed, writer)
	if err != nil {
		_ = writer.close()
		return runStats{}, err
	}
	runErr := sim.run(ctx)
	stats := runStats{
		Iterations: sim.iteration,
		Final:      sim.stats(),
	}
	closeErr := sim.close()
	stats.SnapshotsFailed = sim.snapshots.failed
	stats.SnapshotsWritten = sim.snapshots.submitted - sim.snapshots.failed
	stats.Elapsed = time.Since(start)
	return stats, errors.Join(runErr, closeErr)
}
