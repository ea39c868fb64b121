package main

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func testSimParams(t *testing.T, n, iterations, every int) simParams {
	t.Helper()
	p := defaultSimParams()
	p.N = n
	p.MaxIteration = iterations
	p.SnapshotFreq = every
	p.OutputDir = t.TempDir()
	p.Workers = 1
	p.LogEvery = 0
	p, err := newSimParams(p, 0)
	if err != nil {
		t.Fatalf("newSimParams: %v", err)
	}
	return p
}

func TestDefaultRunStaysBounded(t *testing.T) {
	p := testSimParams(t, defaultGridPoints, defaultMaxIteration, defaultSnapshotEvery)
	stats, err := runSimulation(context.Background(), p, cosineProfile(p.N))
	if err != nil {
		t.Fatalf("runSimulation: %v", err)
	}
	if stats.Iterations != defaultMaxIteration {
		t.Fatalf("ran %d iterations, expected %d", stats.Iterations, defaultMaxIteration)
	}
	if stats.Final.Diverged || stats.Final.MaxAbs > 1.0001 {
		t.Fatalf("field not bounded: %+v", stats.Final)
	}
	if stats.SnapshotsWritten != defaultMaxIteration/defaultSnapshotEvery || stats.SnapshotsFailed != 0 {
		t.Fatalf("snapshots written=%d failed=%d", stats.SnapshotsWritten, stats.SnapshotsFailed)
	}

	entries, err := os.ReadDir(p.OutputDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 400 {
		t.Fatalf("found %d artifacts, expected 400", len(entries))
	}
	for _, name := range []string{"00000.dat", "00399.dat"} {
		info, err := os.Stat(filepath.Join(p.OutputDir, name))
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		if info.Size() != int64(p.N*8) {
			t.Fatalf("%s has %d bytes, expected %d", name, info.Size(), p.N*8)
		}
	}
	if _, err := os.Stat(filepath.Join(p.OutputDir, "00400.dat")); !os.IsNotExist(err) {
		t.Fatalf("unexpected artifact 00400.dat: %v", err)
	}
}

func TestSnapshotsMatchReplayedWindow(t *testing.T) {
	p := testSimParams(t, 64, 200, 10)
	seed := cosineProfile(p.N)
	if _, err := runSimulation(context.Background(), p, seed); err != nil {
		t.Fatalf("runSimulation: %v", err)
	}

	w := newTestWindow(t, seed, p.courantSquared())
	for it := 0; it < p.MaxIteration; it++ {
		if err := w.advance(); err != nil {
			t.Fatalf("advance: %v", err)
		}
		if it%p.SnapshotFreq != 0 {
			continue
		}
		got, err := readSnapshot(snapshotPath(p.OutputDir, it/p.SnapshotFreq), p.Precision)
		if err != nil {
			t.Fatalf("iteration %d: %v", it, err)
		}
		want := w.current().interior()
		if len(got) != len(want) {
			t.Fatalf("iteration %d: %d values, expected %d", it, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("iteration %d index %d: %v, expected %v", it, i, got[i], want[i])
			}
		}
	}
}

func TestAsyncRunMatchesSync(t *testing.T) {
	syncParams := testSimParams(t, 128, 300, 7)
	asyncParams := syncParams
	asyncParams.OutputDir = t.TempDir()
	asyncParams.AsyncSnapshot = true

	seed := cosineProfile(syncParams.N)
	for _, p := range []simParams{syncParams, asyncParams} {
		if _, err := runSimulation(context.Background(), p, seed); err != nil {
			t.Fatalf("runSimulation(async=%v): %v", p.AsyncSnapshot, err)
		}
	}
	for seq := 0; seq*syncParams.SnapshotFreq < syncParams.MaxIteration; seq++ {
		a, err := os.ReadFile(snapshotPath(syncParams.OutputDir, seq))
		if err != nil {
			t.Fatalf("sync artifact %d: %v", seq, err)
		}
		b, err := os.ReadFile(snapshotPath(asyncParams.OutputDir, seq))
		if err != nil {
			t.Fatalf("async artifact %d: %v", seq, err)
		}
		if string(a) != string(b) {
			t.Fatalf("artifact %d differs between sync and async runs", seq)
		}
	}
}

func TestZeroIterationsWritesNothing(t *testing.T) {
	p := testSimParams(t, 16, 0, 1)
	stats, err := runSimulation(context.Background(), p, cosineProfile(p.N))
	if err != nil {
		t.Fatalf("runSimulation: %v", err)
	}
	if stats.Iterations != 0 || stats.SnapshotsWritten != 0 {
		t.Fatalf("stats %+v, expected an empty run", stats)
	}
	entries, err := os.ReadDir(p.OutputDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("found %d artifacts, expected none", len(entries))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	p := testSimParams(t, 16, 1000, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats, err := runSimulation(ctx, p, cosineProfile(p.N))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, expected context.Canceled", err)
	}
	if stats.Iterations != 0 {
		t.Fatalf("ran %d iterations after cancellation", stats.Iterations)
	}
}

func TestSnapshotFailurePolicies(t *testing.T) {
	p := testSimParams(t, 16, 20, 5)
	p.OutputDir = filepath.Join(t.TempDir(), "missing")
	seed := cosineProfile(p.N)

	_, err := runSimulation(context.Background(), p, seed)
	if !errors.Is(err, ErrSnapshotWrite) {
		t.Fatalf("abort policy: error = %v, expected ErrSnapshotWrite", err)
	}

	p.OnSnapshotErr = continueOnSnapshotError
	stats, err := runSimulation(context.Background(), p, seed)
	if err != nil {
		t.Fatalf("continue policy: %v", err)
	}
	if stats.Iterations != p.MaxIteration || stats.SnapshotsFailed != 4 || stats.SnapshotsWritten != 0 {
		t.Fatalf("continue policy stats %+v", stats)
	}
}

func TestNewSimulationRejectsBadInput(t *testing.T) {
	p := testSimParams(t, 16, 10, 1)
	w := newSnapshotWriter(p)
	defer w.close()
	if _, err := newSimulation(p, make([]float64, 15), w); err == nil {
		t.Fatal("expected an error for a short seed")
	}

	bad := p
	bad.Dt = 2
	if _, err := newSimulation(bad, make([]float64, 16), w); !errors.Is(err, ErrInvalidParameters) {
		t.Fatalf("error = %v, expected ErrInvalidParameters", err)
	}
}

func TestEnergyIsConservedApproximately(t *testing.T) {
	p := testSimParams(t, 256, 0, 1)
	w := newSnapshotWriter(p)
	sim, err := newSimulation(p, cosineProfile(p.N), w)
	if err != nil {
		t.Fatalf("newSimulation: %v", err)
	}
	defer sim.close()
	sim.params.MaxIteration = 500
	if err := sim.stepOnce(); err != nil {
		t.Fatalf("stepOnce: %v", err)
	}
	start := sim.stats().Energy
	for !sim.done() {
		if err := sim.stepOnce(); err != nil {
			t.Fatalf("stepOnce: %v", err)
		}
	}
	end := sim.stats().Energy
	if start == 0 || math.Abs(end-start)/start > 0.05 {
		t.Fatalf("energy drifted from %v to %v", start, end)
	}
}

func TestAsyncSnapshotFailurePolicies(t *testing.T) {
	p := testSimParams(t, 16, 20, 5)
	p.OutputDir = filepath.Join(t.TempDir(), "missing")
	p.AsyncSnapshot = true
	p.OnSnapshotErr = continueOnSnapshotError
	seed := cosineProfile(p.N)

	stats, err := runSimulation(context.Background(), p, seed)
	if err != nil {
		t.Fatalf("continue policy: %v", err)
	}
	if stats.Iterations != p.MaxIteration || stats.SnapshotsFailed != 4 || stats.SnapshotsWritten != 0 {
		t.Fatalf("continue policy stats %+v", stats)
	}

	// One snapshot at iteration 0; the run has to stop long before the end
	// once the writer goroutine reports it.
	p.OnSnapshotErr = abortOnSnapshotError
	p.MaxIteration = 1_000_000
	p.SnapshotFreq = p.MaxIteration
	stats, err = runSimulation(context.Background(), p, seed)
	if !errors.Is(err, ErrSnapshotWrite) {
		t.Fatalf("abort policy: error = %v, expected ErrSnapshotWrite", err)
	}
	if stats.Iterations >= p.MaxIteration {
		t.Fatalf("abort policy ran all %d iterations after the failure", stats.Iterations)
	}
}
