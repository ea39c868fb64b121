package main

import (
	"flag"
	"fmt"
	"runtime"
)

// Command-line flags. The simulation flags map one to one onto simParams; the
// rest select the plot and view modes and their options.
var (
	gridPointsFlag   = flag.Int("n", defaultGridPoints, "number of interior grid points")
	spaceStepFlag    = flag.Float64("dx", defaultSpaceStep, "spatial step")
	waveSpeedFlag    = flag.Float64("c", defaultWaveSpeed, "wave speed")
	timeStepFlag     = flag.Float64("dt", 0, "time step (0 derives dt = dx/c)")
	iterationsFlag   = flag.Int("iterations", defaultMaxIteration, "number of leapfrog steps")
	snapshotFreqFlag = flag.Int("snapshot-every", defaultSnapshotEvery, "write a snapshot every N iterations")
	outputDirFlag    = flag.String("out", defaultOutputDir, "directory for snapshot artifacts")
	precisionFlag    = flag.Int("precision", int(precisionFloat64), "snapshot value width in bits (16, 32 or 64)")

	// backendFlag picks the stencil implementation.
	backendFlag = flag.String("backend", backendCPU, "stencil backend: cpu (worker pool), serial, or opencl (needs -tags opencl)")
	workersFlag = flag.Int("workers", runtime.NumCPU(), "worker goroutines for the cpu backend")

	asyncSnapshotFlag = flag.Bool("async-snapshots", false, "write snapshots on a background goroutine")
	onSnapshotErrFlag = flag.String("on-snapshot-error", string(abortOnSnapshotError), "snapshot failure policy: abort or continue")

	initialFlag    = flag.String("initial", profileCosine, "initial profile: cosine or wav")
	initialWAVFlag = flag.String("initial-wav", "", "WAV file stretched over the grid when -initial=wav")

	logEveryFlag   = flag.Int("log-every", defaultLogEvery, "log field statistics every N iterations (0 disables)")
	quietFlag      = flag.Bool("quiet", false, "suppress log output")
	cpuProfileFlag = flag.String("cpuprofile", "", "write a CPU profile to this file")
	memProfileFlag = flag.String("memprofile", "", "write a heap profile to this file at exit")

	// plotFlag switches to plot mode: chart one artifact and exit.
	plotFlag = flag.String("plot", "", "print an ASCII chart of this snapshot artifact and exit")

	// viewFlag opens the ebiten viewer instead of running headless.
	viewFlag        = flag.Bool("view", false, "show the field live in a window")
	debugFlag       = flag.Bool("debug", false, "show FPS and simulation speed overlay in the viewer")
	enableAudioFlag = flag.Bool("enable-audio", false, "play the probe value at the rod center in the viewer")
)

// paramsFromFlags converts the parsed flags into validated parameters.
func paramsFromFlags() (simParams, error) {
	p := defaultSimParams()
	p.N = *gridPointsFlag
	p.Dx = *spaceStepFlag
	p.C = *waveSpeedFlag
	p.MaxIteration = *iterationsFlag
	p.SnapshotFreq = *snapshotFreqFlag
	p.OutputDir = *outputDirFlag
	p.Precision = snapshotPrecision(*precisionFlag)
	p.Backend = *backendFlag
	p.Workers = *workersFlag
	p.AsyncSnapshot = *asyncSnapshotFlag
	p.OnSnapshotErr = snapshotErrorPolicy(*onSnapshotErrFlag)
	p.LogEvery = *logEveryFlag
	p, err := newSimParams(p, *timeStepFlag)
	if err != nil {
		return p, fmt.Errorf("flags: %w", err)
	}
	return p, nil
}

// plotGridPoints returns -n when it was given explicitly, zero otherwise, so
// plot mode only checks the artifact length on request.
func plotGridPoints() int {
	n := 0
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "n" {
			n = *gridPointsFlag
		}
	})
	return n
}
