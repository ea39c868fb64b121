package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/sys/cpu"
)

func main() {
	flag.Parse()
	if *quietFlag {
		log.SetOutput(io.Discard)
	}

	if *plotFlag != "" {
		chart, err := plotSnapshotFile(*plotFlag, snapshotPrecision(*precisionFlag), plotGridPoints())
		if err != nil {
			fmt.Fprintf(os.Stderr, "plot: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(chart)
		return
	}

	p, err := paramsFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	seed, err := initialProfile(*initialFlag, *initialWAVFlag, p.N)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initial profile: %v\n", err)
		if errors.Is(err, ErrInvalidParameters) {
			os.Exit(2)
		}
		os.Exit(1)
	}
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "creating output directory: %v\n", err)
		os.Exit(1)
	}

	prof, err := startProfiler(*cpuProfileFlag, *memProfileFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logStartup(p)

	if *viewFlag {
		err = runViewer(p, seed)
	} else {
		err = runBatch(p, seed)
	}
	if perr := prof.stop(); perr != nil {
		log.Printf("Profiling: %v", perr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// logStartup records the configuration and the SIMD features the CPU
// backend can lean on.
func logStartup(p simParams) {
	log.Printf("wave1d: %s", p)
	log.Printf("Backend: %s, workers: %d, snapshots: %s (%d-bit, async=%v, on error=%s)",
		p.Backend, p.Workers, p.OutputDir, int(p.Precision), p.AsyncSnapshot, p.OnSnapshotErr)
	switch runtime.GOARCH {
	case "amd64", "386":
		log.Printf("CPU: %d cores, SSE2=%v AVX=%v AVX2=%v FMA=%v",
			runtime.NumCPU(), cpu.X86.HasSSE2, cpu.X86.HasAVX, cpu.X86.HasAVX2, cpu.X86.HasFMA)
	case "arm64":
		log.Printf("CPU: %d cores, ASIMD=%v FPHP=%v",
			runtime.NumCPU(), cpu.ARM64.HasASIMD, cpu.ARM64.HasFPHP)
	default:
		log.Printf("CPU: %d cores (%s)", runtime.NumCPU(), runtime.GOARCH)
	}
}

// runBatch runs the headless simulation until the iteration count is reached
// or the process is interrupted.
func runBatch(p simParams, seed []float64) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := runSimulation(ctx, p, seed)
	log.Printf("Ran %d iterations in %s: %d snapshots written, %d failed, final max |u| %.6f",
		stats.Iterations, stats.Elapsed, stats.SnapshotsWritten, stats.SnapshotsFailed, stats.Final.MaxAbs)
	return err
}

// runViewer opens the ebiten window on a fresh simulation.
func runViewer(p simParams, seed []float64) error {
	writer := newSnapshotWriter(p)
	sim, err := newSimulation(p, seed, writer)
	if err != nil {
		_ = writer.close()
		return err
	}
	game := newGame(sim, *enableAudioFlag)

	ebiten.SetWindowSize(windowWidth*windowScale, windowHeight*windowScale)
	ebiten.SetWindowTitle(fmt.Sprintf("wave1d: %d points, r=%.3f", p.N, p.courantSquared()))
	ebiten.SetTPS(int(defaultTPS))
	runErr := ebiten.RunGame(game)
	if errors.Is(runErr, ebiten.Termination) {
		runErr = nil
	}
	game.close()
	return errors.Join(runErr, sim.close())
}
