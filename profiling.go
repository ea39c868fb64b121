package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
)

// profiler captures an optional CPU profile over the run and an optional heap
// profile at the end of it. Zero paths disable the matching capture.
type profiler struct {
	cpuFile  *os.File
	heapPath string
}

// startProfiler opens the CPU profile when cpuPath is set.
func startProfiler(cpuPath, heapPath string) (*profiler, error) {
	p := &profiler{heapPath: heapPath}
	if cpuPath == "" {
		return p, nil
	}
	f, err := os.Create(cpuPath)
	if err != nil {
		return nil, fmt.Errorf("creating CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("starting CPU profile: %w", err)
	}
	p.cpuFile = f
	return p, nil
}

// stop ends the CPU profile and writes the heap profile. It may be called more
// than once; only the first call does anything.
func (p *profiler) stop() error {
	if p == nil {
		return nil
	}
	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		err := p.cpuFile.Close()
		p.cpuFile = nil
		if err != nil {
			return fmt.Errorf("closing CPU profile: %w", err)
		}
	}
	if p.heapPath == "" {
		return nil
	}
	path := p.heapPath
	p.heapPath = ""
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating heap profile: %w", err)
	}
	defer f.Close()
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("writing heap profile: %w", err)
	}
	return nil
}
