package main

import (
	"fmt"
	"math"
	"runtime"
)

// snapshotErrorPolicy selects what the driver does when an artifact cannot be
// written.
type snapshotErrorPolicy string

const (
	// abortOnSnapshotError treats durability as a hard requirement.
	abortOnSnapshotError snapshotErrorPolicy = "abort"
	// continueOnSnapshotError logs the failure and keeps integrating.
	continueOnSnapshotError snapshotErrorPolicy = "continue"
)

// simParams is the immutable configuration of one run. dt is derived once in
// newSimParams and never recomputed.
type simParams struct {
	N            int
	Dx           float64
	C            float64
	Dt           float64
	MaxIteration int
	SnapshotFreq int

	OutputDir     string
	Precision     snapshotPrecision
	Backend       string
	Workers       int
	AsyncSnapshot bool
	OnSnapshotErr snapshotErrorPolicy
	LogEvery      int
}

// defaultSimParams returns the reference configuration with dt = dx/c.
func defaultSimParams() simParams {
	p := simParams{
		N:             defaultGridPoints,
		Dx:            defaultSpaceStep,
		C:             defaultWaveSpeed,
		MaxIteration:  defaultMaxIteration,
		SnapshotFreq:  defaultSnapshotEvery,
		OutputDir:     defaultOutputDir,
		Precision:     precisionFloat64,
		Backend:       backendCPU,
		Workers:       runtime.NumCPU(),
		OnSnapshotErr: abortOnSnapshotError,
		LogEvery:      defaultLogEvery,
	}
	p.Dt = p.Dx / p.C
	return p
}

// newSimParams fills in dt (dx/c when dtOverride is zero) and validates the
// result.
func newSimParams(p simParams, dtOverride float64) (simParams, error) {
	if dtOverride < 0 || math.IsNaN(dtOverride) {
		return p, fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidParameters, dtOverride)
	}
	if p.C > 0 {
		p.Dt = p.Dx / p.C
	}
	if dtOverride > 0 {
		p.Dt = dtOverride
	}
	if err := p.validate(); err != nil {
		return p, err
	}
	return p, nil
}

// courantSquared returns r = (c*dt/dx)^2.
func (p simParams) courantSquared() float64 {
	k := p.C * p.Dt / p.Dx
	return k * k
}

func (p simParams) validate() error {
	// The cosine seed divides by N-1, so a single point has no profile.
	if p.N < 2 {
		return fmt.Errorf("%w: grid size must be at least 2, got %d", ErrInvalidParameters, p.N)
	}
	if p.N > maxGridPoints {
		return fmt.Errorf("%w: grid size %d exceeds %d", ErrInvalidParameters, p.N, maxGridPoints)
	}
	if !(p.Dx > 0) || math.IsInf(p.Dx, 0) {
		return fmt.Errorf("%w: dx must be positive, got %g", ErrInvalidParameters, p.Dx)
	}
	if !(p.C > 0) || math.IsInf(p.C, 0) {
		return fmt.Errorf("%w: wave speed must be positive, got %g", ErrInvalidParameters, p.C)
	}
	if !(p.Dt > 0) || math.IsInf(p.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidParameters, p.Dt)
	}
	if r := p.courantSquared(); r > 1 {
		return fmt.Errorf("%w: CFL violated, (c*dt/dx)^2 = %g > 1", ErrInvalidParameters, r)
	}
	if p.MaxIteration < 0 {
		return fmt.Errorf("%w: iteration count must be non-negative, got %d", ErrInvalidParameters, p.MaxIteration)
	}
	if p.SnapshotFreq < 1 {
		return fmt.Errorf("%w: snapshot cadence must be positive, got %d", ErrInvalidParameters, p.SnapshotFreq)
	}
	if _, err := p.Precision.width(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}
	switch p.OnSnapshotErr {
	case abortOnSnapshotError, continueOnSnapshotError:
	default:
		return fmt.Errorf("%w: unknown snapshot error policy %q", ErrInvalidParameters, p.OnSnapshotErr)
	}
	switch p.Backend {
	case backendCPU, backendSerial, backendOpenCL:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidParameters, p.Backend)
	}
	return nil
}

// String summarizes the run for the startup log line.
func (p simParams) String() string {
	return fmt.Sprintf("N=%d dx=%g c=%g dt=%g r=%g iterations=%d snapshot-every=%d",
		p.N, p.Dx, p.C, p.Dt, p.courantSquared(), p.MaxIteration, p.SnapshotFreq)
}
