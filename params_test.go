package main

import (
	"errors"
	"testing"
)

func TestDefaultParamsDeriveTimeStep(t *testing.T) {
	p, err := newSimParams(defaultSimParams(), 0)
	if err != nil {
		t.Fatalf("newSimParams: %v", err)
	}
	if p.Dt != p.Dx/p.C {
		t.Fatalf("dt = %v, expected dx/c = %v", p.Dt, p.Dx/p.C)
	}
	if p.courantSquared() != 1 {
		t.Fatalf("r = %v, expected 1", p.courantSquared())
	}
}

func TestTimeStepOverride(t *testing.T) {
	p := defaultSimParams()
	p.Dx = 2
	p.C = 4
	p, err := newSimParams(p, 0.25)
	if err != nil {
		t.Fatalf("newSimParams: %v", err)
	}
	if p.Dt != 0.25 {
		t.Fatalf("dt = %v, expected 0.25", p.Dt)
	}
	if got := p.courantSquared(); got != 0.25 {
		t.Fatalf("r = %v, expected 0.25", got)
	}
}

func TestInvalidParametersRejected(t *testing.T) {
	cases := map[string]func(*simParams){
		"zero points":     func(p *simParams) { p.N = 0 },
		"single point":    func(p *simParams) { p.N = 1 },
		"negative dx":     func(p *simParams) { p.Dx = -1 },
		"zero speed":      func(p *simParams) { p.C = 0 },
		"negative count":  func(p *simParams) { p.MaxIteration = -1 },
		"zero cadence":    func(p *simParams) { p.SnapshotFreq = 0 },
		"bad precision":   func(p *simParams) { p.Precision = 24 },
		"bad policy":      func(p *simParams) { p.OnSnapshotErr = "retry" },
		"unknown backend": func(p *simParams) { p.Backend = "cuda" },
	}
	for name, mutate := range cases {
		p := defaultSimParams()
		mutate(&p)
		if _, err := newSimParams(p, 0); !errors.Is(err, ErrInvalidParameters) {
			t.Fatalf("%s: error = %v, expected ErrInvalidParameters", name, err)
		}
	}
}

func TestCFLViolationRejected(t *testing.T) {
	p := defaultSimParams()
	if _, err := newSimParams(p, 1.5); !errors.Is(err, ErrInvalidParameters) {
		t.Fatalf("dt=1.5 with dx=c=1 error = %v, expected ErrInvalidParameters", err)
	}
	if _, err := newSimParams(p, -1); !errors.Is(err, ErrInvalidParameters) {
		t.Fatalf("negative dt error = %v, expected ErrInvalidParameters", err)
	}
}
