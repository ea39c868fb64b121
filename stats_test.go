package main

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestMeasureFieldAtRest(t *testing.T) {
	p := defaultSimParams()
	u := []float64{0.25, 0.25, 0.25, 0.25}
	st := measureField(u, u, p)
	if st.Energy != 0 || st.MaxAbs != 0.25 || st.Min != 0.25 || st.Max != 0.25 || st.Diverged {
		t.Fatalf("constant field stats %+v", st)
	}
}

func TestMeasureFieldEnergy(t *testing.T) {
	p := defaultSimParams()
	p.Dx, p.C, p.Dt = 0.5, 2, 0.25
	prev := []float64{0, 0, 0}
	curr := []float64{0, 1, 0}
	st := measureField(prev, curr, p)
	// kinetic (1/0.25)^2 = 16, potential 2*(1/0.5)^2 = 8 scaled by c^2 = 4.
	want := 0.5 * (16 + 4*8) * 0.5
	if math.Abs(st.Energy-want) > 1e-12 {
		t.Fatalf("energy %v, expected %v", st.Energy, want)
	}
}

func TestMeasureFieldFlagsDivergence(t *testing.T) {
	p := defaultSimParams()
	for _, curr := range [][]float64{
		{0, math.NaN(), 0},
		{0, math.Inf(1), 0},
	} {
		if st := measureField(curr, curr, p); !st.Diverged {
			t.Fatalf("field %v not flagged as diverged", curr)
		}
	}
	if st := measureField(nil, nil, p); st != (fieldStats{}) {
		t.Fatalf("empty field stats %+v", st)
	}
}

func TestDownsample(t *testing.T) {
	got := downsample([]float64{1, 3, 5, 7, 9, 11}, 3)
	want := []float64{2, 6, 10}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("downsample = %v, expected %v", got, want)
		}
	}
	short := []float64{1, 2}
	out := downsample(short, 10)
	out[0] = 99
	if short[0] != 1 {
		t.Fatal("downsample aliased its input")
	}
}

func TestPlotField(t *testing.T) {
	if plotField(nil, 10, 4, "empty") != "" {
		t.Fatal("expected no chart for an empty field")
	}
	chart := plotField(cosineProfile(500), 40, 6, "cosine seed")
	if !strings.Contains(chart, "cosine seed") {
		t.Fatalf("chart is missing its caption:\n%s", chart)
	}
	if lines := strings.Count(chart, "\n"); lines < 6 {
		t.Fatalf("chart has %d lines, expected at least 6:\n%s", lines, chart)
	}
}

func TestPlotSnapshotFile(t *testing.T) {
	dir := t.TempDir()
	sink := newFileSink(dir, precisionFloat32)
	if err := sink.submit(snapshot{seq: 3, values: cosineProfile(64)}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	chart, err := plotSnapshotFile(snapshotPath(dir, 3), precisionFloat32, 0)
	if err != nil {
		t.Fatalf("plotSnapshotFile: %v", err)
	}
	if !strings.Contains(chart, "64 points, 32-bit") {
		t.Fatalf("unexpected caption:\n%s", chart)
	}
	if _, err := plotSnapshotFile(snapshotPath(dir, 4), precisionFloat32, 0); err == nil {
		t.Fatal("expected an error for a missing artifact")
	}
	if _, err := plotSnapshotFile(snapshotPath(dir, 3), precisionFloat32, 64); err != nil {
		t.Fatalf("matching grid size: %v", err)
	}
	if _, err := plotSnapshotFile(snapshotPath(dir, 3), precisionFloat32, 128); !errors.Is(err, ErrInvalidParameters) {
		t.Fatalf("mismatched grid size: error = %v, expected ErrInvalidParameters", err)
	}
}
