package main

import "testing"

func TestPartitionSpansCoversInterior(t *testing.T) {
	cases := []struct {
		n, workers, minLen int
		wantSpans          int
	}{
		{n: 10, workers: 3, minLen: 1, wantSpans: 3},
		{n: 10, workers: 0, minLen: 1, wantSpans: 1},
		{n: 10, workers: 8, minLen: 4, wantSpans: 2},
		{n: 3, workers: 4, minLen: 8, wantSpans: 1},
		{n: 3*minParallelSpan + 7, workers: 16, minLen: minParallelSpan, wantSpans: 3},
	}
	for _, tc := range cases {
		spans := partitionSpans(tc.n, tc.workers, tc.minLen)
		if len(spans) != tc.wantSpans {
			t.Fatalf("partitionSpans(%d, %d, %d) gave %d spans, expected %d", tc.n, tc.workers, tc.minLen, len(spans), tc.wantSpans)
		}
		next := 0
		for _, sp := range spans {
			if sp.start != next || sp.end <= sp.start {
				t.Fatalf("partitionSpans(%d, %d, %d) has a gap or empty span: %v", tc.n, tc.workers, tc.minLen, spans)
			}
			next = sp.end
		}
		if next != tc.n {
			t.Fatalf("spans end at %d, expected %d", next, tc.n)
		}
	}
}

func TestParallelStepperMatchesSerial(t *testing.T) {
	n := 3*minParallelSpan + 7
	seed := cosineProfile(n)
	seed[n/3] += 0.5

	serial, err := newWindow(n, seed, newSerialStepper(0.81))
	if err != nil {
		t.Fatalf("serial window: %v", err)
	}
	defer serial.close()
	parallel, err := newWindow(n, seed, newParallelStepper(n, 0.81, 4))
	if err != nil {
		t.Fatalf("parallel window: %v", err)
	}
	defer parallel.close()

	for step := 0; step < 50; step++ {
		if err := serial.advance(); err != nil {
			t.Fatalf("serial advance: %v", err)
		}
		if err := parallel.advance(); err != nil {
			t.Fatalf("parallel advance: %v", err)
		}
	}
	want := serial.current().interior()
	got := parallel.current().interior()
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("index %d: parallel %v, serial %v", i, got[i], want[i])
		}
	}
}

func TestParallelStepperCloseIsIdempotent(t *testing.T) {
	s := newParallelStepper(2*minParallelSpan, 1, 2)
	s.close()
	s.close()
}

func TestNewStepperSelection(t *testing.T) {
	p := defaultSimParams()
	p.N = 64
	p.Workers = 8
	st, err := newStepper(p)
	if err != nil {
		t.Fatalf("newStepper: %v", err)
	}
	if st.name() != backendSerial {
		t.Fatalf("small grid picked %q, expected serial", st.name())
	}
	st.close()

	p.N = 4 * minParallelSpan
	st, err = newStepper(p)
	if err != nil {
		t.Fatalf("newStepper: %v", err)
	}
	if st.name() != backendCPU {
		t.Fatalf("large grid picked %q, expected cpu", st.name())
	}
	st.close()
}
