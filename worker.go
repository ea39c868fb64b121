package main

import "sync"

// minParallelSpan is the smallest interior run worth handing to a worker.
const minParallelSpan = 4096

// span is a half-open range [start, end) of interior indices.
type span struct{ start, end int }

// partitionSpans splits [0, n) into at most workers contiguous spans of
// near-equal length, none shorter than minLen unless n itself is.
func partitionSpans(n, workers, minLen int) []span {
	if workers < 1 {
		workers = 1
	}
	if minLen < 1 {
		minLen = 1
	}
	if limit := n / minLen; workers > limit {
		workers = limit
	}
	if workers < 1 {
		workers = 1
	}
	spans := make([]span, 0, workers)
	base := n / workers
	extra := n % workers
	start := 0
	for i := 0; i < workers; i++ {
		length := base
		if i < extra {
			length++
		}
		spans = append(spans, span{start: start, end: start + length})
		start += length
	}
	return spans
}

// parallelStepper runs the leapfrog update on a fixed set of worker
// goroutines, one span each. step releases the workers through a condition
// variable and blocks until every span has been written.
type parallelStepper struct {
	r     float64
	spans []span

	mu      sync.Mutex
	cond    *sync.Cond
	gen     int
	pending int
	stopped bool
	prev    []float64
	curr    []float64
	next    []float64

	wg sync.WaitGroup
}

// newParallelStepper starts the workers for an n point interior.
func newParallelStepper(n int, r float64, workers int) *parallelStepper {
	s := &parallelStepper{r: r, spans: partitionSpans(n, workers, minParallelSpan)}
	s.cond = sync.NewCond(&s.mu)
	s.wg.Add(len(s.spans))
	for i := range s.spans {
		go s.workerLoop(i)
	}
	return s
}

// workerLoop waits for each new generation and updates its span.
func (s *parallelStepper) workerLoop(index int) {
	defer s.wg.Done()
	sp := s.spans[index]
	lastGen := 0
	s.mu.Lock()
	for {
		for s.gen == lastGen && !s.stopped {
			s.cond.Wait()
		}
		if s.stopped {
			s.mu.Unlock()
			return
		}
		lastGen = s.gen
		prev, curr, next := s.prev, s.curr, s.next
		s.mu.Unlock()

		leapfrogSpan(prev, curr, next, s.r, sp.start, sp.end)

		s.mu.Lock()
		s.pending--
		if s.pending == 0 {
			s.cond.Broadcast()
		}
	}
}

func (s *parallelStepper) step(prev, curr, next *grid) error {
	if err := checkStepShapes(prev, curr, next); err != nil {
		return err
	}
	s.mu.Lock()
	s.prev, s.curr, s.next = prev.withGhosts(), curr.withGhosts(), next.withGhosts()
	s.pending = len(s.spans)
	s.gen++
	s.cond.Broadcast()
	for s.pending > 0 {
		s.cond.Wait()
	}
	s.prev, s.curr, s.next = nil, nil, nil
	s.mu.Unlock()
	return nil
}

func (s *parallelStepper) name() string { return backendCPU }

// close stops the workers and waits for them to exit.
func (s *parallelStepper) close() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.cond.Broadcast()
	s.mu.Unlock()
	s.wg.Wait()
}
