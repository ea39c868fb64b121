package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/eapache/queue"
	"golang.org/x/sync/errgroup"
)

// snapshotPrecision is the bit width of each value in an artifact.
type snapshotPrecision int

const (
	precisionFloat16 snapshotPrecision = 16
	precisionFloat32 snapshotPrecision = 32
	precisionFloat64 snapshotPrecision = 64
)

// width returns the encoded size of one value in bytes.
func (p snapshotPrecision) width() (int, error) {
	switch p {
	case precisionFloat16:
		return 2, nil
	case precisionFloat32:
		return 4, nil
	case precisionFloat64:
		return 8, nil
	}
	return 0, fmt.Errorf("unsupported snapshot precision %d (want 16, 32 or 64)", int(p))
}

// snapshot is an immutable copy of the interior at one output step.
type snapshot struct {
	seq    int
	values []float64
}

// encodeSnapshot appends values to dst as headerless little-endian reals.
func encodeSnapshot(dst []byte, values []float64, p snapshotPrecision) ([]byte, error) {
	width, err := p.width()
	if err != nil {
		return dst, err
	}
	for _, v := range values {
		switch width {
		case 2:
			dst = binary.LittleEndian.AppendUint16(dst, float64ToFloat16Bits(v))
		case 4:
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(v)))
		default:
			dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
		}
	}
	return dst, nil
}

// decodeSnapshot is the inverse of encodeSnapshot.
func decodeSnapshot(raw []byte, p snapshotPrecision) ([]float64, error) {
	width, err := p.width()
	if err != nil {
		return nil, err
	}
	if len(raw)%width != 0 {
		return nil, fmt.Errorf("snapshot length %d is not a multiple of %d", len(raw), width)
	}
	out := make([]float64, len(raw)/width)
	for i := range out {
		b := raw[i*width:]
		switch width {
		case 2:
			out[i] = float16BitsToFloat64(binary.LittleEndian.Uint16(b))
		case 4:
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		default:
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b))
		}
	}
	return out, nil
}

// readSnapshot loads an artifact written with precision p.
func readSnapshot(path string, p snapshotPrecision) ([]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	values, err := decodeSnapshot(raw, p)
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", path, err)
	}
	return values, nil
}

// snapshotPath names the artifact for a sequence number.
func snapshotPath(dir string, seq int) string {
	return filepath.Join(dir, fmt.Sprintf(snapshotNameFormat, seq))
}

// snapshotSink persists snapshots. submit may return errors from earlier
// submissions when the sink is asynchronous.
type snapshotSink interface {
	submit(s snapshot) error
	close() error
}

// fileSink writes one artifact per snapshot on the calling goroutine. An
// existing artifact with the same sequence number is truncated.
type fileSink struct {
	dir       string
	precision snapshotPrecision
	buf       []byte
}

func newFileSink(dir string, p snapshotPrecision) *fileSink {
	return &fileSink{dir: dir, precision: p}
}

func (f *fileSink) submit(s snapshot) error {
	buf, err := encodeSnapshot(f.buf[:0], s.values, f.precision)
	if err != nil {
		return fmt.Errorf("%w: sequence %d: %v", ErrSnapshotWrite, s.seq, err)
	}
	f.buf = buf
	path := snapshotPath(f.dir, s.seq)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotWrite, err)
	}
	return nil
}

func (f *fileSink) close() error { return nil }

// asyncMaxPending bounds the snapshots queued ahead of the writer goroutine.
const asyncMaxPending = 64

// asyncSink moves artifact writes off the time loop. Snapshots are queued in
// submission order and drained by a single goroutine, so sequence numbers
// reach disk in iteration order. Failures are collected and handed back on
// the next submit or on close.
type asyncSink struct {
	inner snapshotSink

	mu      sync.Mutex
	cond    *sync.Cond
	pending *queue.Queue
	closing bool
	errs    []error

	group errgroup.Group
}

func newAsyncSink(inner snapshotSink) *asyncSink {
	s := &asyncSink{inner: inner, pending: queue.New()}
	s.cond = sync.NewCond(&s.mu)
	s.group.Go(s.drain)
	return s
}

func (s *asyncSink) submit(snap snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return fmt.Errorf("%w: sink closed", ErrSnapshotWrite)
	}
	for s.pending.Length() >= asyncMaxPending {
		s.cond.Wait()
	}
	s.pending.Add(snap)
	s.cond.Broadcast()
	return s.takeErrors()
}

// takeErrors returns and clears the collected failures. Callers hold s.mu.
func (s *asyncSink) takeErrors() error {
	if len(s.errs) == 0 {
		return nil
	}
	err := errors.Join(s.errs...)
	s.errs = nil
	return err
}

func (s *asyncSink) drain() error {
	for {
		s.mu.Lock()
		for s.pending.Length() == 0 && !s.closing {
			s.cond.Wait()
		}
		if s.pending.Length() == 0 {
			s.mu.Unlock()
			return nil
		}
		snap := s.pending.Remove().(snapshot)
		s.cond.Broadcast()
		s.mu.Unlock()

		if err := s.inner.submit(snap); err != nil {
			s.mu.Lock()
			s.errs = append(s.errs, err)
			s.mu.Unlock()
		}
	}
}

// failures returns the write errors collected so far without blocking.
func (s *asyncSink) failures() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.takeErrors()
}

// close flushes every queued snapshot before returning.
func (s *asyncSink) close() error {
	s.mu.Lock()
	s.closing = true
	s.cond.Broadcast()
	s.mu.Unlock()

	drainErr := s.group.Wait()

	s.mu.Lock()
	err := s.takeErrors()
	s.mu.Unlock()
	if drainErr != nil {
		err = errors.Join(err, drainErr)
	}
	if closeErr := s.inner.close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	return err
}

// snapshotWriter applies the cadence and the failure policy on top of a sink.
type snapshotWriter struct {
	every     int
	sink      snapshotSink
	policy    snapshotErrorPolicy
	submitted int
	failed    int
}

// newSnapshotWriter builds the writer described by p, writing into p.OutputDir.
func newSnapshotWriter(p simParams) *snapshotWriter {
	var sink snapshotSink = newFileSink(p.OutputDir, p.Precision)
	if p.AsyncSnapshot {
		sink = newAsyncSink(sink)
	}
	return newSnapshotWriterWithSink(p.SnapshotFreq, p.OnSnapshotErr, sink)
}

func newSnapshotWriterWithSink(every int, policy snapshotErrorPolicy, sink snapshotSink) *snapshotWriter {
	return &snapshotWriter{every: every, sink: sink, policy: policy}
}

// maybeSnapshot persists g when iteration falls on the cadence, under the
// sequence number iteration/every.
func (w *snapshotWriter) maybeSnapshot(iteration int, g *grid) error {
	if iteration%w.every != 0 {
		return nil
	}
	w.submitted++
	return w.handle(w.sink.submit(snapshot{seq: iteration / w.every, values: g.copyInterior()}))
}

// poll applies the failure policy to background write errors reported since
// the last call. Synchronous sinks have nothing to report.
func (w *snapshotWriter) poll() error {
	if r, ok := w.sink.(interface{ failures() error }); ok {
		return w.handle(r.failures())
	}
	return nil
}

func (w *snapshotWriter) handle(err error) error {
	if err == nil {
		return nil
	}
	if w.policy == continueOnSnapshotError {
		n := 1
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			n = len(joined.Unwrap())
		}
		w.failed += n
		log.Printf("Snapshot write failed, continuing: %v", err)
		return nil
	}
	return err
}

// close flushes the sink. Under the continue policy late failures are logged.
func (w *snapshotWriter) close() error {
	return w.handle(w.sink.close())
}
