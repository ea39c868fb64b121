package main

import "errors"

var (
	// ErrAllocation reports a grid that could not be allocated. The engine
	// cannot continue without its three buffers.
	ErrAllocation = errors.New("wave1d: grid allocation failed")

	// ErrInvalidParameters reports a configuration rejected before the time
	// loop starts: non-positive sizes or steps, or a CFL violation.
	ErrInvalidParameters = errors.New("wave1d: invalid simulation parameters")

	// ErrSnapshotWrite reports an artifact that could not be created or fully
	// written.
	ErrSnapshotWrite = errors.New("wave1d: snapshot write failed")

	// ErrBackendUnavailable reports a stencil backend that is not compiled in
	// or could not find a device.
	ErrBackendUnavailable = errors.New("wave1d: stencil backend unavailable")
)
