//go:build !opencl

package main

import "errors"

type openCLStepper struct{}

func newOpenCLStepper(n int, r float64) (*openCLStepper, error) {
	return nil, errors.New("OpenCL support is not enabled; rebuild with -tags opencl")
}

func (s *openCLStepper) step(prev, curr, next *grid) error {
	return errors.New("OpenCL stepper unavailable")
}

func (s *openCLStepper) name() string { return backendOpenCL }

func (s *openCLStepper) DeviceName() string { return "" }

func (s *openCLStepper) close() {}
