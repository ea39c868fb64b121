//go:build opencl

package main

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
)

const leapfrogKernelSource = `#pragma OPENCL EXTENSION cl_khr_fp64 : enable

__kernel void leapfrog_step(
    const int n,
    const double r,
    __global const double* prev,
    __global const double* curr,
    __global double* next_buffer)
{
    int i = get_global_id(0);
    if (i >= n) {
        return;
    }
    int k = i + 1;
    double c = curr[k];
    next_buffer[k] = -prev[k] + 2.0 * c + r * (curr[k - 1] + curr[k + 1] - 2.0 * c);
}`

const float64Size = int(unsafe.Sizeof(float64(0)))

// openCLStepper runs the leapfrog update on an OpenCL device. Each host grid
// gets a device twin on first use. After that only the two ghosts of curr go
// up before a step and the freshly written next comes back down, because the
// device already holds every other value.
type openCLStepper struct {
	context    *cl.Context
	queue      *cl.CommandQueue
	program    *cl.Program
	kernel     *cl.Kernel
	n          int
	r          float64
	deviceName string

	twins  map[*grid]*cl.MemObject
	synced map[*grid]bool
}

// pickOpenCLDevice prefers a GPU with double support and falls back to a CPU
// device.
func pickOpenCLDevice() (*cl.Device, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available; ensure a vendor driver is installed and detected by `clinfo`")
	}
	for _, kind := range []cl.DeviceType{cl.DeviceTypeGPU, cl.DeviceTypeCPU} {
		for _, p := range platforms {
			devices, derr := p.GetDevices(kind)
			if derr != nil && derr != cl.ErrDeviceNotFound {
				continue
			}
			for _, d := range devices {
				if strings.Contains(d.Extensions(), "cl_khr_fp64") {
					return d, nil
				}
			}
		}
	}
	return nil, errors.New("no OpenCL device with cl_khr_fp64 found")
}

func newOpenCLStepper(n int, r float64) (*openCLStepper, error) {
	device, err := pickOpenCLDevice()
	if err != nil {
		return nil, err
	}
	context, err := cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	s := &openCLStepper{
		context:    context,
		n:          n,
		r:          r,
		deviceName: device.Name(),
		twins:      make(map[*grid]*cl.MemObject, 3),
		synced:     make(map[*grid]bool, 3),
	}
	s.queue, err = context.CreateCommandQueue(device, 0)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	s.program, err = context.CreateProgramWithSource([]string{leapfrogKernelSource})
	if err != nil {
		s.close()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := s.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		s.close()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	s.kernel, err = s.program.CreateKernel("leapfrog_step")
	if err != nil {
		s.close()
		return nil, fmt.Errorf("creating OpenCL kernel: %w", err)
	}
	if err := s.kernel.SetArgInt32(0, int32(n)); err != nil {
		s.close()
		return nil, fmt.Errorf("setting grid size: %w", err)
	}
	if err := s.kernel.SetArgUnsafe(1, float64Size, unsafe.Pointer(&s.r)); err != nil {
		s.close()
		return nil, fmt.Errorf("setting courant number: %w", err)
	}
	return s, nil
}

// twin returns the device buffer for g, allocating it on first sight.
func (s *openCLStepper) twin(g *grid) (*cl.MemObject, error) {
	if buf, ok := s.twins[g]; ok {
		return buf, nil
	}
	buf, err := s.context.CreateEmptyBuffer(cl.MemReadWrite, (s.n+2)*float64Size)
	if err != nil {
		return nil, fmt.Errorf("%w: device buffer: %v", ErrAllocation, err)
	}
	s.twins[g] = buf
	return buf, nil
}

// upload copies the host values of g in [from, from+count) of its storage.
func (s *openCLStepper) upload(g *grid, buf *cl.MemObject, from, count int) error {
	data := g.withGhosts()
	ptr := unsafe.Pointer(&data[from])
	if _, err := s.queue.EnqueueWriteBuffer(buf, false, from*float64Size, count*float64Size, ptr, nil); err != nil {
		return err
	}
	return nil
}

// sync makes the device twin of g current. A grid seen for the first time is
// uploaded whole; afterwards only its ghosts can have changed on the host.
func (s *openCLStepper) sync(g *grid, ghostsOnly bool) (*cl.MemObject, error) {
	buf, err := s.twin(g)
	if err != nil {
		return nil, err
	}
	if !s.synced[g] {
		if err := s.upload(g, buf, 0, s.n+2); err != nil {
			return nil, fmt.Errorf("writing grid: %w", err)
		}
		s.synced[g] = true
		return buf, nil
	}
	if ghostsOnly {
		if err := s.upload(g, buf, 0, 1); err != nil {
			return nil, fmt.Errorf("writing left ghost: %w", err)
		}
		if err := s.upload(g, buf, s.n+1, 1); err != nil {
			return nil, fmt.Errorf("writing right ghost: %w", err)
		}
	}
	return buf, nil
}

func (s *openCLStepper) step(prev, curr, next *grid) error {
	if err := checkStepShapes(prev, curr, next); err != nil {
		return err
	}
	if curr.size() != s.n {
		return fmt.Errorf("OpenCL stepper built for %d points, got %d", s.n, curr.size())
	}
	prevBuf, err := s.sync(prev, false)
	if err != nil {
		return err
	}
	currBuf, err := s.sync(curr, true)
	if err != nil {
		return err
	}
	nextBuf, err := s.twin(next)
	if err != nil {
		return err
	}
	if err := s.kernel.SetArgBuffer(2, prevBuf); err != nil {
		return fmt.Errorf("binding prev: %w", err)
	}
	if err := s.kernel.SetArgBuffer(3, currBuf); err != nil {
		return fmt.Errorf("binding curr: %w", err)
	}
	if err := s.kernel.SetArgBuffer(4, nextBuf); err != nil {
		return fmt.Errorf("binding next: %w", err)
	}
	if _, err := s.queue.EnqueueNDRangeKernel(s.kernel, nil, []int{s.n}, nil, nil); err != nil {
		return fmt.Errorf("enqueueing kernel: %w", err)
	}
	data := next.withGhosts()
	ptr := unsafe.Pointer(&data[1])
	if _, err := s.queue.EnqueueReadBuffer(nextBuf, true, float64Size, s.n*float64Size, ptr, nil); err != nil {
		return fmt.Errorf("reading next: %w", err)
	}
	// Device and host interiors agree again; ghosts are refreshed before use.
	s.synced[next] = true
	return nil
}

func (s *openCLStepper) name() string { return backendOpenCL }

func (s *openCLStepper) DeviceName() string { return s.deviceName }

func (s *openCLStepper) close() {
	for g, buf := range s.twins {
		buf.Release()
		delete(s.twins, g)
		delete(s.synced, g)
	}
	if s.kernel != nil {
		s.kernel.Release()
		s.kernel = nil
	}
	if s.program != nil {
		s.program.Release()
		s.program = nil
	}
	if s.queue != nil {
		s.queue.Release()
		s.queue = nil
	}
	if s.context != nil {
		s.context.Release()
		s.context = nil
	}
}
