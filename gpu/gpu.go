//go:build !nogpu

// Package gpu provides the WebGPU accelerator for bloom.
//
// The accelerator runs the spiral blur and composite stages as compute
// passes through the gogpu/wgpu Pure Go WebGPU implementation. Extraction and
// mipmap generation stay on the CPU.
//
// Usage:
//
//	f, err := bloom.New(bloom.WithAccelerator(gpu.New()))
//	if errors.Is(err, bloom.ErrUnsupportedEnvironment) {
//	    f, err = bloom.New() // no usable GPU, render on the CPU
//	}
//
// Frames that exceed the device limits are rendered on the CPU
// transparently.
package gpu

import (
	"github.com/gogpu/bloom"
	gpuimpl "github.com/gogpu/bloom/internal/gpu"
	"github.com/gogpu/gpucontext"
)

// New returns an accelerator that creates its own GPU device on Init.
func New() bloom.Accelerator {
	return &gpuimpl.CompositeAccelerator{}
}

// NewShared returns an accelerator that renders on the device of an
// external provider (e.g., a gogpu application) instead of creating one.
// The shared device is not released when the filter is released.
func NewShared(provider gpucontext.DeviceProvider) (bloom.Accelerator, error) {
	a := &gpuimpl.CompositeAccelerator{}
	if err := a.SetDeviceProvider(provider); err != nil {
		return nil, err
	}
	return a, nil
}
