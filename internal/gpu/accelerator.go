// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/bloom"
	"github.com/gogpu/bloom/internal/filter"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	// Register all available HAL backends (Vulkan, Metal, DX12, GLES).
	_ "github.com/gogpu/wgpu/hal/allbackends"
)

// readbackTimeout bounds the wait for the GPU to finish a frame.
const readbackTimeout = 5 * time.Second

// ErrNotInitialized is returned by Composite before a successful Init.
var ErrNotInitialized = errors.New("gpu: accelerator not initialized")

// CompositeAccelerator runs the bloom blur and composite stages as WebGPU
// compute passes. It implements the bloom.Accelerator interface.
//
// The zero value is ready for Init, which creates a private device. Use
// SetDeviceProvider before Init to share an application's device instead.
type CompositeAccelerator struct {
	mu sync.Mutex

	instance    *wgpu.Instance
	adapter     *wgpu.Adapter
	device      *wgpu.Device
	queue       *wgpu.Queue
	limits      gputypes.Limits
	adapterName string

	shader     *wgpu.ShaderModule
	bindLayout *wgpu.BindGroupLayout
	pipeLayout *wgpu.PipelineLayout
	pipeline   *wgpu.ComputePipeline

	spiral *filter.Spiral
	frame  *frameResources

	gpuReady       bool
	externalDevice bool // true when using a shared device (don't release on Close)
}

var _ bloom.Accelerator = (*CompositeAccelerator)(nil)

// Name returns "wgpu".
func (a *CompositeAccelerator) Name() string { return "wgpu" }

// SetLogger routes the package logger to l. bloom calls it when its own
// logger changes.
func (a *CompositeAccelerator) SetLogger(l *slog.Logger) { setLogger(l) }

// AdapterName returns the name of the adapter in use, or "" before Init or
// on a shared device.
func (a *CompositeAccelerator) AdapterName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.adapterName
}

// Init creates the device (unless one was provided) and the compute pipeline.
func (a *CompositeAccelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gpuReady {
		return nil
	}

	if a.device == nil {
		if err := a.openDevice(); err != nil {
			a.releaseDevice()
			return err
		}
	}
	if err := a.createPipeline(); err != nil {
		a.destroyPipeline()
		a.releaseDevice()
		return err
	}
	a.gpuReady = true
	slogger().Info("gpu: bloom pipeline ready", "adapter", a.adapterName, "shared", a.externalDevice)
	return nil
}

func (a *CompositeAccelerator) openDevice() error {
	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return fmt.Errorf("gpu: create instance: %w", err)
	}
	a.instance = instance

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return fmt.Errorf("gpu: request adapter: %w", err)
	}
	a.adapter = adapter
	a.adapterName = adapter.Info().Name

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("gpu: request device: %w", err)
	}
	a.device = device
	a.queue = device.Queue()
	a.limits = device.Limits()
	return nil
}

// SetDeviceProvider switches the accelerator to a shared GPU device from an
// external provider (e.g., gogpu). The provider's Device must be a
// *wgpu.Device. The shared device is not released on Close.
func (a *CompositeAccelerator) SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	if provider == nil {
		return errors.New("gpu: nil device provider")
	}
	device, ok := provider.Device().(*wgpu.Device)
	if !ok || device == nil {
		return fmt.Errorf("gpu: provider device is %T, not *wgpu.Device", provider.Device())
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Drop our own resources if we created them.
	wasReady := a.gpuReady
	a.releaseFrame()
	a.destroyPipeline()
	a.releaseDevice()

	a.device = device
	a.queue = device.Queue()
	a.limits = device.Limits()
	a.adapterName = provider.AdapterInfo().Name
	a.externalDevice = true

	if !wasReady {
		return nil
	}
	if err := a.createPipeline(); err != nil {
		a.gpuReady = false
		return fmt.Errorf("gpu: create pipeline with shared device: %w", err)
	}
	a.gpuReady = true
	slogger().Info("gpu: switched to shared GPU device", "adapter", a.adapterName)
	return nil
}

func (a *CompositeAccelerator) createPipeline() error {
	code, err := compileSPIRV(bloomShaderSource)
	if err != nil {
		return fmt.Errorf("gpu: %w", err)
	}
	a.shader, err = a.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "bloom",
		SPIRV: code,
	})
	if err != nil {
		return fmt.Errorf("gpu: create shader module: %w", err)
	}

	storage := func(binding uint32, t gputypes.BufferBindingType) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: t},
		}
	}
	a.bindLayout, err = a.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "bloom",
		Entries: []wgpu.BindGroupLayoutEntry{
			storage(0, gputypes.BufferBindingTypeUniform),
			storage(1, gputypes.BufferBindingTypeReadOnlyStorage),
			storage(2, gputypes.BufferBindingTypeReadOnlyStorage),
			storage(3, gputypes.BufferBindingTypeStorage),
			storage(4, gputypes.BufferBindingTypeStorage),
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create bind group layout: %w", err)
	}

	a.pipeLayout, err = a.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "bloom",
		BindGroupLayouts: []*wgpu.BindGroupLayout{a.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: create pipeline layout: %w", err)
	}

	a.pipeline, err = a.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:      "bloom",
		Layout:     a.pipeLayout,
		Module:     a.shader,
		EntryPoint: "main",
	})
	if err != nil {
		return fmt.Errorf("gpu: create compute pipeline: %w", err)
	}
	return nil
}

// Composite blurs the pyramid and composites it over job.Src into job.Dst.
func (a *CompositeAccelerator) Composite(job *bloom.CompositeJob) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.gpuReady {
		return ErrNotInitialized
	}

	w, h := job.Src.Width(), job.Src.Height()
	spans, mipTexels := layoutMips(job.Levels)
	if len(spans) == 0 {
		return fmt.Errorf("gpu: job has no pyramid levels")
	}
	if reason := a.exceedsLimits(w, h, mipTexels); reason != "" {
		return fmt.Errorf("%w: %s", bloom.ErrFallbackToCPU, reason)
	}

	if a.spiral == nil || a.spiral.Samples() != job.Params.Samples {
		a.spiral = filter.SpiralFor(job.Params.Samples)
	}
	passes := planPasses(job, spans, a.spiral)

	fr, err := a.ensureFrame(w, h, mipTexels, len(passes))
	if err != nil {
		return err
	}
	if err := fr.upload(a.queue, job, passes); err != nil {
		return err
	}
	if err := a.encode(fr, len(passes), w, h); err != nil {
		return err
	}
	return fr.readback(job.Dst.Pix())
}

// exceedsLimits reports why a frame cannot run on this device, or "".
func (a *CompositeAccelerator) exceedsLimits(w, h int, mipTexels uint64) string {
	frameBytes := uint64(w) * uint64(h) * texelBytes
	maxBinding := a.limits.MaxStorageBufferBindingSize
	if maxBinding == 0 {
		maxBinding = gputypes.DefaultLimits().MaxStorageBufferBindingSize
	}
	if frameBytes > maxBinding {
		return fmt.Sprintf("frame buffer %d bytes exceeds storage binding limit %d", frameBytes, maxBinding)
	}
	if mipTexels*texelBytes > maxBinding {
		return fmt.Sprintf("pyramid %d bytes exceeds storage binding limit %d", mipTexels*texelBytes, maxBinding)
	}

	maxGroups := a.limits.MaxComputeWorkgroupsPerDimension
	if maxGroups == 0 {
		maxGroups = gputypes.DefaultLimits().MaxComputeWorkgroupsPerDimension
	}
	if gx, gy := workgroups(w, h); gx > maxGroups || gy > maxGroups {
		return fmt.Sprintf("dispatch %dx%d exceeds workgroup limit %d", gx, gy, maxGroups)
	}
	return ""
}

// encode records every pass into one command buffer and submits it.
func (a *CompositeAccelerator) encode(fr *frameResources, n, w, h int) error {
	encoder, err := a.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("gpu: create command encoder: %w", err)
	}

	gx, gy := workgroups(w, h)
	for i := range n {
		pass, err := encoder.BeginComputePass(nil)
		if err != nil {
			encoder.DiscardEncoding()
			return fmt.Errorf("gpu: begin compute pass %d: %w", i, err)
		}
		pass.SetPipeline(a.pipeline)
		pass.SetBindGroup(0, fr.passes[i].group, nil)
		pass.Dispatch(gx, gy, 1)
		if err := pass.End(); err != nil {
			encoder.DiscardEncoding()
			return fmt.Errorf("gpu: end compute pass %d: %w", i, err)
		}
	}
	encoder.CopyBufferToBuffer(fr.dst, 0, fr.staging, 0, fr.frameBytes)

	cmdBuf, err := encoder.Finish()
	if err != nil {
		return fmt.Errorf("gpu: finish encoder: %w", err)
	}
	if _, err := a.queue.Submit(cmdBuf); err != nil {
		return fmt.Errorf("gpu: submit: %w", err)
	}
	return nil
}

// Close releases all GPU resources. A shared device is left untouched.
func (a *CompositeAccelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.releaseFrame()
	a.destroyPipeline()
	a.releaseDevice()
	a.gpuReady = false
	a.spiral = nil
}

func (a *CompositeAccelerator) destroyPipeline() {
	if a.pipeline != nil {
		a.pipeline.Release()
		a.pipeline = nil
	}
	if a.pipeLayout != nil {
		a.pipeLayout.Release()
		a.pipeLayout = nil
	}
	if a.bindLayout != nil {
		a.bindLayout.Release()
		a.bindLayout = nil
	}
	if a.shader != nil {
		a.shader.Release()
		a.shader = nil
	}
}

func (a *CompositeAccelerator) releaseDevice() {
	if !a.externalDevice && a.device != nil {
		a.device.Release()
	}
	if a.adapter != nil {
		a.adapter.Release()
		a.adapter = nil
	}
	if a.instance != nil {
		a.instance.Release()
		a.instance = nil
	}
	a.device = nil
	a.queue = nil
	a.externalDevice = false
}

func (a *CompositeAccelerator) releaseFrame() {
	if a.frame != nil {
		a.frame.release()
		a.frame = nil
	}
}
