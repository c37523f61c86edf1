// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"context"
	"fmt"

	"github.com/gogpu/bloom"
	"github.com/gogpu/wgpu"
)

// texelBytes is the size of one RGBA float32 texel.
const texelBytes = 16

// passBinding is the uniform buffer and bind group of one dispatch.
type passBinding struct {
	uniform *wgpu.Buffer
	group   *wgpu.BindGroup
}

// frameResources holds the buffers for one frame size. They are reused
// until the frame or pyramid size changes.
type frameResources struct {
	device *wgpu.Device
	layout *wgpu.BindGroupLayout

	width, height int
	mipTexels     uint64
	frameBytes    uint64
	mipBytes      uint64

	src     *wgpu.Buffer
	mips    *wgpu.Buffer
	accum   *wgpu.Buffer
	dst     *wgpu.Buffer
	staging *wgpu.Buffer

	passes []passBinding

	zeros   []byte
	scratch []byte
}

// ensureFrame returns resources sized for w x h with at least n passes,
// recreating them when the size changed.
func (a *CompositeAccelerator) ensureFrame(w, h int, mipTexels uint64, n int) (*frameResources, error) {
	fr := a.frame
	if fr == nil || fr.width != w || fr.height != h || fr.mipTexels != mipTexels {
		a.releaseFrame()
		var err error
		fr, err = newFrameResources(a.device, a.bindLayout, w, h, mipTexels)
		if err != nil {
			return nil, err
		}
		a.frame = fr
		slogger().Debug("gpu: frame buffers allocated",
			"width", w, "height", h,
			"frame_bytes", fr.frameBytes, "mip_bytes", fr.mipBytes)
	}
	if err := fr.growPasses(n); err != nil {
		return nil, err
	}
	return fr, nil
}

func newFrameResources(device *wgpu.Device, layout *wgpu.BindGroupLayout, w, h int, mipTexels uint64) (*frameResources, error) {
	fr := &frameResources{
		device:     device,
		layout:     layout,
		width:      w,
		height:     h,
		mipTexels:  mipTexels,
		frameBytes: uint64(w) * uint64(h) * texelBytes,
		mipBytes:   mipTexels * texelBytes,
	}

	buffers := []struct {
		dst   **wgpu.Buffer
		label string
		size  uint64
		usage wgpu.BufferUsage
	}{
		{&fr.src, "bloom-src", fr.frameBytes, wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst},
		{&fr.mips, "bloom-mips", fr.mipBytes, wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst},
		{&fr.accum, "bloom-accum", fr.frameBytes, wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst},
		{&fr.dst, "bloom-dst", fr.frameBytes, wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc},
		{&fr.staging, "bloom-staging", fr.frameBytes, wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst},
	}
	for _, b := range buffers {
		buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: b.label,
			Size:  b.size,
			Usage: b.usage,
		})
		if err != nil {
			fr.release()
			return nil, fmt.Errorf("gpu: create %s buffer (%d bytes): %w", b.label, b.size, err)
		}
		*b.dst = buf
	}
	fr.zeros = make([]byte, fr.frameBytes)
	return fr, nil
}

// growPasses creates uniform buffers and bind groups until there are n.
func (fr *frameResources) growPasses(n int) error {
	for len(fr.passes) < n {
		uniform, err := fr.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "bloom-params",
			Size:  passParamsSize,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("gpu: create params buffer: %w", err)
		}
		group, err := fr.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "bloom",
			Layout: fr.layout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: uniform, Size: passParamsSize},
				{Binding: 1, Buffer: fr.src, Size: fr.frameBytes},
				{Binding: 2, Buffer: fr.mips, Size: fr.mipBytes},
				{Binding: 3, Buffer: fr.accum, Size: fr.frameBytes},
				{Binding: 4, Buffer: fr.dst, Size: fr.frameBytes},
			},
		})
		if err != nil {
			uniform.Release()
			return fmt.Errorf("gpu: create bind group: %w", err)
		}
		fr.passes = append(fr.passes, passBinding{uniform: uniform, group: group})
	}
	return nil
}

// upload writes the source frame, the pyramid, a cleared accumulator and
// every pass's uniforms.
func (fr *frameResources) upload(queue *wgpu.Queue, job *bloom.CompositeJob, passes []passParams) error {
	fr.scratch = float32Bytes(fr.scratch, job.Src.Pix())
	if err := queue.WriteBuffer(fr.src, 0, fr.scratch); err != nil {
		return fmt.Errorf("gpu: upload frame: %w", err)
	}

	var off uint64
	for i, l := range job.Levels {
		fr.scratch = float32Bytes(fr.scratch, l.Pix)
		if err := queue.WriteBuffer(fr.mips, off, fr.scratch); err != nil {
			return fmt.Errorf("gpu: upload mip level %d: %w", i, err)
		}
		off += uint64(len(fr.scratch))
	}

	if err := queue.WriteBuffer(fr.accum, 0, fr.zeros); err != nil {
		return fmt.Errorf("gpu: clear accumulator: %w", err)
	}

	for i := range passes {
		if err := queue.WriteBuffer(fr.passes[i].uniform, 0, passes[i].bytes()); err != nil {
			return fmt.Errorf("gpu: upload params %d: %w", i, err)
		}
	}
	return nil
}

// readback waits for the submitted frame and copies the result into dst.
func (fr *frameResources) readback(dst []float32) error {
	ctx, cancel := context.WithTimeout(context.Background(), readbackTimeout)
	defer cancel()

	if err := fr.staging.Map(ctx, wgpu.MapModeRead, 0, fr.frameBytes); err != nil {
		return fmt.Errorf("gpu: map staging buffer: %w", err)
	}
	rng, err := fr.staging.MappedRange(0, fr.frameBytes)
	if err != nil {
		_ = fr.staging.Unmap()
		return fmt.Errorf("gpu: staging mapped range: %w", err)
	}
	bytesFloat32(dst, rng.Bytes())
	if err := fr.staging.Unmap(); err != nil {
		return fmt.Errorf("gpu: unmap staging buffer: %w", err)
	}
	return nil
}

func (fr *frameResources) release() {
	for _, p := range fr.passes {
		p.group.Release()
		p.uniform.Release()
	}
	fr.passes = nil
	for _, b := range []**wgpu.Buffer{&fr.src, &fr.mips, &fr.accum, &fr.dst, &fr.staging} {
		if *b != nil {
			(*b).Release()
			*b = nil
		}
	}
}
