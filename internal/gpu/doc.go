// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package gpu implements the bloom blur and composite stages as WebGPU
// compute passes.
//
// It runs on the gogpu/wgpu Pure Go WebGPU implementation (zero CGO), which
// supports Vulkan, Metal and DX12 depending on the platform. The WGSL shader
// is compiled to SPIR-V with gogpu/naga.
//
// # Pass Structure
//
// A frame is encoded as a single command buffer:
//
//	zero accum -> accumulate (lod 0, tap 0) ... (lod n, tap m) -> composite -> copy to staging
//
// Every accumulate pass adds one weighted spiral tap at one level of detail,
// so the shader contains no loops. Each pass owns a small uniform buffer and
// bind group that are cached between frames of the same size.
//
// Extraction and mipmap generation stay on the CPU; the accelerator
// receives the finished pyramid through bloom.CompositeJob.
//
// # Fallback
//
// Composite returns bloom.ErrFallbackToCPU when a frame would exceed the
// device's storage buffer or dispatch limits. The filter then renders that
// frame on the CPU.
package gpu
