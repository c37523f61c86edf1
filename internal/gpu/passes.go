// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/bloom"
	"github.com/gogpu/bloom/internal/filter"
)

// Shader stages selected by passParams.Stage.
const (
	stageAccumulate uint32 = 0
	stageComposite  uint32 = 1
)

// Blend laws understood by the shader.
const (
	shaderBlendAdd    uint32 = 0
	shaderBlendScreen uint32 = 1
)

// workgroupSize matches @workgroup_size(8, 8, 1) in bloom.wgsl.
const workgroupSize = 8

// passParamsSize is the size of the Params uniform in bloom.wgsl.
const passParamsSize = 96

// passParams mirrors the Params uniform struct in bloom.wgsl.
// Mip offsets and sizes are in texels (vec4 units).
type passParams struct {
	Width, Height uint32
	Stage         uint32
	BlendMode     uint32

	LoW, LoH, LoOff uint32
	HiW, HiH, HiOff uint32
	LodFrac         float32

	TapCos, TapSin float32
	TapScale       float32
	TapWeight      float32

	RadiusX, RadiusY float32
	NoiseScale       float32
	Saturation       float32
	Strength         float32
	Time             float32
}

// bytes encodes p in the std140-compatible layout of the shader uniform.
func (p *passParams) bytes() []byte {
	out := make([]byte, passParamsSize)
	le := binary.LittleEndian
	words := [...]uint32{
		p.Width, p.Height, p.Stage, p.BlendMode,
		p.LoW, p.LoH, p.LoOff, p.HiW,
		p.HiH, p.HiOff, math.Float32bits(p.LodFrac), math.Float32bits(p.TapCos),
		math.Float32bits(p.TapSin), math.Float32bits(p.TapScale), math.Float32bits(p.TapWeight), math.Float32bits(p.RadiusX),
		math.Float32bits(p.RadiusY), math.Float32bits(p.NoiseScale), math.Float32bits(p.Saturation), math.Float32bits(p.Strength),
		math.Float32bits(p.Time),
	}
	for i, w := range words {
		le.PutUint32(out[i*4:], w)
	}
	return out
}

// mipSpan locates one pyramid level inside the concatenated mip buffer.
type mipSpan struct {
	width, height uint32
	offset        uint32
}

// layoutMips packs the levels back to back and returns their spans and the
// total texel count.
func layoutMips(levels []bloom.MipLevel) ([]mipSpan, uint64) {
	spans := make([]mipSpan, len(levels))
	var off uint64
	for i, l := range levels {
		spans[i] = mipSpan{width: uint32(l.Width), height: uint32(l.Height), offset: uint32(off)}
		off += uint64(l.Width) * uint64(l.Height)
	}
	return spans, off
}

// lodBlend resolves a fractional level of detail into the two levels to
// blend, clamped to [0, n-1] the same way the CPU sampler clamps.
func lodBlend(lod float32, n int) (lo, hi int, frac float32) {
	if n <= 0 {
		return 0, 0, 0
	}
	lod = min(max(lod, 0), float32(n-1))
	lo = int(lod)
	frac = lod - float32(lo)
	if frac <= 0 || lo+1 >= n {
		return lo, lo, 0
	}
	return lo, lo + 1, frac
}

// blendCode maps a bloom blend mode to the shader's law selector.
func blendCode(m bloom.BlendMode) uint32 {
	if m == bloom.BlendScreen {
		return shaderBlendScreen
	}
	return shaderBlendAdd
}

// planPasses returns the uniform values of every dispatch of the frame:
// one accumulate pass per (lod, tap) followed by the composite pass.
func planPasses(job *bloom.CompositeJob, spans []mipSpan, spiral *filter.Spiral) []passParams {
	p := job.Params
	base := passParams{
		Width:      uint32(job.Src.Width()),
		Height:     uint32(job.Src.Height()),
		BlendMode:  blendCode(p.Blend),
		RadiusX:    job.RadiusX,
		RadiusY:    job.RadiusY,
		NoiseScale: job.NoiseScale,
		Saturation: p.Saturation,
		Strength:   p.Strength,
		Time:       job.Time,
	}

	norm := 1 / (spiral.WeightSum() * p.Compression)
	passes := make([]passParams, 0, p.Lods*spiral.Samples()+1)
	for i := range p.Lods {
		lo, hi, frac := lodBlend(float32(i)*p.LodSteps, len(spans))
		for _, t := range spiral.Taps() {
			pp := base
			pp.Stage = stageAccumulate
			pp.LoW, pp.LoH, pp.LoOff = spans[lo].width, spans[lo].height, spans[lo].offset
			pp.HiW, pp.HiH, pp.HiOff = spans[hi].width, spans[hi].height, spans[hi].offset
			pp.LodFrac = frac
			pp.TapCos, pp.TapSin = t.Cos, t.Sin
			pp.TapScale = t.Scale
			pp.TapWeight = t.Weight * norm
			passes = append(passes, pp)
		}
	}

	last := base
	last.Stage = stageComposite
	return append(passes, last)
}

// workgroups returns the dispatch size covering w x h pixels.
func workgroups(w, h int) (uint32, uint32) {
	return uint32((w + workgroupSize - 1) / workgroupSize), uint32((h + workgroupSize - 1) / workgroupSize)
}

// float32Bytes encodes a float slice as little-endian bytes.
func float32Bytes(dst []byte, src []float32) []byte {
	need := len(src) * 4
	if cap(dst) < need {
		dst = make([]byte, need)
	}
	dst = dst[:need]
	for i, v := range src {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
	return dst
}

// bytesFloat32 decodes little-endian bytes into dst.
func bytesFloat32(dst []float32, src []byte) {
	n := min(len(dst), len(src)/4)
	for i := range n {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
}
