// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gogpu/bloom"
	"github.com/gogpu/bloom/internal/filter"
)

func TestPassParamsBytes(t *testing.T) {
	p := passParams{
		Width:      640,
		Height:     480,
		Stage:      stageComposite,
		BlendMode:  shaderBlendScreen,
		LoOff:      7,
		HiOff:      11,
		LodFrac:    0.5,
		TapWeight:  0.25,
		NoiseScale: 1024,
		Strength:   0.75,
		Time:       2,
	}
	b := p.bytes()
	if len(b) != passParamsSize {
		t.Fatalf("len = %d, want %d", len(b), passParamsSize)
	}

	le := binary.LittleEndian
	u32 := func(i int) uint32 { return le.Uint32(b[i*4:]) }
	f32 := func(i int) float32 { return math.Float32frombits(u32(i)) }

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"width", u32(0), uint32(640)},
		{"height", u32(1), uint32(480)},
		{"stage", u32(2), stageComposite},
		{"blend", u32(3), shaderBlendScreen},
		{"lo_off", u32(6), uint32(7)},
		{"hi_off", u32(9), uint32(11)},
		{"lod_frac", f32(10), float32(0.5)},
		{"tap_weight", f32(14), float32(0.25)},
		{"noise_scale", f32(17), float32(1024)},
		{"strength", f32(19), float32(0.75)},
		{"time", f32(20), float32(2)},
		{"pad", u32(23), uint32(0)},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLodBlend(t *testing.T) {
	tests := []struct {
		lod      float32
		n        int
		lo, hi   int
		wantFrac float32
	}{
		{0, 4, 0, 0, 0},
		{1.5, 4, 1, 2, 0.5},
		{2, 4, 2, 2, 0},
		{6, 4, 3, 3, 0},
		{-1, 4, 0, 0, 0},
		{0.25, 1, 0, 0, 0},
		{1, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		lo, hi, frac := lodBlend(tt.lod, tt.n)
		if lo != tt.lo || hi != tt.hi || frac != tt.wantFrac {
			t.Errorf("lodBlend(%v, %d) = (%d, %d, %v), want (%d, %d, %v)",
				tt.lod, tt.n, lo, hi, frac, tt.lo, tt.hi, tt.wantFrac)
		}
	}
}

func TestLayoutMips(t *testing.T) {
	levels := []bloom.MipLevel{
		{Width: 8, Height: 4},
		{Width: 4, Height: 2},
		{Width: 2, Height: 1},
	}
	spans, total := layoutMips(levels)
	if total != 32+8+2 {
		t.Errorf("total = %d, want 42", total)
	}
	wantOff := []uint32{0, 32, 40}
	for i, s := range spans {
		if s.offset != wantOff[i] {
			t.Errorf("span %d offset = %d, want %d", i, s.offset, wantOff[i])
		}
		if s.width != uint32(levels[i].Width) || s.height != uint32(levels[i].Height) {
			t.Errorf("span %d size = %dx%d", i, s.width, s.height)
		}
	}
}

func testJob(t *testing.T, p bloom.Params) *bloom.CompositeJob {
	t.Helper()
	f, err := bloom.NewFrame(16, 8)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	return &bloom.CompositeJob{
		Src:        f,
		Dst:        f,
		Levels:     []bloom.MipLevel{{Width: 16, Height: 8}, {Width: 8, Height: 4}, {Width: 4, Height: 2}},
		Params:     p,
		RadiusX:    0.5,
		RadiusY:    0.25,
		NoiseScale: 16,
	}
}

func TestPlanPasses(t *testing.T) {
	p := bloom.DefaultParams()
	p.Samples = 5
	p.Lods = 3
	p.LodSteps = 0.75
	p.Compression = 2
	p.Blend = bloom.BlendScreen
	job := testJob(t, p)
	spans, _ := layoutMips(job.Levels)
	spiral := filter.NewSpiral(p.Samples)

	passes := planPasses(job, spans, spiral)
	if len(passes) != p.Lods*p.Samples+1 {
		t.Fatalf("len(passes) = %d, want %d", len(passes), p.Lods*p.Samples+1)
	}

	last := passes[len(passes)-1]
	if last.Stage != stageComposite {
		t.Errorf("last stage = %d, want composite", last.Stage)
	}
	if last.BlendMode != shaderBlendScreen {
		t.Errorf("blend = %d, want screen", last.BlendMode)
	}

	// Weights of one lod sum to 1/compression.
	var sum float32
	for _, pp := range passes[:p.Samples] {
		if pp.Stage != stageAccumulate {
			t.Fatalf("stage = %d, want accumulate", pp.Stage)
		}
		sum += pp.TapWeight
	}
	if math.Abs(float64(sum-1/p.Compression)) > 1e-5 {
		t.Errorf("tap weight sum = %v, want %v", sum, 1/p.Compression)
	}

	// lod 1 sits at 0.75: blend level 0 into level 1.
	second := passes[p.Samples]
	if second.LoOff != spans[0].offset || second.HiOff != spans[1].offset || second.LodFrac != 0.75 {
		t.Errorf("lod 1 pass = lo %d hi %d frac %v", second.LoOff, second.HiOff, second.LodFrac)
	}
	// lod 2 sits at 1.5: blend level 1 into level 2.
	third := passes[2*p.Samples]
	if third.LoW != 8 || third.HiW != 4 || third.LodFrac != 0.5 {
		t.Errorf("lod 2 pass = lo %d hi %d frac %v", third.LoW, third.HiW, third.LodFrac)
	}
}

func TestWorkgroups(t *testing.T) {
	tests := []struct {
		w, h   int
		gx, gy uint32
	}{
		{1, 1, 1, 1},
		{8, 8, 1, 1},
		{9, 17, 2, 3},
		{1920, 1080, 240, 135},
	}
	for _, tt := range tests {
		gx, gy := workgroups(tt.w, tt.h)
		if gx != tt.gx || gy != tt.gy {
			t.Errorf("workgroups(%d, %d) = (%d, %d), want (%d, %d)", tt.w, tt.h, gx, gy, tt.gx, tt.gy)
		}
	}
}

func TestFloat32Bytes(t *testing.T) {
	src := []float32{0, 1, -2.5, float32(math.Inf(1))}
	b := float32Bytes(nil, src)
	if len(b) != 16 {
		t.Fatalf("len = %d, want 16", len(b))
	}
	got := make([]float32, len(src))
	bytesFloat32(got, b)
	for i := range src {
		if got[i] != src[i] {
			t.Errorf("value %d = %v, want %v", i, got[i], src[i])
		}
	}

	// The scratch buffer is reused when large enough.
	again := float32Bytes(b, src[:2])
	if &again[0] != &b[0] || len(again) != 8 {
		t.Error("float32Bytes did not reuse its buffer")
	}
}
