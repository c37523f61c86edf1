package main

import (
	"flag"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/bloom"
	"github.com/gogpu/bloom/internal/config"
	"github.com/gogpu/bloom/internal/imageio"
)

func TestExplicitFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Float64("disk", 36, "")
	fs.Float64("threshold", 0, "")
	fs.Int("samples", 24, "")
	fs.Bool("hud", false, "")
	if err := fs.Parse([]string{"-disk", "12.5", "-hud=false", "-samples", "3"}); err != nil {
		t.Fatal(err)
	}

	var f config.Flags
	if err := explicitFlags(fs, &f); err != nil {
		t.Fatalf("explicitFlags() error = %v", err)
	}
	if f.Disk == nil || *f.Disk != 12.5 {
		t.Errorf("Disk = %v, want 12.5", f.Disk)
	}
	if f.Samples == nil || *f.Samples != 3 {
		t.Errorf("Samples = %v, want 3", f.Samples)
	}
	if f.HUD == nil || *f.HUD {
		t.Errorf("HUD = %v, want explicit false", f.HUD)
	}
	if f.Threshold != nil {
		t.Errorf("unset threshold = %v, want nil", *f.Threshold)
	}
}

func TestNewFilterCPU(t *testing.T) {
	cfg := config.Config{Backend: config.BackendCPU, Workers: 2}
	f, err := newFilter(cfg, bloom.DefaultParams(), bloom.Logger())
	if err != nil {
		t.Fatalf("newFilter() error = %v", err)
	}
	defer f.Release()
	if f.Backend() != "cpu" {
		t.Errorf("Backend() = %q, want cpu", f.Backend())
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	img := image.NewNRGBA(image.Rect(0, 0, 24, 16))
	img.SetNRGBA(12, 8, color.NRGBA{255, 255, 255, 255})
	if err := imageio.Save(in, img); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out.tga")
	err := run([]string{"-in", in, "-out", out, "-backend", "cpu", "-frames", "2", "-disk", "4", "-samples", "8", "-hud"})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output not written: %v", err)
	}
	got, err := imageio.Load(out)
	if err != nil {
		t.Fatal(err)
	}
	if got.Bounds().Size() != image.Pt(24, 16) {
		t.Errorf("output size = %v, want 24x16", got.Bounds().Size())
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no input", []string{"-backend", "cpu"}},
		{"missing input", []string{"-in", "does-not-exist.png"}},
		{"bad backend", []string{"-in", "x.png", "-backend", "opengl"}},
		{"bad params", []string{"-in", "x.png", "-samples", "0"}},
		{"bad flag", []string{"-no-such-flag"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(tt.args); err == nil {
				t.Error("run() succeeded")
			}
		})
	}
}
