package filter

import (
	"math"
	"testing"

	"github.com/gogpu/bloom/internal/image"
)

func TestLuminance(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float32
		want    float32
	}{
		{"black", 0, 0, 0, 0},
		{"white", 1, 1, 1, 1},
		{"red", 1, 0, 0, LumaR},
		{"green", 0, 1, 0, LumaG},
		{"blue", 0, 0, 1, LumaB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Luminance(tt.r, tt.g, tt.b)
			if absf32(got-tt.want) > 1e-6 {
				t.Errorf("Luminance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractPixel(t *testing.T) {
	white := [4]float32{1, 1, 1, 1}
	grey := [4]float32{0.25, 0.25, 0.25, 1}

	tests := []struct {
		name        string
		c           [4]float32
		threshold   float32
		smoothWidth float32
		want        [4]float32
	}{
		{"black at zero threshold", [4]float32{0, 0, 0, 1}, 0, 0.5, [4]float32{}},
		{"white above band", white, 0, 0.5, white},
		{"white below threshold", white, 1, 0.5, [4]float32{}},
		// t = 0.5 inside [0, 0.5] band: smoothstep = 0.5
		{"grey mid band", grey, 0, 0.5, [4]float32{0.125, 0.125, 0.125, 0.5}},
		{"hard step above", grey, 0.2, 0, grey},
		{"hard step below", grey, 0.3, 0, [4]float32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractPixel(tt.c, tt.threshold, tt.smoothWidth)
			for c := range got {
				if absf32(got[c]-tt.want[c]) > 1e-5 {
					t.Fatalf("ExtractPixel() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestExtractPixelThresholdMonotonic(t *testing.T) {
	for _, width := range []float32{0, 0.1, 0.5, 1} {
		for lv := float32(0); lv <= 1.0001; lv += 0.05 {
			c := [4]float32{lv, lv * 0.8, lv * 0.3, 1}
			prev := float32(math.Inf(1))
			for th := float32(0); th <= 1.0001; th += 0.05 {
				got := ExtractPixel(c, th, width)[0]
				if got > prev+1e-6 {
					t.Fatalf("width=%v lum=%v: raising threshold to %v increased output %v > %v",
						width, lv, th, got, prev)
				}
				prev = got
			}
		}
	}
}

func TestExtractSameSize(t *testing.T) {
	src, _ := image.NewBuf(5, 3)
	dst, _ := image.NewBuf(5, 3)
	src.Set(2, 1, [4]float32{1, 1, 1, 1})
	src.Set(4, 2, [4]float32{0.01, 0.01, 0.01, 1})

	Extract(dst, src, 0.5, 0.1, nil)

	if got := dst.At(2, 1); got != ([4]float32{1, 1, 1, 1}) {
		t.Errorf("bright pixel = %v, want white", got)
	}
	if got := dst.At(4, 2); got != ([4]float32{}) {
		t.Errorf("dim pixel = %v, want black", got)
	}
}

func TestExtractDownscaled(t *testing.T) {
	src, _ := image.NewBuf(8, 8)
	src.Fill([4]float32{1, 1, 1, 1})
	dst, _ := image.NewBuf(2, 2)

	rows := image.RowFunc(func(height int, band func(y0, y1 int)) {
		for y := range height {
			band(y, y+1)
		}
	})
	Extract(dst, src, 0, 0.5, rows)

	for y := range 2 {
		for x := range 2 {
			if got := dst.At(x, y); got != ([4]float32{1, 1, 1, 1}) {
				t.Errorf("dst(%d,%d) = %v, want white", x, y, got)
			}
		}
	}
}
