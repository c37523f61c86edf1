package image

import (
	"math"
	"sync"
	"testing"
)

func TestMaxLevels(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		want          int
	}{
		{"64x64 square", 64, 64, 7},
		{"128x64 rectangle", 128, 64, 8},
		{"1x1 minimum", 1, 1, 1},
		{"100x50 odd", 100, 50, 7},
		{"1920x1080", 1920, 1080, 11},
		{"empty", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxLevels(tt.width, tt.height); got != tt.want {
				t.Errorf("MaxLevels(%d, %d) = %d, want %d", tt.width, tt.height, got, tt.want)
			}
		})
	}
}

func TestPyramidDimensions(t *testing.T) {
	sizes := [][2]int{{64, 64}, {100, 50}, {37, 5}, {1, 9}, {640, 360}}

	for _, s := range sizes {
		w, h := s[0], s[1]
		p, err := NewPyramid(w, h, 32)
		if err != nil {
			t.Fatalf("NewPyramid(%d, %d) error = %v", w, h, err)
		}
		if p.NumLevels() != MaxLevels(w, h) {
			t.Errorf("%dx%d: NumLevels() = %d, want %d", w, h, p.NumLevels(), MaxLevels(w, h))
		}
		for n := range p.NumLevels() {
			wantW := max(1, w>>n)
			wantH := max(1, h>>n)
			lvl := p.Level(n)
			if lvl.Width() != wantW || lvl.Height() != wantH {
				t.Errorf("%dx%d level %d = %dx%d, want %dx%d", w, h, n, lvl.Width(), lvl.Height(), wantW, wantH)
			}
		}
		p.Release()
	}
}

func TestBuildPyramidUniform(t *testing.T) {
	src, _ := NewBuf(33, 17)
	c := [4]float32{0.3, 0.6, 0.9, 1}
	src.Fill(c)

	p, err := BuildPyramid(src, 4)
	if err != nil {
		t.Fatalf("BuildPyramid() error = %v", err)
	}
	defer p.Release()

	if p.Level(0) != src {
		t.Error("level 0 must be the source buffer")
	}
	for n := range p.NumLevels() {
		got := p.Level(n).At(0, 0)
		for ch := range Channels {
			if math.Abs(float64(got[ch]-c[ch])) > 1e-6 {
				t.Errorf("level %d channel %d = %v, want %v", n, ch, got[ch], c[ch])
			}
		}
	}
}

func TestBuildPyramidBoxFilter(t *testing.T) {
	src, _ := NewBuf(2, 2)
	src.Set(0, 0, [4]float32{1, 0, 0, 1})
	src.Set(1, 0, [4]float32{0, 1, 0, 1})
	src.Set(0, 1, [4]float32{0, 0, 1, 1})
	src.Set(1, 1, [4]float32{1, 1, 1, 1})

	p, err := BuildPyramid(src, 2)
	if err != nil {
		t.Fatalf("BuildPyramid() error = %v", err)
	}
	defer p.Release()

	got := p.Level(1).At(0, 0)
	want := [4]float32{0.5, 0.5, 0.5, 1}
	if got != want {
		t.Errorf("level 1 = %v, want %v", got, want)
	}
}

func TestPyramidRegenerateInPlace(t *testing.T) {
	p, err := NewPyramid(16, 16, 5)
	if err != nil {
		t.Fatalf("NewPyramid() error = %v", err)
	}
	defer p.Release()

	lvl3 := p.Level(3)
	p.Level(0).Fill([4]float32{1, 1, 1, 1})
	p.Regenerate(5, nil)
	if p.Level(3) != lvl3 {
		t.Error("Regenerate must reuse level buffers")
	}
	if got := p.Level(4).At(0, 0); got[0] != 1 {
		t.Errorf("level 4 after fill = %v, want 1", got)
	}

	// Content changes each frame; nothing is cached.
	p.Level(0).Clear()
	p.Regenerate(5, nil)
	if got := p.Level(4).At(0, 0); got[0] != 0 {
		t.Errorf("level 4 after clear = %v, want 0", got)
	}
}

func TestPyramidRegenerateBanded(t *testing.T) {
	serial, _ := NewPyramid(40, 24, 6)
	banded, _ := NewPyramid(40, 24, 6)
	defer serial.Release()
	defer banded.Release()

	for y := range 24 {
		for x := range 40 {
			c := [4]float32{float32(x) / 40, float32(y) / 24, float32(x*y) / 960, 1}
			serial.Level(0).Set(x, y, c)
			banded.Level(0).Set(x, y, c)
		}
	}

	rows := func(height int, band func(y0, y1 int)) {
		var wg sync.WaitGroup
		for y := 0; y < height; y += 3 {
			wg.Add(1)
			go func(y0 int) {
				defer wg.Done()
				band(y0, min(y0+3, height))
			}(y)
		}
		wg.Wait()
	}

	serial.Regenerate(6, nil)
	banded.Regenerate(6, rows)

	for n := 1; n < 6; n++ {
		a, b := serial.Level(n).Pix(), banded.Level(n).Pix()
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("level %d differs at %d: %v vs %v", n, i, a[i], b[i])
			}
		}
	}
}

func TestPyramidLevelsSlice(t *testing.T) {
	p, _ := NewPyramid(8, 8, 4)
	defer p.Release()

	if got := len(p.Levels(2)); got != 2 {
		t.Errorf("len(Levels(2)) = %d, want 2", got)
	}
	if got := len(p.Levels(99)); got != 4 {
		t.Errorf("len(Levels(99)) = %d, want 4", got)
	}
	if p.Level(4) != nil || p.Level(-1) != nil {
		t.Error("Level out of range must be nil")
	}
	var nilP *Pyramid
	if nilP.NumLevels() != 0 || nilP.Levels(3) != nil {
		t.Error("nil pyramid must report zero levels")
	}
}

func TestNewPyramidInvalid(t *testing.T) {
	if _, err := NewPyramid(0, 4, 2); err == nil {
		t.Error("NewPyramid(0, 4) must fail")
	}
	if _, err := BuildPyramid(nil, 2); err == nil {
		t.Error("BuildPyramid(nil) must fail")
	}
}
