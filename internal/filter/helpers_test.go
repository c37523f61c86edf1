package filter

import "github.com/gogpu/bloom/internal/image"

// Test helper functions shared across filter tests.

// uniformLevels builds a full mip chain filled with color c.
func uniformLevels(w, h int, c [4]float32) []*image.Buf {
	n := image.MaxLevels(w, h)
	levels := make([]*image.Buf, n)
	for i := range n {
		lw, lh := image.LevelSize(w, h, i)
		levels[i], _ = image.NewBuf(lw, lh)
		levels[i].Fill(c)
	}
	return levels
}

// colorApproxEqual compares two colors with tolerance.
func colorApproxEqual(a, b [4]float32, tolerance float32) bool {
	for c := range a {
		if absf32(a[c]-b[c]) > tolerance {
			return false
		}
	}
	return true
}

// absf32 returns the absolute value of a float32.
func absf32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
