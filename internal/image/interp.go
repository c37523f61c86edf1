package image

import "math"

// SampleBilinear performs bilinear interpolation at normalized coordinates
// (u, v), where (0,0) is the top-left corner of the first pixel and (1,1) the
// bottom-right corner of the last. Coordinates outside [0,1] clamp to the
// edge, so bright borders never wrap to the opposite side.
func SampleBilinear(img *Buf, u, v float32) [4]float32 {
	fx := u*float32(img.width) - 0.5
	fy := v*float32(img.height) - 0.5

	fx0 := float32(math.Floor(float64(fx)))
	fy0 := float32(math.Floor(float64(fy)))
	tx := fx - fx0
	ty := fy - fy0

	x0, y0 := int(fx0), int(fy0)
	x0c := clamp(x0, 0, img.width-1)
	y0c := clamp(y0, 0, img.height-1)
	x1c := clamp(x0+1, 0, img.width-1)
	y1c := clamp(y0+1, 0, img.height-1)

	w := img.width
	i00 := (y0c*w + x0c) * Channels
	i10 := (y0c*w + x1c) * Channels
	i01 := (y1c*w + x0c) * Channels
	i11 := (y1c*w + x1c) * Channels

	var out [4]float32
	for c := range Channels {
		out[c] = lerp2D(img.pix[i00+c], img.pix[i10+c], img.pix[i01+c], img.pix[i11+c], tx, ty)
	}
	return out
}

// SampleLod samples a mip chain at a fractional level of detail, blending
// bilinear samples of the two nearest levels (trilinear filtering).
// lod is clamped to [0, len(levels)-1].
func SampleLod(levels []*Buf, u, v, lod float32) [4]float32 {
	if len(levels) == 0 {
		return [4]float32{}
	}
	maxLod := float32(len(levels) - 1)
	lod = clampFloat(lod, 0, maxLod)

	l0 := int(lod)
	f := lod - float32(l0)
	c0 := SampleBilinear(levels[l0], u, v)
	if f <= 0 || l0+1 >= len(levels) {
		return c0
	}
	c1 := SampleBilinear(levels[l0+1], u, v)
	for c := range Channels {
		c0[c] = lerp(c0[c], c1[c], f)
	}
	return c0
}

// clamp clamps an integer value to [minVal, maxVal].
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// clampFloat clamps a float32 value to [minVal, maxVal].
func clampFloat(val, minVal, maxVal float32) float32 {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// lerp performs linear interpolation between a and b.
func lerp(a, b, t float32) float32 {
	return a*(1-t) + b*t
}

// lerp2D performs bilinear interpolation on a 2x2 grid.
func lerp2D(v00, v10, v01, v11, tx, ty float32) float32 {
	v0 := lerp(v00, v10, tx)
	v1 := lerp(v01, v11, tx)
	return lerp(v0, v1, ty)
}
