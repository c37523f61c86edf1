package filter

import "github.com/gogpu/bloom/internal/image"

// Luminance weights (Rec. 709 primaries).
const (
	LumaR = 0.2125
	LumaG = 0.7154
	LumaB = 0.0721
)

// Luminance returns the perceptual brightness of a linear RGB color.
func Luminance(r, g, b float32) float32 {
	return LumaR*r + LumaG*g + LumaB*b
}

// smoothstep is the Hermite step between edge0 and edge1.
// A degenerate band (edge1 <= edge0) becomes a hard step at edge0.
func smoothstep(edge0, edge1, x float32) float32 {
	if edge1 <= edge0 {
		if x >= edge0 {
			return 1
		}
		return 0
	}
	t := (x - edge0) / (edge1 - edge0)
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// ExtractPixel keeps c in proportion to how far its luminance lies above
// threshold, fading in over [threshold, threshold+smoothWidth]. All four
// channels are scaled, so fully dark pixels become transparent black.
func ExtractPixel(c [4]float32, threshold, smoothWidth float32) [4]float32 {
	alpha := smoothstep(threshold, threshold+smoothWidth, Luminance(c[0], c[1], c[2]))
	return [4]float32{c[0] * alpha, c[1] * alpha, c[2] * alpha, c[3] * alpha}
}

// Extract writes the thresholded luminance of src into dst.
//
// dst may be smaller than src (pixelated bloom): each dst pixel samples src
// bilinearly at its own centre, with clamp-to-edge addressing.
func Extract(dst, src *image.Buf, threshold, smoothWidth float32, rows image.RowFunc) {
	dw, dh := dst.Bounds()
	sw, sh := src.Bounds()
	same := dw == sw && dh == sh
	invW, invH := 1/float32(dw), 1/float32(dh)

	rows.Run(dh, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			out := dst.Row(y)
			v := (float32(y) + 0.5) * invH
			for x := range dw {
				var c [4]float32
				if same {
					c = src.At(x, y)
				} else {
					c = image.SampleBilinear(src, (float32(x)+0.5)*invW, v)
				}
				e := ExtractPixel(c, threshold, smoothWidth)
				copy(out[x*image.Channels:], e[:])
			}
		}
	})
}
