// Package color provides sRGB transfer functions for moving frames in and
// out of the linear working space of the bloom passes.
//
// Lookup tables make the per-pixel byte conversions O(1) and replace
// math.Pow in the frame import and output passes.
//
// References:
//   - sRGB specification: https://www.w3.org/Graphics/Color/sRGB
//   - GPU Gems 3, Chapter 24: https://developer.nvidia.com/gpugems/gpugems3/part-iv-image-effects/chapter-24-importance-being-linear
package color

// sRGBToLinearLUT converts sRGB byte [0-255] to linear float32 [0.0-1.0].
var sRGBToLinearLUT [256]float32

// linearToSRGBLUT converts linear [0.0-1.0] in 12-bit steps to an sRGB byte.
var linearToSRGBLUT [4096]uint8

func init() {
	for i := range 256 {
		sRGBToLinearLUT[i] = float32(srgbToLinear(float64(i) / 255.0))
	}
	for i := range 4096 {
		s := linearToSRGB(float64(i) / 4095.0)
		srgb := min(max(int(s*255.0+0.5), 0), 255)
		//nolint:gosec // G115: srgb is clamped to [0,255] range
		linearToSRGBLUT[i] = uint8(srgb)
	}
}

// SRGBToLinearFast converts an sRGB byte to linear float32 using the table.
//
// Example:
//
//	r := SRGBToLinearFast(128) // ~0.2159 (not 0.5!)
func SRGBToLinearFast(s uint8) float32 {
	return sRGBToLinearLUT[s]
}

// LinearToSRGBFast converts linear float32 to an sRGB byte using the table.
// Input is clamped to [0.0, 1.0].
//
// Example:
//
//	s := LinearToSRGBFast(0.5) // 188 (not 128!)
func LinearToSRGBFast(l float32) uint8 {
	index := int(clamp01(l)*4095.0 + 0.5)
	return linearToSRGBLUT[min(index, 4095)]
}
