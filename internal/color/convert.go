package color

import "math"

// SRGBToLinear converts an sRGB component to linear (EOTF).
// Formula: if s <= 0.04045: s/12.92; else: pow((s+0.055)/1.055, 2.4)
func SRGBToLinear(s float32) float32 {
	return float32(srgbToLinear(float64(s)))
}

// LinearToSRGB converts a linear component to sRGB (OETF).
// Formula: if l <= 0.0031308: l*12.92; else: 1.055*pow(l, 1/2.4)-0.055
// Values outside [0,1] are clamped first; bloom output can exceed 1 before
// the final composite.
func LinearToSRGB(l float32) float32 {
	return float32(linearToSRGB(float64(clamp01(l))))
}

func srgbToLinear(s float64) float64 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

func linearToSRGB(l float64) float64 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*math.Pow(l, 1.0/2.4) - 0.055
}

// DecodePixel converts an sRGB-encoded RGBA pixel to linear.
// Alpha is never gamma-encoded and passes through.
func DecodePixel(c [4]float32) [4]float32 {
	return [4]float32{SRGBToLinear(c[0]), SRGBToLinear(c[1]), SRGBToLinear(c[2]), c[3]}
}

// EncodePixel converts a linear RGBA pixel to sRGB, clamping to [0,1].
// Alpha is clamped and passes through.
func EncodePixel(c [4]float32) [4]float32 {
	return [4]float32{LinearToSRGB(c[0]), LinearToSRGB(c[1]), LinearToSRGB(c[2]), clamp01(c[3])}
}

// ToByte maps [0,1] to [0,255] with clamping and rounding.
func ToByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255.0 + 0.5)
}

// FromByte maps [0,255] to [0,1].
func FromByte(v uint8) float32 {
	return float32(v) / 255.0
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
