// Package blend provides the compositing laws used to merge bloom light
// back into a frame.
package blend

// Mode represents a blending mode.
type Mode int

const (
	// ModeAdd adds the bloom to the frame, clamped to [0, 1].
	ModeAdd Mode = iota
	// ModeScreen combines as 1-(1-src)(1-dst), which saturates softly and
	// avoids blown highlights.
	ModeScreen
)

// String returns the mode name used in configuration files.
func (m Mode) String() string {
	switch m {
	case ModeAdd:
		return "add"
	case ModeScreen:
		return "screen"
	default:
		return "unknown"
	}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeAdd || m == ModeScreen
}

// Blend combines src (bloom) with dst (frame) per channel using mode.
// Unknown modes fall back to ModeAdd.
func Blend(src, dst [4]float32, mode Mode) [4]float32 {
	var out [4]float32
	switch mode {
	case ModeScreen:
		for c := range out {
			out[c] = Clamp01(1 - (1-src[c])*(1-dst[c]))
		}
	default:
		for c := range out {
			out[c] = Clamp01(src[c] + dst[c])
		}
	}
	return out
}

// Mix linearly interpolates from a to b by t. t is not clamped.
func Mix(a, b [4]float32, t float32) [4]float32 {
	var out [4]float32
	for c := range out {
		out[c] = a[c] + (b[c]-a[c])*t
	}
	return out
}

// Clamp01 clamps v to [0, 1].
func Clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Composite merges bloom into frame: the bloom is scaled by saturation,
// blended with mode, mixed toward the untouched frame by strength and
// finally clamped to [0, 1].
//
// strength acts as a dry/wet control: 0 returns frame unchanged (clamped),
// 1 returns the fully blended color.
func Composite(frame, bloom [4]float32, saturation, strength float32, mode Mode) [4]float32 {
	var scaled [4]float32
	for c := range scaled {
		scaled[c] = bloom[c] * saturation
	}
	out := Mix(frame, Blend(scaled, frame, mode), strength)
	for c := range out {
		out[c] = Clamp01(out[c])
	}
	return out
}
