package bloom

import (
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/bloom/internal/blend"
)

// BlendMode selects how bloom light is merged into the frame.
type BlendMode int

const (
	// BlendAdditive adds the bloom to the frame: clamp(src + dst, 0, 1).
	BlendAdditive BlendMode = iota

	// BlendScreen uses clamp(1 - (1-src)(1-dst), 0, 1), which rolls off
	// softly instead of blowing out highlights.
	BlendScreen
)

// String returns "additive" or "screen".
func (m BlendMode) String() string {
	switch m {
	case BlendAdditive:
		return "additive"
	case BlendScreen:
		return "screen"
	default:
		return fmt.Sprintf("BlendMode(%d)", int(m))
	}
}

// ParseBlendMode parses a blend mode name. "add" is accepted as an alias
// for "additive".
func ParseBlendMode(s string) (BlendMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "additive", "add", "":
		return BlendAdditive, nil
	case "screen":
		return BlendScreen, nil
	default:
		return 0, fmt.Errorf("%w: unknown blend mode %q", ErrConfiguration, s)
	}
}

func (m BlendMode) law() blend.Mode {
	if m == BlendScreen {
		return blend.ModeScreen
	}
	return blend.ModeAdd
}

// Params is the per-frame configuration of the filter.
//
// Params is a plain value: Apply works on a copy, so changing a Params
// after SetParams never affects a frame in flight.
type Params struct {
	// Strength mixes between the original frame (0) and the fully blended
	// result (1). Values outside [0,1] extrapolate before the final clamp.
	Strength float32

	// Threshold is the luminance at which pixels start to bloom, in [0,1].
	Threshold float32

	// SmoothWidth is the width of the smoothstep band above Threshold.
	// Zero gives a hard cut.
	SmoothWidth float32

	// Disk is the spiral radius in pixels of the configured output size.
	Disk float32

	// Samples is the number of spiral taps per mip level.
	Samples int

	// Lods is the number of mip levels accumulated.
	Lods int

	// LodSteps is the stride between consulted levels; 2 reads 0, 2, 4, ...
	// Fractional strides blend neighbouring levels.
	LodSteps float32

	// Compression divides the accumulated bloom.
	Compression float32

	// Saturation scales the bloom before blending.
	Saturation float32

	// Blend selects the compositing law.
	Blend BlendMode
}

// DefaultParams returns the stock configuration: strength 1, threshold 0,
// smooth width 0.5, disk 36, 24 samples, 4 lods with stride 2,
// compression 6, saturation 1, additive blending.
func DefaultParams() Params {
	return Params{
		Strength:    1,
		Threshold:   0,
		SmoothWidth: 0.5,
		Disk:        36,
		Samples:     24,
		Lods:        4,
		LodSteps:    2,
		Compression: 6,
		Saturation:  1,
		Blend:       BlendAdditive,
	}
}

// Validate reports an invalid field, wrapped in ErrConfiguration.
func (p Params) Validate() error {
	for name, v := range map[string]float32{
		"strength":     p.Strength,
		"threshold":    p.Threshold,
		"smooth width": p.SmoothWidth,
		"disk":         p.Disk,
		"lod steps":    p.LodSteps,
		"compression":  p.Compression,
		"saturation":   p.Saturation,
	} {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("%w: %s is not finite", ErrConfiguration, name)
		}
	}

	switch {
	case p.Samples < 1:
		return fmt.Errorf("%w: samples %d < 1", ErrConfiguration, p.Samples)
	case p.Lods < 1:
		return fmt.Errorf("%w: lods %d < 1", ErrConfiguration, p.Lods)
	case p.Threshold < 0 || p.Threshold > 1:
		return fmt.Errorf("%w: threshold %v outside [0,1]", ErrConfiguration, p.Threshold)
	case p.SmoothWidth < 0:
		return fmt.Errorf("%w: smooth width %v < 0", ErrConfiguration, p.SmoothWidth)
	case p.Disk < 0:
		return fmt.Errorf("%w: disk %v < 0", ErrConfiguration, p.Disk)
	case p.LodSteps < 0:
		return fmt.Errorf("%w: lod steps %v < 0", ErrConfiguration, p.LodSteps)
	case p.Compression <= 0:
		return fmt.Errorf("%w: compression %v <= 0", ErrConfiguration, p.Compression)
	case p.Saturation < 0:
		return fmt.Errorf("%w: saturation %v < 0", ErrConfiguration, p.Saturation)
	case p.Blend != BlendAdditive && p.Blend != BlendScreen:
		return fmt.Errorf("%w: unknown blend mode %d", ErrConfiguration, int(p.Blend))
	}
	return nil
}

// levelsNeeded returns how many mip levels the accumulation reads,
// capped at available.
func (p Params) levelsNeeded(available int) int {
	deepest := math.Ceil(float64(p.Lods-1) * float64(p.LodSteps))
	if deepest+1 >= float64(available) {
		return max(1, available)
	}
	return int(deepest) + 1
}
