package filter

import (
	"math"

	"github.com/gogpu/bloom/internal/cache"
	"github.com/gogpu/bloom/internal/image"
)

// spirals shares tap tables between filters and accelerators.
var spirals = cache.New[int, *Spiral](16)

// Tap is one precomputed sample of the spiral: the rotation applied to the
// per-pixel base direction, the radial scale sqrt(i/N) and the Gaussian
// weight of that radial distance.
type Tap struct {
	Cos, Sin float32
	Scale    float32
	Weight   float32
}

// Spiral is a golden-angle sampling pattern with Gaussian weights.
//
// Taps are spaced so that each covers an equal area of the unit disk, and
// consecutive taps turn by the golden angle, which spreads them evenly for
// any sample count without random jitter.
//
// Spiral is immutable after NewSpiral and safe for concurrent use.
type Spiral struct {
	taps      []Tap
	weightSum float32
}

// NewSpiral precomputes a spiral of the given number of taps.
// samples < 1 is treated as 1.
func NewSpiral(samples int) *Spiral {
	samples = max(samples, 1)
	s := &Spiral{taps: make([]Tap, samples)}
	n := float64(samples)
	for i := 1; i <= samples; i++ {
		angle := float64(i) * GoldenAngle
		r := math.Sqrt(float64(i) / n)
		w := float32(GaussianDensity(r))
		s.taps[i-1] = Tap{
			Cos:    float32(math.Cos(angle)),
			Sin:    float32(math.Sin(angle)),
			Scale:  float32(r),
			Weight: w,
		}
		s.weightSum += w
	}
	return s
}

// SpiralFor returns the shared spiral for the given number of taps,
// building it on first use. samples < 1 is treated as 1.
func SpiralFor(samples int) *Spiral {
	samples = max(samples, 1)
	return spirals.GetOrCreate(samples, func() *Spiral { return NewSpiral(samples) })
}

// Samples returns the number of taps.
func (s *Spiral) Samples() int {
	return len(s.taps)
}

// Taps returns the precomputed taps. The slice must not be modified.
func (s *Spiral) Taps() []Tap {
	return s.taps
}

// WeightSum returns the sum of all tap weights.
func (s *Spiral) WeightSum() float32 {
	return s.weightSum
}

// offset rotates the base direction by the tap angle and scales it.
func (t Tap) offset(polar [2]float32) (float32, float32) {
	x := t.Cos*polar[0] - t.Sin*polar[1]
	y := t.Sin*polar[0] + t.Cos*polar[1]
	return x * t.Scale, y * t.Scale
}

// Offsets returns the tap offsets for the base direction polar, before
// radius scaling. Offset i lies at distance sqrt((i+1)/N) from the centre.
func (s *Spiral) Offsets(polar [2]float32) [][2]float32 {
	out := make([][2]float32, len(s.taps))
	for i, t := range s.taps {
		x, y := t.offset(polar)
		out[i] = [2]float32{x, y}
	}
	return out
}

// Blur returns the normalized weighted sum of the taps around (u, v),
// sampled trilinearly from levels at lod. radii converts the unit offsets
// into UV units per axis.
func (s *Spiral) Blur(levels []*image.Buf, u, v float32, polar, radii [2]float32, lod float32) [4]float32 {
	var acc [4]float32
	for _, t := range s.taps {
		ox, oy := t.offset(polar)
		c := image.SampleLod(levels, u+ox*radii[0], v+oy*radii[1], lod)
		for k := range acc {
			acc[k] += c[k] * t.Weight
		}
	}
	inv := 1 / s.weightSum
	for k := range acc {
		acc[k] *= inv
	}
	return acc
}

// Accumulate sums Blur over lods levels, consulting lod 0, lodSteps,
// 2*lodSteps and so on, and divides the total by compression. The sum is
// not clamped.
func (s *Spiral) Accumulate(levels []*image.Buf, u, v float32, polar, radii [2]float32, lods int, lodSteps, compression float32) [4]float32 {
	var sum [4]float32
	for i := range lods {
		c := s.Blur(levels, u, v, polar, radii, float32(i)*lodSteps)
		for k := range sum {
			sum[k] += c[k]
		}
	}
	inv := 1 / compression
	for k := range sum {
		sum[k] *= inv
	}
	return sum
}

// Polar maps a noise value in [-1, 1] to a unit direction whose angle is
// pi + (noise*2-1)*pi.
func Polar(noise float64) [2]float32 {
	angle := math.Pi + (noise*2-1)*math.Pi
	return [2]float32{float32(math.Cos(angle)), float32(math.Sin(angle))}
}

// Radii converts a disk radius in pixels into per-axis UV radii, scaled by
// max(w,h)/min(w,h) so the disk stays round on non-square frames.
func Radii(disk float32, width, height int) [2]float32 {
	if width <= 0 || height <= 0 {
		return [2]float32{}
	}
	aspect := float32(max(width, height)) / float32(min(width, height))
	return [2]float32{
		disk * aspect / float32(width),
		disk * aspect / float32(height),
	}
}
