package filter

import "math"

// Sigma is the standard deviation of the tap weighting, in units of the
// normalized spiral radius.
const Sigma = 1.0 / 3.0

// GoldenAngle is pi*(3-sqrt(5)), about 137.5 degrees.
var GoldenAngle = math.Pi * (3 - math.Sqrt(5))

// GaussianDensity returns the Gaussian probability density with standard
// deviation Sigma at x: exp(-x²/(2σ²)) / (σ√(2π)).
//
// The density is not normalized over the taps; the spiral divides by the
// weight sum instead.
func GaussianDensity(x float64) float64 {
	return math.Exp(-(x*x)/(2*Sigma*Sigma)) / (Sigma * math.Sqrt(2*math.Pi))
}
