// Package noise provides the tileable gradient noise used to decorrelate
// the bloom sampling pattern between neighbouring pixels.
//
// The generator is a periodic simplex variant (psrdnoise): gradients live on
// a skewed triangular lattice and the lattice coordinates are wrapped before
// hashing, so the field repeats exactly over the requested period.
package noise

import "math"

// defaultRotation is the gradient rotation used by Periodic.
const defaultRotation = 1.0

// Hash constants of the permutation polynomial.
const (
	hashModulus = 289.0
	gradStep    = 0.07482
	scale       = 10.9
	falloff     = 0.8
)

// Periodic returns the noise value at (x, y) with periods px and py.
//
// A period <= 0 disables wrapping on that axis. The field tiles exactly when
// px is an integer and py is an even integer. The result lies roughly in
// [-1, 1] and never exceeds 2.5 in magnitude.
func Periodic(x, y, px, py float64) float64 {
	return periodicRotated(x, y, px, py, defaultRotation)
}

// periodicRotated is Periodic with an explicit gradient rotation alpha in
// radians. Changing alpha animates the field without changing its tiling.
func periodicRotated(x, y, px, py, alpha float64) float64 {
	// Transform to the skewed lattice.
	u := x + y*0.5
	v := y
	i0x, i0y := math.Floor(u), math.Floor(v)
	f0x, f0y := u-i0x, v-i0y

	// Pick the simplex the point lies in.
	var o1x, o1y float64
	if f0x >= f0y {
		o1x = 1
	} else {
		o1y = 1
	}

	// Simplex vertices in Cartesian space.
	v0x, v0y := i0x-i0y*0.5, i0y
	v1x, v1y := v0x+o1x-o1y*0.5, v0y+o1y
	v2x, v2y := v0x+0.5, v0y+1

	x0x, x0y := x-v0x, y-v0y
	x1x, x1y := x-v1x, y-v1y
	x2x, x2y := x-v2x, y-v2y

	var iu, iv [3]float64
	if px > 0 || py > 0 {
		xw := [3]float64{v0x, v1x, v2x}
		yw := [3]float64{v0y, v1y, v2y}
		if px > 0 {
			for k := range xw {
				xw[k] = mod(xw[k], px)
			}
		}
		if py > 0 {
			for k := range yw {
				yw[k] = mod(yw[k], py)
			}
		}
		for k := range iu {
			iu[k] = math.Floor(xw[k] + 0.5*yw[k] + 0.5)
			iv[k] = math.Floor(yw[k] + 0.5)
		}
	} else {
		iu = [3]float64{i0x, i0x + o1x, i0x + 1}
		iv = [3]float64{i0y, i0y + o1y, i0y + 1}
	}

	xs := [3][2]float64{{x0x, x0y}, {x1x, x1y}, {x2x, x2y}}

	var n float64
	for k := range 3 {
		h := mod(iu[k], hashModulus)
		h = mod((h*51+2)*h+iv[k], hashModulus)
		h = mod((h*34+10)*h, hashModulus)

		psi := h*gradStep + alpha
		gx, gy := math.Cos(psi), math.Sin(psi)

		dx, dy := xs[k][0], xs[k][1]
		w := falloff - (dx*dx + dy*dy)
		if w <= 0 {
			continue
		}
		w2 := w * w
		n += w2 * w2 * (gx*dx + gy*dy)
	}

	return scale * n
}

// TilingPeriod returns the smallest power of two that is >= max(width, height).
// Non-positive sizes yield 1.
func TilingPeriod(width, height int) float64 {
	m := max(width, height)
	p := 1
	for p < m {
		p <<= 1
	}
	return float64(p)
}

// mod is the floored modulo (result has the sign of y).
func mod(x, y float64) float64 {
	return x - y*math.Floor(x/y)
}
