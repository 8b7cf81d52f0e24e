package sim

import "math"

// normalizeAngle wraps angle to [-pi, pi] with single-step correction.
// Safe for inputs within [-3*pi, 3*pi]; callers pass wrapped headings in
// [0, 2*pi), offset by at most pi/2 for the cosine path.
func normalizeAngle(a float32) float32 {
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// wrapHeading wraps a heading to [0, 2*pi).
func wrapHeading(a float32) float32 {
	const twoPi = 2 * math.Pi
	for a >= twoPi {
		a -= twoPi
	}
	for a < 0 {
		a += twoPi
	}
	return a
}

// mod returns positive modulo in [0, b). Go's % can return negative, and
// adding b to a tiny negative remainder can round back up to exactly b in
// float32, so both ends need a correction.
func mod(a, b float32) float32 {
	m := float32(math.Mod(float64(a), float64(b)))
	if m < 0 {
		m += b
	}
	if m >= b {
		m = 0
	}
	return m
}
