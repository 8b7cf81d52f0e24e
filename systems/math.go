package systems

import "math"

// floorInt truncates toward negative infinity.
func floorInt(v float32) int {
	return int(math.Floor(float64(v)))
}

// modInt returns positive modulo (Go's % can return negative).
func modInt(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}
