package mathx

import (
	"math"
)

// FastSqrt computes the square root through the hardware instruction.
// Negative inputs return NaN rather than an error.
func FastSqrt(x float64) float64 {
	if x < 0 {
		return math.NaN()
	}
	return math.Sqrt(x)
}

// FastInvSqrt computes 1/sqrt(x) with the Quake III bit trick and two
// Newton refinement steps. Inputs at or below zero return +Inf. The
// result carries float32 precision; callers wanting full accuracy
// should use 1/math.Sqrt directly.
func FastInvSqrt(x float32) float32 {
	if x <= 0 {
		return float32(math.Inf(1))
	}

	x2 := x * 0.5
	i := math.Float32bits(x)
	i = 0x5f3759df - (i >> 1)
	y := math.Float32frombits(i)
	y = y * (1.5 - x2*y*y)
	y = y * (1.5 - x2*y*y)
	return y
}
