package mathx

import (
	"math"

	"github.com/wippyai/native-host/errors"
)

func requireSameLength(a, b []float64) error {
	if len(a) != len(b) {
		return errors.Validation(errors.PhaseMath, "vector lengths differ: %d vs %d", len(a), len(b))
	}
	return nil
}

// VecAdd returns the element-wise sum of a and b.
func VecAdd(a, b []float64) ([]float64, error) {
	if err := requireSameLength(a, b); err != nil {
		return nil, err
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out, nil
}

// VecSub returns the element-wise difference a - b.
func VecSub(a, b []float64) ([]float64, error) {
	if err := requireSameLength(a, b); err != nil {
		return nil, err
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out, nil
}

// VecMul returns the element-wise product of a and b.
func VecMul(a, b []float64) ([]float64, error) {
	if err := requireSameLength(a, b); err != nil {
		return nil, err
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] * b[i]
	}
	return out, nil
}

// VecDiv returns the element-wise quotient a / b. Division by a zero
// element follows IEEE semantics and produces Inf or NaN.
func VecDiv(a, b []float64) ([]float64, error) {
	if err := requireSameLength(a, b); err != nil {
		return nil, err
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] / b[i]
	}
	return out, nil
}

// VecScale multiplies every element of a by s.
func VecScale(a []float64, s float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] * s
	}
	return out
}

// Dot returns the inner product of a and b.
func Dot(a, b []float64) (float64, error) {
	if err := requireSameLength(a, b); err != nil {
		return 0, err
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum, nil
}

// Cross returns the cross product of two 3-dimensional vectors.
func Cross(a, b []float64) ([]float64, error) {
	if len(a) != 3 || len(b) != 3 {
		return nil, errors.Validation(errors.PhaseMath, "cross product requires 3-dimensional vectors, got %d and %d", len(a), len(b))
	}
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}, nil
}

// Magnitude returns the Euclidean length of a.
func Magnitude(a []float64) float64 {
	var sum float64
	for _, v := range a {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Normalize scales a to unit length. The zero vector cannot be
// normalized.
func Normalize(a []float64) ([]float64, error) {
	mag := Magnitude(a)
	if mag == 0 {
		return nil, errors.Validation(errors.PhaseMath, "cannot normalize zero vector")
	}
	return VecScale(a, 1/mag), nil
}
