package mathx

import (
	"math"
	"math/rand/v2"

	"github.com/wippyai/native-host/errors"
)

// Distribution selects how Random draws its samples.
type Distribution string

const (
	Uniform     Distribution = "uniform"     // a=min, b=max
	Normal      Distribution = "normal"      // a=mean, b=stddev
	Exponential Distribution = "exponential" // a=lambda, b unused
)

// Random draws count samples from the given distribution. The meaning
// of a and b depends on the distribution, documented on each constant.
func Random(count int, dist Distribution, a, b float64) ([]float64, error) {
	if count <= 0 {
		return nil, errors.Validation(errors.PhaseMath, "sample count %d must be positive", count)
	}

	out := make([]float64, count)
	switch dist {
	case Uniform:
		for i := range out {
			out[i] = a + rand.Float64()*(b-a)
		}
	case Normal:
		for i := range out {
			out[i] = a + rand.NormFloat64()*b
		}
	case Exponential:
		if a <= 0 {
			return nil, errors.Validation(errors.PhaseMath, "exponential rate %f must be positive", a)
		}
		for i := range out {
			out[i] = rand.ExpFloat64() / a
		}
	default:
		return nil, errors.Validation(errors.PhaseMath, "unknown distribution %q", dist)
	}
	return out, nil
}

// RandomInt returns a uniformly distributed integer in [min, max].
func RandomInt(min, max int64) (int64, error) {
	if min > max {
		return 0, errors.Validation(errors.PhaseMath, "empty range [%d, %d]", min, max)
	}
	if min == math.MinInt64 && max == math.MaxInt64 {
		return int64(rand.Uint64()), nil
	}
	return min + rand.Int64N(max-min+1), nil
}
