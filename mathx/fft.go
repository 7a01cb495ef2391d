package mathx

import (
	"math"
	"math/bits"
)

// FFT computes the discrete Fourier transform of in with the recursive
// Cooley-Tukey algorithm. Inputs whose length is not a power of two are
// zero-padded up to the next one, so the result may be longer than the
// input. An empty input yields an empty result.
func FFT(in []complex128) []complex128 {
	if len(in) == 0 {
		return nil
	}
	n := nextPowerOfTwo(len(in))
	buf := make([]complex128, n)
	copy(buf, in)
	fft(buf)
	return buf
}

// IFFT inverts FFT, returning a slice the same length as its input.
func IFFT(in []complex128) []complex128 {
	if len(in) == 0 {
		return nil
	}
	n := nextPowerOfTwo(len(in))
	buf := make([]complex128, n)
	for i, v := range in {
		buf[i] = complex(imag(v), real(v))
	}
	fft(buf)
	scale := 1 / float64(n)
	for i, v := range buf {
		buf[i] = complex(imag(v)*scale, real(v)*scale)
	}
	return buf
}

func nextPowerOfTwo(n int) int {
	if n&(n-1) == 0 {
		return n
	}
	return 1 << bits.Len(uint(n))
}

func fft(a []complex128) {
	n := len(a)
	if n <= 1 {
		return
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = a[2*i]
		odd[i] = a[2*i+1]
	}
	fft(even)
	fft(odd)

	for k := 0; k < n/2; k++ {
		angle := -2 * math.Pi * float64(k) / float64(n)
		t := complex(math.Cos(angle), math.Sin(angle)) * odd[k]
		a[k] = even[k] + t
		a[k+n/2] = even[k] - t
	}
}
