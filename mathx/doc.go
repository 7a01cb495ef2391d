// Package mathx collects the numeric kernels the host exposes: fast
// square roots, vector arithmetic, 32-bit bitwise helpers, random
// sampling and a Cooley-Tukey FFT. Functions validate shapes and
// ranges; numeric edge cases follow IEEE conventions (NaN for the
// square root of a negative, +Inf for the inverse square root of a
// non-positive).
package mathx
