package mathx

import (
	"math/bits"
)

// Bitwise helpers over 32-bit words. Shift and rotate counts are taken
// modulo 32, matching the hardware behavior math/bits encodes.

func And(a, b uint32) uint32 { return a & b }
func Or(a, b uint32) uint32  { return a | b }
func Xor(a, b uint32) uint32 { return a ^ b }
func Not(a uint32) uint32    { return ^a }

func Shl(a uint32, n uint) uint32 { return a << (n % 32) }
func Shr(a uint32, n uint) uint32 { return a >> (n % 32) }

func Rotl(a uint32, n int) uint32 { return bits.RotateLeft32(a, n) }
func Rotr(a uint32, n int) uint32 { return bits.RotateLeft32(a, -n) }

// Popcount returns the number of set bits in a.
func Popcount(a uint32) int { return bits.OnesCount32(a) }

// Clz returns the number of leading zero bits; 32 for a == 0.
func Clz(a uint32) int { return bits.LeadingZeros32(a) }

// Ctz returns the number of trailing zero bits; 32 for a == 0.
func Ctz(a uint32) int { return bits.TrailingZeros32(a) }
