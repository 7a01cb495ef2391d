package strutil

import (
	"encoding/binary"
	"hash/crc32"
	"hash/fnv"
	"math/bits"

	"github.com/wippyai/native-host/errors"
)

// Algorithm names a string hash function.
type Algorithm string

const (
	DJB2    Algorithm = "djb2"
	FNV1a   Algorithm = "fnv1a"
	SDBM    Algorithm = "sdbm"
	CRC32   Algorithm = "crc32"
	Murmur3 Algorithm = "murmur3"
)

// Hash computes the named hash of s. The 32-bit algorithms (crc32,
// murmur3) return their value zero-extended to 64 bits.
func Hash(s string, algo Algorithm) (uint64, error) {
	switch algo {
	case DJB2:
		var h uint64 = 5381
		for i := 0; i < len(s); i++ {
			h = h*33 + uint64(s[i])
		}
		return h, nil
	case FNV1a:
		h := fnv.New64a()
		h.Write([]byte(s))
		return h.Sum64(), nil
	case SDBM:
		var h uint64
		for i := 0; i < len(s); i++ {
			h = uint64(s[i]) + (h << 6) + (h << 16) - h
		}
		return h, nil
	case CRC32:
		return uint64(crc32.ChecksumIEEE([]byte(s))), nil
	case Murmur3:
		return uint64(murmur3Sum32([]byte(s), 0)), nil
	default:
		return 0, errors.Validation(errors.PhaseString, "unknown hash algorithm %q", algo)
	}
}

// murmur3Sum32 is the standard MurmurHash3 x86 32-bit finalization.
func murmur3Sum32(data []byte, seed uint32) uint32 {
	const (
		c1 = 0xcc9e2d51
		c2 = 0x1b873593
	)

	h1 := seed
	n := len(data)

	for len(data) >= 4 {
		k1 := binary.LittleEndian.Uint32(data)
		data = data[4:]

		k1 *= c1
		k1 = bits.RotateLeft32(k1, 15)
		k1 *= c2

		h1 ^= k1
		h1 = bits.RotateLeft32(h1, 13)*5 + 0xe6546b64
	}

	var k1 uint32
	switch len(data) {
	case 3:
		k1 ^= uint32(data[2]) << 16
		fallthrough
	case 2:
		k1 ^= uint32(data[1]) << 8
		fallthrough
	case 1:
		k1 ^= uint32(data[0])
		k1 *= c1
		k1 = bits.RotateLeft32(k1, 15)
		k1 *= c2
		h1 ^= k1
	}

	h1 ^= uint32(n)
	h1 ^= h1 >> 16
	h1 *= 0x85ebca6b
	h1 ^= h1 >> 13
	h1 *= 0xc2b2ae35
	h1 ^= h1 >> 16
	return h1
}
