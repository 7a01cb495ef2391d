// Package strutil holds the string kernels: ordered comparison with an
// optional case fold, Boyer-Moore substring search, a family of string
// hashes (djb2, fnv1a, sdbm, crc32, murmur3), UTF-8 validation and
// replacement.
package strutil
