package strutil

import (
	"strings"
	"unicode/utf8"
)

// Compare orders a against b, returning -1, 0 or 1. Case-insensitive
// comparison folds with the simple Unicode rules strings.EqualFold
// uses for equality.
func Compare(a, b string, caseSensitive bool) int {
	if caseSensitive {
		return strings.Compare(a, b)
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// Search finds the first occurrence of needle in haystack using the
// Boyer-Moore bad-character rule. An empty needle matches at 0; a miss
// returns -1. With caseSensitive false both strings are lowercased
// before matching, so the returned index refers to the folded byte
// offsets.
func Search(haystack, needle string, caseSensitive bool) int {
	if !caseSensitive {
		haystack = strings.ToLower(haystack)
		needle = strings.ToLower(needle)
	}
	n, m := len(haystack), len(needle)
	if m == 0 {
		return 0
	}
	if m > n {
		return -1
	}

	var badChar [256]int
	for i := range badChar {
		badChar[i] = -1
	}
	for i := 0; i < m; i++ {
		badChar[needle[i]] = i
	}

	shift := 0
	for shift <= n-m {
		j := m - 1
		for j >= 0 && needle[j] == haystack[shift+j] {
			j--
		}
		if j < 0 {
			return shift
		}
		step := j - badChar[haystack[shift+j]]
		if step < 1 {
			step = 1
		}
		shift += step
	}
	return -1
}

// ValidUTF8 reports whether s is well-formed UTF-8.
func ValidUTF8(s string) bool {
	return utf8.ValidString(s)
}

// Replace substitutes occurrences of old with new, all of them or just
// the first. An empty old string returns s unchanged rather than
// interleaving new between every byte.
func Replace(s, old, new string, all bool) string {
	if old == "" {
		return s
	}
	if all {
		return strings.ReplaceAll(s, old, new)
	}
	return strings.Replace(s, old, new, 1)
}
