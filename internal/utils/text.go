package utils

import "math"

// TruncateRunes returns at most n characters of s, counting runes rather than bytes.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Abbreviate truncates s to n characters and appends "..." when anything was cut.
func Abbreviate(s string, n int) string {
	if len([]rune(s)) > n {
		return TruncateRunes(s, n) + "..."
	}
	return s
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
