package utils

import (
	"fmt"
	"hash/fnv"
)

// HashKey folds the parts into a 64-bit FNV-1a digest rendered as hex.
// Parts are separated so that ("ab","c") and ("a","bc") differ.
func HashKey(parts ...string) string {
	h := fnv.New64a()
	for i, p := range parts {
		if i > 0 {
			_, _ = h.Write([]byte{0})
		}
		_, _ = h.Write([]byte(p))
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
