package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashKeySeparatesParts(t *testing.T) {
	require.Equal(t, HashKey("a", "b"), HashKey("a", "b"))
	require.NotEqual(t, HashKey("ab", "c"), HashKey("a", "bc"))
	require.Len(t, HashKey("x"), 16)
}

func TestTruncateRunesCountsCharacters(t *testing.T) {
	require.Equal(t, "小区门", TruncateRunes("小区门口垃圾", 3))
	require.Equal(t, "abc", TruncateRunes("abc", 10))
	require.Equal(t, "", TruncateRunes("abc", 0))
}

func TestAbbreviate(t *testing.T) {
	require.Equal(t, "短文本", Abbreviate("短文本", 50))
	require.Equal(t, "ab...", Abbreviate("abc", 2))
}

func TestRound2(t *testing.T) {
	require.Equal(t, 0.33, Round2(1.0/3.0))
	require.Equal(t, 66.67, Round2(200.0/3.0))
}
