package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchCategoriesDictionaryOrder(t *testing.T) {
	require.Equal(t, []string{"环境卫生", "市政设施"}, MatchCategories("路灯坏了，旁边还有垃圾"))
	require.Empty(t, MatchCategories("今天天气很好"))
}

func TestMatchCategoriesKeepsDuplicates(t *testing.T) {
	require.Equal(t, []string{"市政设施", "市政设施"}, MatchCategories("道路上的路灯"))
}

func TestFallbackKeywords(t *testing.T) {
	require.Equal(t, []string{DefaultCategory}, FallbackKeywords("随便说说"))

	all := "垃圾 路灯 噪音 停车 物业 道路 绿化 施工"
	require.Equal(t, []string{"环境卫生", "市政设施", "噪音扰民", "交通出行", "物业管理"}, FallbackKeywords(all))
}

func TestSplitKeywords(t *testing.T) {
	require.Equal(t, []string{"路灯", "损坏", "夜间"}, splitKeywords(" 路灯，损坏、夜间 ,"))
	require.Empty(t, splitKeywords(" , "))
}
