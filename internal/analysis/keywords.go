package analysis

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

type keywordRule struct {
	Term     string
	Category string
}

// keywordRules is ordered; matches are reported in this order.
var keywordRules = []keywordRule{
	{Term: "垃圾", Category: "环境卫生"},
	{Term: "路灯", Category: "市政设施"},
	{Term: "噪音", Category: "噪音扰民"},
	{Term: "停车", Category: "交通出行"},
	{Term: "物业", Category: "物业管理"},
	{Term: "道路", Category: "市政设施"},
	{Term: "绿化", Category: "环境卫生"},
	{Term: "施工", Category: "工程建设"},
}

const maxKeywords = 5

// MatchCategories returns the category of every dictionary term found in text,
// in dictionary order. Two terms mapping to the same category yield it twice.
// The result is empty when nothing matches.
func MatchCategories(text string) []string {
	folded := norm.NFKC.String(text)
	var out []string
	for _, rule := range keywordRules {
		if strings.Contains(folded, rule.Term) {
			out = append(out, rule.Category)
		}
	}
	return out
}

// FallbackKeywords is the degraded keyword extractor: dictionary matches capped
// at five, or the default category when nothing matched.
func FallbackKeywords(text string) []string {
	matched := MatchCategories(text)
	if len(matched) == 0 {
		return []string{DefaultCategory}
	}
	if len(matched) > maxKeywords {
		matched = matched[:maxKeywords]
	}
	return matched
}

// keywordSet is the similarity feature set of a text.
func keywordSet(text string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, c := range MatchCategories(text) {
		set[c] = struct{}{}
	}
	return set
}
