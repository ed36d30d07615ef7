package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/govhotline/backend/internal/models"
	"github.com/govhotline/backend/internal/utils"
)

var errNoJSONObject = errors.New("no JSON object found in model output")

const fallbackSummaryLength = 100

// extractJSONSpan returns the text from the first '{' to the last '}' inclusive.
func extractJSONSpan(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// DecodeObject decodes the outermost JSON object embedded in raw model output.
func DecodeObject(raw string) (map[string]any, error) {
	span, ok := extractJSONSpan(raw)
	if !ok {
		return nil, errNoJSONObject
	}
	dec := json.NewDecoder(strings.NewReader(span))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode model output: trailing data after object")
	}
	return obj, nil
}

// ParseAnalysis turns raw model output into a Result. It never fails: when the
// output holds no decodable object the synthesized fallback is returned together
// with the reason, which is diagnostic only. The returned blob is the JSON kept
// for audit: the model's own object when it decoded, the fallback otherwise.
func ParseAnalysis(raw string) (Result, json.RawMessage, error) {
	obj, err := DecodeObject(raw)
	if err != nil {
		res := unparsableResult(raw)
		blob, _ := json.Marshal(res)
		return res, blob, err
	}
	span, _ := extractJSONSpan(raw)
	return resultFromObject(obj), compactJSON(span), nil
}

// unparsableResult is what we keep when the model answered with something that
// is not JSON: the raw text survives as the summary.
func unparsableResult(raw string) Result {
	return Result{
		CoreIssues:          []string{"待分析"},
		Entities:            Entities{},
		Sentiment:           defaultSentiment(),
		Summary:             utils.TruncateRunes(raw, fallbackSummaryLength),
		SuggestedCategory:   DefaultCategory,
		SuggestedDepartment: DefaultDepartment,
		Priority:            models.PriorityMedium,
	}
}

func resultFromObject(obj map[string]any) Result {
	res := Result{
		CoreIssues:          getStringSlice(obj, "core_issues"),
		Summary:             strings.TrimSpace(getString(obj, "summary")),
		SuggestedCategory:   strings.TrimSpace(getString(obj, "suggested_category")),
		SuggestedDepartment: strings.TrimSpace(getString(obj, "suggested_department")),
		Priority:            models.PriorityOrDefault(getString(obj, "priority")),
		Sentiment:           defaultSentiment(),
	}
	if res.SuggestedCategory == "" {
		res.SuggestedCategory = DefaultCategory
	}
	if res.SuggestedDepartment == "" {
		res.SuggestedDepartment = DefaultDepartment
	}

	if ent := getMap(obj, "entities"); ent != nil {
		if v, ok := ent["location"].(string); ok {
			res.Entities.Location = stringPtr(strings.TrimSpace(v))
		}
		if v, ok := ent["time"].(string); ok {
			res.Entities.Time = stringPtr(strings.TrimSpace(v))
		}
		res.Entities.Departments = getStringSlice(ent, "departments")
	}

	if sent := getMap(obj, "sentiment"); sent != nil {
		res.Sentiment.Type = models.SentimentOrDefault(getString(sent, "type"))
		res.Sentiment.Urgency = models.UrgencyOrDefault(getString(sent, "urgency"))
		if f, ok := getFloat(sent, "intensity"); ok {
			res.Sentiment.Intensity = clamp01(f)
		}
		res.Sentiment.Keywords = getStringSlice(sent, "keywords")
	} else if s := getString(obj, "sentiment"); s != "" {
		// some answers flatten sentiment to a bare label
		res.Sentiment.Type = models.SentimentOrDefault(s)
	}

	if kws := getStringSlice(obj, "keywords"); len(kws) > 0 {
		res.Keywords = kws
	}
	return res
}

func compactJSON(span string) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(span)); err != nil {
		return json.RawMessage(span)
	}
	return buf.Bytes()
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func getMap(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func getString(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func getFloat(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// getStringSlice accepts a JSON array of strings or a single string; it never returns nil.
func getStringSlice(m map[string]any, key string) []string {
	out := []string{}
	switch t := m[key].(type) {
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	case string:
		if s := strings.TrimSpace(t); s != "" {
			out = append(out, s)
		}
	}
	return out
}
