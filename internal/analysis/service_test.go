package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/govhotline/backend/internal/ai"
	"github.com/govhotline/backend/internal/models"
)

func newTestService(c ai.Completer) *Service {
	return NewService(c, 200*time.Millisecond, zerolog.Nop())
}

// failureModes covers every way the upstream can let us down.
func failureModes() map[string]ai.Completer {
	return map[string]ai.Completer{
		"error":        &ai.MockCompleter{Err: errors.New("connection refused")},
		"unconfigured": &ai.MockCompleter{},
		"rate limited": &ai.MockCompleter{Err: ai.RateLimitError{RetryAfter: time.Second}},
		"empty":        &ai.MockCompleter{Responses: []string{"   "}},
		"timeout": ai.FuncCompleter(func(ctx context.Context, _ ai.CompletionRequest) (string, error) {
			time.Sleep(2 * time.Second)
			return "late", nil
		}),
	}
}

func TestAnalyzeIntentDegradesOnEveryFailure(t *testing.T) {
	content := "小区门口垃圾堆了一周没人清理"
	for name, c := range failureModes() {
		t.Run(name, func(t *testing.T) {
			start := time.Now()
			res, blob := newTestService(c).AnalyzeIntent(context.Background(), content)
			require.Less(t, time.Since(start), time.Second)

			require.Equal(t, []string{"市民反馈"}, res.CoreIssues)
			require.Equal(t, PlaceholderLocation, res.EntityLocation())
			require.Equal(t, DefaultCategory, res.SuggestedCategory)
			require.Equal(t, DefaultDepartment, res.SuggestedDepartment)
			require.Equal(t, models.PriorityMedium, res.Priority)
			require.Equal(t, models.SentimentNeutral, res.Sentiment.Type)
			require.Equal(t, []string{"环境卫生"}, res.Keywords)
			require.Equal(t, content, res.Summary)
			require.NotEmpty(t, res.SolutionSuggestion)
			require.True(t, json.Valid(blob))
		})
	}
}

func TestAnalyzeIntentFallbackSummaryIsAbbreviated(t *testing.T) {
	content := ""
	for i := 0; i < 60; i++ {
		content += "噪"
	}
	res, _ := newTestService(&ai.MockCompleter{}).AnalyzeIntent(context.Background(), content)
	require.Equal(t, 53, len([]rune(res.Summary)))
	require.Contains(t, res.Summary, "...")
}

func TestAnalyzeIntentNonJSONAnswer(t *testing.T) {
	svc := newTestService(&ai.MockCompleter{Responses: []string{"抱歉，我无法回答"}})
	res, _ := svc.AnalyzeIntent(context.Background(), "路灯坏了")
	require.Equal(t, []string{"待分析"}, res.CoreIssues)
	require.Equal(t, "抱歉，我无法回答", res.Summary)
	require.Equal(t, DefaultCategory, res.SuggestedCategory)
}

func TestAnalyzeIntentSendsPromptAndSampling(t *testing.T) {
	mock := &ai.MockCompleter{Responses: []string{`{"suggested_category":"市政设施","priority":"high"}`}}
	res, blob := newTestService(mock).AnalyzeIntent(context.Background(), "路灯坏了")
	require.Equal(t, "市政设施", res.SuggestedCategory)
	require.Equal(t, models.PriorityHigh, res.Priority)
	require.JSONEq(t, `{"suggested_category":"市政设施","priority":"high"}`, string(blob))

	calls := mock.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, OpIntent, calls[0].Operation)
	require.Equal(t, BuildIntentPrompt("路灯坏了"), calls[0].Prompt)
	require.InDelta(t, 0.3, calls[0].Temperature, 1e-6)
	require.InDelta(t, 0.8, calls[0].TopP, 1e-6)
}

func TestGenerateSummary(t *testing.T) {
	svc := newTestService(&ai.MockCompleter{Responses: []string{" 路灯损坏 \n"}})
	require.Equal(t, "路灯损坏", svc.GenerateSummary(context.Background(), "路灯坏了"))

	for name, c := range failureModes() {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, "短文本", newTestService(c).GenerateSummary(context.Background(), "短文本"))
		})
	}
}

func TestGenerateSummaryLongTextFallbacks(t *testing.T) {
	long := strings.Repeat("路", 60)

	empty := newTestService(&ai.MockCompleter{Responses: []string{"  "}})
	require.Equal(t, strings.Repeat("路", 50), empty.GenerateSummary(context.Background(), long))

	failed := newTestService(&ai.MockCompleter{Err: errors.New("connection refused")})
	require.Equal(t, strings.Repeat("路", 50)+"...", failed.GenerateSummary(context.Background(), long))
}

func TestExtractKeywords(t *testing.T) {
	svc := newTestService(&ai.MockCompleter{Responses: []string{"路灯，损坏、夜间,安全,照明,多余"}})
	require.Equal(t, []string{"路灯", "损坏", "夜间", "安全", "照明"}, svc.ExtractKeywords(context.Background(), "x"))

	for name, c := range failureModes() {
		t.Run(name, func(t *testing.T) {
			got := newTestService(c).ExtractKeywords(context.Background(), "施工噪音")
			require.Equal(t, []string{"噪音扰民", "工程建设"}, got)
		})
	}
}

func TestGenerateSolution(t *testing.T) {
	svc := newTestService(&ai.MockCompleter{Responses: []string{"尽快维修"}})
	require.Equal(t, "尽快维修", svc.GenerateSolution(context.Background(), "路灯坏了", "市政设施"))

	empty := newTestService(&ai.MockCompleter{Responses: []string{""}})
	require.Equal(t, pendingSolution, empty.GenerateSolution(context.Background(), "x", "市政设施"))

	failing := newTestService(&ai.MockCompleter{Err: errors.New("boom")})
	require.Equal(t, solutionTemplates["环境卫生"], failing.GenerateSolution(context.Background(), "x", "环境卫生"))
	require.Equal(t, genericSolution, failing.GenerateSolution(context.Background(), "x", "物业管理"))
}

func TestNarrateAlerts(t *testing.T) {
	quiet := newTestService(&ai.MockCompleter{Responses: []string{"unused"}})
	require.Equal(t, quietAlertNarrative, quiet.NarrateAlerts(context.Background(), Trends{}))

	trends := Trends{Alerts: []Alert{{Description: "甲"}, {Description: "乙"}}}
	failing := newTestService(&ai.MockCompleter{})
	require.Equal(t, "甲；乙", failing.NarrateAlerts(context.Background(), trends))

	ok := newTestService(&ai.MockCompleter{Responses: []string{"简报"}})
	require.Equal(t, "简报", ok.NarrateAlerts(context.Background(), trends))
}

func TestProbeReportsUpstreamError(t *testing.T) {
	require.ErrorIs(t, newTestService(&ai.MockCompleter{}).Probe(context.Background()), ai.ErrNotConfigured)
	require.NoError(t, newTestService(&ai.MockCompleter{Responses: []string{"连接正常"}}).Probe(context.Background()))
}

type mapCache struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mapCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.values[key] = value
	return nil
}

func TestConnectionCheckBypassesCache(t *testing.T) {
	var mu sync.Mutex
	up := true
	upstream := ai.FuncCompleter(func(ctx context.Context, _ ai.CompletionRequest) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if !up {
			return "", errors.New("connection refused")
		}
		return "连接正常", nil
	})
	svc := newTestService(ai.CachedCompleter{Next: upstream, Cache: &mapCache{}, TTL: time.Minute, Logger: zerolog.Nop()})

	require.NoError(t, svc.Probe(context.Background()))
	mu.Lock()
	up = false
	mu.Unlock()
	require.Error(t, svc.Probe(context.Background()))
}

func TestCallerCancellationDegrades(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, _ := newTestService(&ai.MockCompleter{Responses: []string{`{"summary":"x"}`}}).AnalyzeIntent(ctx, "垃圾")
	require.Equal(t, []string{"市民反馈"}, res.CoreIssues)
}
