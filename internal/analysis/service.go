package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/govhotline/backend/internal/ai"
	"github.com/govhotline/backend/internal/metrics"
	"github.com/govhotline/backend/internal/models"
	"github.com/govhotline/backend/internal/utils"
)

const (
	OpIntent   = "analyze_intent"
	OpSummary  = "generate_summary"
	OpKeywords = "extract_keywords"
	OpSolution = "generate_solution"
	OpNarrate  = "narrate_alerts"
	OpProbe    = "probe"

	defaultTimeout       = 20 * time.Second
	fallbackSummaryChars = 50

	receivedMessage     = "我们已收到您的反馈，将尽快为您处理。"
	pendingSolution     = "我们将尽快为您处理，请耐心等待。"
	genericSolution     = "我们已收到您的反馈，将尽快安排处理。"
	quietAlertNarrative = "近期未发现异常工单趋势"
)

var solutionTemplates = map[string]string{
	"环境卫生": "建议：1. 联系环卫部门加强清理频次 2. 设置垃圾分类点 3. 预计3个工作日内处理完毕",
	"市政设施": "建议：1. 派遣维修人员现场查看 2. 制定维修方案 3. 预计5个工作日内修复",
	"噪音扰民": "建议：1. 核实施工许可证 2. 限制施工时间 3. 加强现场监管",
	"交通出行": "建议：1. 优化交通组织方案 2. 增设交通标识 3. 加强现场疏导",
}

// Service is the analysis facade. Every operation degrades to a rule-based
// answer when the upstream call fails, so none of them return an error.
type Service struct {
	completer ai.Completer
	timeout   time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(completer ai.Completer, timeout time.Duration, logger zerolog.Logger) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{
		completer: completer,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

// complete runs one upstream call bounded by the service timeout. The deadline
// holds even for a completer that ignores its context.
func (s *Service) complete(ctx context.Context, op, prompt string, temperature, topP float32) (string, error) {
	return s.send(ctx, ai.CompletionRequest{Operation: op, Prompt: prompt, Temperature: temperature, TopP: topP})
}

func (s *Service) send(ctx context.Context, req ai.CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type answer struct {
		text string
		err  error
	}
	done := make(chan answer, 1)
	go func() {
		text, err := s.completer.Complete(ctx, req)
		done <- answer{text: text, err: err}
	}()

	select {
	case a := <-done:
		if a.err != nil {
			return "", a.err
		}
		if strings.TrimSpace(a.text) == "" {
			return "", ai.ErrEmptyResponse
		}
		return a.text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Service) degraded(op string, err error) {
	metrics.AIRequests.WithLabelValues(op, metrics.OutcomeFallback).Inc()
	ev := s.logger.Warn().Str("operation", op).Err(err)
	var rl ai.RateLimitError
	if errors.As(err, &rl) {
		ev = ev.Dur("retry_after", rl.RetryAfter)
	}
	ev.Msg("upstream analysis degraded to fallback")
}

func (s *Service) succeeded(op string) {
	metrics.AIRequests.WithLabelValues(op, metrics.OutcomeOK).Inc()
}

// AnalyzeIntent classifies and summarizes a complaint. The second value is the
// JSON blob kept with the ticket for audit.
func (s *Service) AnalyzeIntent(ctx context.Context, content string) (Result, json.RawMessage) {
	text, err := s.complete(ctx, OpIntent, BuildIntentPrompt(content), 0.3, 0.8)
	if err != nil {
		s.degraded(OpIntent, err)
		res := DefaultResult(content)
		blob, _ := json.Marshal(res)
		return res, blob
	}

	res, blob, perr := ParseAnalysis(text)
	if perr != nil {
		metrics.AIRequests.WithLabelValues(OpIntent, metrics.OutcomeFallback).Inc()
		s.logger.Warn().
			Str("operation", OpIntent).
			Err(perr).
			Str("raw", utils.TruncateRunes(text, 500)).
			Msg("model output not parsable, using synthesized analysis")
		return res, blob
	}
	s.succeeded(OpIntent)
	return res, blob
}

// DefaultResult is the analysis used when the upstream model is unreachable.
func DefaultResult(content string) Result {
	keywords := FallbackKeywords(content)
	return Result{
		CoreIssues: []string{"市民反馈"},
		Entities: Entities{
			Location:    stringPtr(PlaceholderLocation),
			Time:        stringPtr("近期"),
			Departments: []string{},
		},
		Sentiment: Sentiment{
			Type:      models.SentimentNeutral,
			Intensity: DefaultIntensity,
			Urgency:   models.UrgencyMedium,
			Keywords:  keywords,
		},
		Summary:             utils.Abbreviate(content, fallbackSummaryChars),
		SuggestedCategory:   DefaultCategory,
		SuggestedDepartment: DefaultDepartment,
		Priority:            models.PriorityMedium,
		Keywords:            keywords,
		SolutionSuggestion:  receivedMessage,
	}
}

func (s *Service) GenerateSummary(ctx context.Context, content string) string {
	text, err := s.complete(ctx, OpSummary, buildSummaryPrompt(content), 0.3, 0)
	if errors.Is(err, ai.ErrEmptyResponse) {
		s.degraded(OpSummary, err)
		return utils.TruncateRunes(content, fallbackSummaryChars)
	}
	if err != nil {
		s.degraded(OpSummary, err)
		return utils.Abbreviate(content, fallbackSummaryChars)
	}
	s.succeeded(OpSummary)
	return strings.TrimSpace(text)
}

// ExtractKeywords returns at most five keywords for content.
func (s *Service) ExtractKeywords(ctx context.Context, content string) []string {
	text, err := s.complete(ctx, OpKeywords, buildKeywordsPrompt(content), 0.2, 0)
	if err != nil {
		s.degraded(OpKeywords, err)
		return FallbackKeywords(content)
	}
	keywords := splitKeywords(text)
	if len(keywords) == 0 {
		s.degraded(OpKeywords, errors.New("no keywords in model output"))
		return FallbackKeywords(content)
	}
	s.succeeded(OpKeywords)
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}

func splitKeywords(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '，' || r == '、' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func (s *Service) GenerateSolution(ctx context.Context, content, category string) string {
	text, err := s.complete(ctx, OpSolution, buildSolutionPrompt(content, category), 0.5, 0)
	if err != nil {
		if errors.Is(err, ai.ErrEmptyResponse) {
			s.degraded(OpSolution, err)
			return pendingSolution
		}
		s.degraded(OpSolution, err)
		return SolutionTemplate(category)
	}
	s.succeeded(OpSolution)
	return strings.TrimSpace(text)
}

// SolutionTemplate is the canned advice for a category.
func SolutionTemplate(category string) string {
	if t, ok := solutionTemplates[category]; ok {
		return t
	}
	return genericSolution
}

// FindSimilar is rule-based and never calls upstream.
func (s *Service) FindSimilar(content string, candidates []Candidate) []Similar {
	return FindSimilar(content, candidates)
}

func (s *Service) AnalyzeTrends(batch []TrendInput) Trends {
	return AnalyzeTrends(batch, s.now())
}

// NarrateAlerts writes a short duty briefing for the alerts in trends.
func (s *Service) NarrateAlerts(ctx context.Context, trends Trends) string {
	if len(trends.Alerts) == 0 {
		return quietAlertNarrative
	}
	text, err := s.complete(ctx, OpNarrate, buildAlertPrompt(trends), 0.3, 0)
	if err != nil {
		s.degraded(OpNarrate, err)
		parts := make([]string, 0, len(trends.Alerts))
		for _, a := range trends.Alerts {
			parts = append(parts, a.Description)
		}
		return strings.Join(parts, "；")
	}
	s.succeeded(OpNarrate)
	return strings.TrimSpace(text)
}

// Probe performs one raw upstream call and reports its error.
func (s *Service) Probe(ctx context.Context) error {
	_, err := s.send(ctx, ai.CompletionRequest{
		Operation:   OpProbe,
		Prompt:      "你好，请回复“连接正常”。",
		Temperature: 0.1,
		NoCache:     true,
	})
	return err
}
