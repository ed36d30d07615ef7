package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/govhotline/backend/internal/analysis"
	"github.com/govhotline/backend/internal/db"
	"github.com/govhotline/backend/internal/models"
	"github.com/govhotline/backend/internal/utils"
)

const (
	uncategorized     = "未分类"
	unassignedDept    = "未分派"
	topLocationCount  = 5
	keywordCloudSize  = 30
	reportKeywordSize = 10
)

var ErrInvalidWindow = errors.New("days must be a positive integer")

// epoch is the earliest window start; no ticket predates it.
var epoch = time.Unix(0, 0).UTC()

// AnalyticsService computes read-only aggregates over a trailing window of tickets.
type AnalyticsService struct {
	Store    *db.Store
	Analysis *analysis.Service
	// Location is the zone daily buckets are cut in; nil means local time.
	Location *time.Location
	Now      func() time.Time
}

func (s *AnalyticsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AnalyticsService) window(ctx context.Context, days int) ([]models.Ticket, error) {
	if days <= 0 {
		return nil, ErrInvalidWindow
	}
	since := s.now().AddDate(0, 0, -days)
	if since.Before(epoch) {
		since = epoch
	}
	return s.Store.ListTickets(ctx, db.TicketFilter{Since: &since})
}

func timeRange(days int) string {
	return fmt.Sprintf("最近%d天", days)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

type Statistics struct {
	TotalTickets          int               `json:"total_tickets"`
	ByCategory            *analysis.Counter `json:"by_category"`
	ByStatus              *analysis.Counter `json:"by_status"`
	ByPriority            *analysis.Counter `json:"by_priority"`
	SentimentDistribution *analysis.Counter `json:"sentiment_distribution"`
}

func (s *AnalyticsService) Statistics(ctx context.Context, days int) (Statistics, error) {
	tickets, err := s.window(ctx, days)
	if err != nil {
		return Statistics{}, err
	}
	st := Statistics{
		TotalTickets:          len(tickets),
		ByCategory:            analysis.NewCounter(),
		ByStatus:              analysis.NewCounter(),
		ByPriority:            analysis.NewCounter(),
		SentimentDistribution: analysis.NewCounter(),
	}
	for _, t := range tickets {
		st.ByCategory.Inc(orDefault(t.Category, uncategorized))
		st.ByStatus.Inc(string(t.Status))
		st.ByPriority.Inc(orDefault(string(t.Priority), string(models.PriorityMedium)))
		st.SentimentDistribution.Inc(orDefault(string(t.Sentiment), string(models.SentimentNeutral)))
	}
	return st, nil
}

func (s *AnalyticsService) trends(ctx context.Context, days int) (analysis.Trends, error) {
	tickets, err := s.window(ctx, days)
	if err != nil {
		return analysis.Trends{}, err
	}
	batch := make([]analysis.TrendInput, 0, len(tickets))
	for _, t := range tickets {
		batch = append(batch, analysis.TrendInput{Category: t.Category, LocationDistrict: t.LocationDistrict})
	}
	return s.Analysis.AnalyzeTrends(batch), nil
}

func (s *AnalyticsService) Alerts(ctx context.Context, days int) ([]analysis.Alert, error) {
	trends, err := s.trends(ctx, days)
	if err != nil {
		return nil, err
	}
	return trends.Alerts, nil
}

type Briefing struct {
	TimeRange     string           `json:"time_range"`
	Alerts        []analysis.Alert `json:"alerts"`
	Narrative     string           `json:"narrative"`
	TotalAnalyzed int              `json:"total_analyzed"`
}

// Briefing is the alert list plus a narrated summary for the duty officer.
func (s *AnalyticsService) Briefing(ctx context.Context, days int) (Briefing, error) {
	trends, err := s.trends(ctx, days)
	if err != nil {
		return Briefing{}, err
	}
	return Briefing{
		TimeRange:     timeRange(days),
		Alerts:        trends.Alerts,
		Narrative:     s.Analysis.NarrateAlerts(ctx, trends),
		TotalAnalyzed: trends.TotalAnalyzed,
	}, nil
}

type CategoryTrends struct {
	TimeRange string `json:"time_range"`
	// DailyData is keyed by YYYY-MM-DD; encoding/json sorts these chronologically.
	DailyData map[string]*analysis.Counter `json:"daily_data"`
	TotalDays int                          `json:"total_days"`
}

func (s *AnalyticsService) CategoryTrends(ctx context.Context, days int) (CategoryTrends, error) {
	tickets, err := s.window(ctx, days)
	if err != nil {
		return CategoryTrends{}, err
	}
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	daily := map[string]*analysis.Counter{}
	for _, t := range tickets {
		day := t.CreatedAt.In(loc).Format("2006-01-02")
		if daily[day] == nil {
			daily[day] = analysis.NewCounter()
		}
		daily[day].Inc(orDefault(t.Category, uncategorized))
	}
	return CategoryTrends{TimeRange: timeRange(days), DailyData: daily, TotalDays: len(daily)}, nil
}

type LocationStat struct {
	Total      int               `json:"total"`
	ByCategory *analysis.Counter `json:"by_category"`
}

// LocationRanking is a district table that marshals in rank order.
type LocationRanking struct {
	names []string
	stats map[string]LocationStat
}

func (r LocationRanking) Names() []string { return append([]string(nil), r.names...) }

func (r LocationRanking) Get(name string) LocationStat { return r.stats[name] }

func (r LocationRanking) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.stats[name])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type LocationTrends struct {
	TimeRange      string                  `json:"time_range"`
	AllLocations   map[string]LocationStat `json:"all_locations"`
	TopLocations   LocationRanking         `json:"top_locations"`
	TotalLocations int                     `json:"total_locations"`
}

func (s *AnalyticsService) LocationTrends(ctx context.Context, days int) (LocationTrends, error) {
	tickets, err := s.window(ctx, days)
	if err != nil {
		return LocationTrends{}, err
	}
	all := map[string]LocationStat{}
	var order []string
	for _, t := range tickets {
		district := strings.TrimSpace(t.LocationDistrict)
		if district == "" {
			continue
		}
		stat, ok := all[district]
		if !ok {
			stat = LocationStat{ByCategory: analysis.NewCounter()}
			order = append(order, district)
		}
		stat.Total++
		stat.ByCategory.Inc(orDefault(t.Category, uncategorized))
		all[district] = stat
	}

	ranked := append([]string(nil), order...)
	sort.SliceStable(ranked, func(i, j int) bool { return all[ranked[i]].Total > all[ranked[j]].Total })
	if len(ranked) > topLocationCount {
		ranked = ranked[:topLocationCount]
	}
	return LocationTrends{
		TimeRange:      timeRange(days),
		AllLocations:   all,
		TopLocations:   LocationRanking{names: ranked, stats: all},
		TotalLocations: len(all),
	}, nil
}

type SentimentSummary struct {
	TimeRange             string            `json:"time_range"`
	SentimentDistribution *analysis.Counter `json:"sentiment_distribution"`
	AverageSentimentScore float64           `json:"average_sentiment_score"`
	SatisfactionRate      float64           `json:"satisfaction_rate"`
	TotalAnalyzed         int               `json:"total_analyzed"`
	NegativeRate          float64           `json:"negative_rate"`
}

func sentimentCounter() *analysis.Counter {
	return analysis.NewCounter(
		string(models.SentimentPositive),
		string(models.SentimentNeutral),
		string(models.SentimentNegative),
	)
}

func (s *AnalyticsService) Sentiment(ctx context.Context, days int) (SentimentSummary, error) {
	tickets, err := s.window(ctx, days)
	if err != nil {
		return SentimentSummary{}, err
	}
	dist := sentimentCounter()
	var scoreSum float64
	var scored int
	for _, t := range tickets {
		dist.Inc(orDefault(string(t.Sentiment), string(models.SentimentNeutral)))
		if t.SentimentScore != 0 {
			scoreSum += t.SentimentScore
			scored++
		}
	}

	avg := analysis.DefaultIntensity
	if scored > 0 {
		avg = scoreSum / float64(scored)
	}
	total := dist.Total()
	out := SentimentSummary{
		TimeRange:             timeRange(days),
		SentimentDistribution: dist,
		AverageSentimentScore: utils.Round2(avg),
		TotalAnalyzed:         total,
	}
	if total > 0 {
		out.SatisfactionRate = percent(dist.Get(string(models.SentimentPositive)), total)
		out.NegativeRate = percent(dist.Get(string(models.SentimentNegative)), total)
	}
	return out, nil
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return utils.Round2(float64(part) / float64(total) * 100)
}

type DepartmentStat struct {
	Total           int     `json:"total"`
	Resolved        int     `json:"resolved"`
	AvgResponseTime float64 `json:"avg_response_time"`
	ResolutionRate  float64 `json:"resolution_rate"`
}

type DepartmentPerformance struct {
	TimeRange   string                    `json:"time_range"`
	Departments map[string]DepartmentStat `json:"departments"`
}

func (s *AnalyticsService) DepartmentPerformance(ctx context.Context, days int) (DepartmentPerformance, error) {
	tickets, err := s.window(ctx, days)
	if err != nil {
		return DepartmentPerformance{}, err
	}
	stats := map[string]DepartmentStat{}
	sums := map[string]int64{}
	counts := map[string]int{}
	for _, t := range tickets {
		dept := orDefault(t.Department, unassignedDept)
		st := stats[dept]
		st.Total++
		if t.Status == models.StatusResolved {
			st.Resolved++
		}
		stats[dept] = st
		if t.ResponseTime != nil && *t.ResponseTime != 0 {
			sums[dept] += *t.ResponseTime
			counts[dept]++
		}
	}
	for dept, st := range stats {
		if counts[dept] > 0 {
			st.AvgResponseTime = utils.Round2(float64(sums[dept]) / float64(counts[dept]))
		}
		st.ResolutionRate = percent(st.Resolved, st.Total)
		stats[dept] = st
	}
	return DepartmentPerformance{TimeRange: timeRange(days), Departments: stats}, nil
}

type KeywordCount struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

type KeywordCloud struct {
	TimeRange     string         `json:"time_range"`
	Keywords      []KeywordCount `json:"keywords"`
	TotalKeywords int            `json:"total_keywords"`
}

// keywordCounts tallies the comma-joined keyword column, most frequent first;
// ties keep first-seen order.
func keywordCounts(tickets []models.Ticket) *analysis.Counter {
	c := analysis.NewCounter()
	for _, t := range tickets {
		for _, kw := range strings.Split(t.Keywords, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				c.Inc(kw)
			}
		}
	}
	return c
}

func topKeywords(c *analysis.Counter, n int) []KeywordCount {
	keys := c.Keys()
	sort.SliceStable(keys, func(i, j int) bool { return c.Get(keys[i]) > c.Get(keys[j]) })
	if len(keys) > n {
		keys = keys[:n]
	}
	out := make([]KeywordCount, 0, len(keys))
	for _, k := range keys {
		out = append(out, KeywordCount{Name: k, Value: c.Get(k)})
	}
	return out
}

func (s *AnalyticsService) KeywordCloud(ctx context.Context, days int) (KeywordCloud, error) {
	tickets, err := s.window(ctx, days)
	if err != nil {
		return KeywordCloud{}, err
	}
	counts := keywordCounts(tickets)
	return KeywordCloud{
		TimeRange:     timeRange(days),
		Keywords:      topKeywords(counts, keywordCloudSize),
		TotalKeywords: counts.Len(),
	}, nil
}

type ReportSummary struct {
	TotalTickets int `json:"total_tickets" yaml:"total_tickets"`
	Resolved     int `json:"resolved" yaml:"resolved"`
	Pending      int `json:"pending" yaml:"pending"`
	Processing   int `json:"processing" yaml:"processing"`
}

type Report struct {
	ReportDate            string            `json:"report_date" yaml:"report_date"`
	TimeRange             string            `json:"time_range" yaml:"time_range"`
	Summary               ReportSummary     `json:"summary" yaml:"summary"`
	CategoryDistribution  *analysis.Counter `json:"category_distribution" yaml:"category_distribution"`
	SentimentAnalysis     *analysis.Counter `json:"sentiment_analysis" yaml:"sentiment_analysis"`
	TopKeywords           []KeywordCount    `json:"top_keywords" yaml:"top_keywords"`
	AverageResponseTimeMS float64           `json:"average_response_time_ms" yaml:"average_response_time_ms"`
}

func (s *AnalyticsService) Report(ctx context.Context, days int) (Report, error) {
	tickets, err := s.window(ctx, days)
	if err != nil {
		return Report{}, err
	}
	r := Report{
		ReportDate:           s.now().Format(time.RFC3339),
		TimeRange:            timeRange(days),
		Summary:              ReportSummary{TotalTickets: len(tickets)},
		CategoryDistribution: analysis.NewCounter(),
		SentimentAnalysis:    sentimentCounter(),
		TopKeywords:          topKeywords(keywordCounts(tickets), reportKeywordSize),
	}
	var rtSum int64
	var rtCount int
	for _, t := range tickets {
		switch t.Status {
		case models.StatusResolved:
			r.Summary.Resolved++
		case models.StatusPending:
			r.Summary.Pending++
		case models.StatusProcessing:
			r.Summary.Processing++
		}
		r.CategoryDistribution.Inc(orDefault(t.Category, analysis.DefaultCategory))
		r.SentimentAnalysis.Inc(orDefault(string(t.Sentiment), string(models.SentimentNeutral)))
		if t.ResponseTime != nil && *t.ResponseTime != 0 {
			rtSum += *t.ResponseTime
			rtCount++
		}
	}
	if rtCount > 0 {
		r.AverageResponseTimeMS = utils.Round2(float64(rtSum) / float64(rtCount))
	}
	return r, nil
}
