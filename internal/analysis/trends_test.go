package analysis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func repeat(n int, in TrendInput) []TrendInput {
	out := make([]TrendInput, n)
	for i := range out {
		out[i] = in
	}
	return out
}

func TestAnalyzeTrendsThresholds(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	trends := AnalyzeTrends(repeat(10, TrendInput{Category: "环境卫生"}), now)
	require.Equal(t, 10, trends.TotalAnalyzed)
	require.Equal(t, 10, trends.LocationStatistics.Get(UnknownLocation))
	// ten unknown-location rows are a location concentration, but ten of one category are not a surge
	require.Len(t, trends.Alerts, 1)
	require.Equal(t, AlertLocationConcentration, trends.Alerts[0].Type)

	trends = AnalyzeTrends(repeat(11, TrendInput{Category: "环境卫生", LocationDistrict: "东城"}), now)
	require.Equal(t, AlertCategorySurge, trends.Alerts[0].Type)
	require.Equal(t, AlertLevelMedium, trends.Alerts[0].Level)
	require.Equal(t, now, trends.Alerts[0].CreatedAt)

	trends = AnalyzeTrends(repeat(21, TrendInput{Category: "环境卫生", LocationDistrict: "东城"}), now)
	require.Equal(t, AlertLevelHigh, trends.Alerts[0].Level)
	require.Equal(t, "近期环境卫生类工单达到21件，建议重点关注", trends.Alerts[0].Description)
}

func TestAnalyzeTrendsLocationBoundary(t *testing.T) {
	batch := append(repeat(5, TrendInput{Category: "a", LocationDistrict: "西城"}),
		repeat(6, TrendInput{Category: "b", LocationDistrict: "东城"})...)
	trends := AnalyzeTrends(batch, time.Now())
	require.Len(t, trends.Alerts, 1)
	require.Equal(t, "东城区域问题集中", trends.Alerts[0].Title)
	require.Equal(t, "东城", trends.Alerts[0].Data["location"])
	require.Equal(t, 6, trends.Alerts[0].Data["count"])
}

func TestAnalyzeTrendsAlertOrder(t *testing.T) {
	var batch []TrendInput
	batch = append(batch, repeat(12, TrendInput{Category: "噪音扰民", LocationDistrict: "南区"})...)
	batch = append(batch, repeat(12, TrendInput{Category: "环境卫生", LocationDistrict: "北区"})...)
	trends := AnalyzeTrends(batch, time.Now())

	require.Len(t, trends.Alerts, 4)
	require.Equal(t, "噪音扰民", trends.Alerts[0].Data["category"])
	require.Equal(t, "环境卫生", trends.Alerts[1].Data["category"])
	require.Equal(t, "南区", trends.Alerts[2].Data["location"])
	require.Equal(t, "北区", trends.Alerts[3].Data["location"])
}

func TestAnalyzeTrendsEmptyBatch(t *testing.T) {
	trends := AnalyzeTrends(nil, time.Now())
	require.Zero(t, trends.TotalAnalyzed)
	require.NotNil(t, trends.Alerts)
	require.Empty(t, trends.Alerts)
	require.Zero(t, trends.CategoryStatistics.Len())
}

func TestCounterPreservesInsertionOrder(t *testing.T) {
	c := NewCounter("pending", "closed")
	c.Inc("z")
	c.Inc("a")
	c.Inc("z")

	b, err := json.Marshal(c)
	require.NoError(t, err)
	require.Equal(t, `{"pending":0,"closed":0,"z":2,"a":1}`, string(b))
	require.Equal(t, 3, c.Total())

	y, err := yaml.Marshal(c)
	require.NoError(t, err)
	require.Equal(t, "pending: 0\nclosed: 0\nz: 2\na: 1\n", string(y))
}
