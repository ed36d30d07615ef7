package analysis

import (
	"fmt"
	"strings"
	"time"
)

const (
	AlertCategorySurge         = "category_surge"
	AlertLocationConcentration = "location_concentration"
	AlertLevelHigh             = "high"
	AlertLevelMedium           = "medium"

	categorySurgeThreshold     = 10
	categorySurgeHighThreshold = 20
	locationThreshold          = 5

	UnknownLocation = "未知"
)

// TrendInput is the slice of a ticket the analyzer looks at.
type TrendInput struct {
	Category         string
	LocationDistrict string
}

type Alert struct {
	Type        string         `json:"alert_type"`
	Level       string         `json:"level"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data"`
	CreatedAt   time.Time      `json:"created_at"`
}

type Trends struct {
	CategoryStatistics *Counter `json:"category_statistics"`
	LocationStatistics *Counter `json:"location_statistics"`
	Alerts             []Alert  `json:"alerts"`
	TotalAnalyzed      int      `json:"total_analyzed"`
}

// AnalyzeTrends tallies the batch by category and by district and raises an alert
// for every category above ten tickets and every district above five. Alerts
// follow first-seen order: all category alerts, then all location alerts.
func AnalyzeTrends(batch []TrendInput, now time.Time) Trends {
	categories := NewCounter()
	locations := NewCounter()
	for _, t := range batch {
		category := strings.TrimSpace(t.Category)
		if category == "" {
			category = DefaultCategory
		}
		location := strings.TrimSpace(t.LocationDistrict)
		if location == "" {
			location = UnknownLocation
		}
		categories.Inc(category)
		locations.Inc(location)
	}

	alerts := []Alert{}
	for _, category := range categories.Keys() {
		count := categories.Get(category)
		if count <= categorySurgeThreshold {
			continue
		}
		level := AlertLevelMedium
		if count > categorySurgeHighThreshold {
			level = AlertLevelHigh
		}
		alerts = append(alerts, Alert{
			Type:        AlertCategorySurge,
			Level:       level,
			Title:       fmt.Sprintf("%s类工单数量较多", category),
			Description: fmt.Sprintf("近期%s类工单达到%d件，建议重点关注", category, count),
			Data:        map[string]any{"category": category, "count": count},
			CreatedAt:   now,
		})
	}
	for _, location := range locations.Keys() {
		count := locations.Get(location)
		if count <= locationThreshold {
			continue
		}
		alerts = append(alerts, Alert{
			Type:        AlertLocationConcentration,
			Level:       AlertLevelMedium,
			Title:       fmt.Sprintf("%s区域问题集中", location),
			Description: fmt.Sprintf("%s区域工单数量达到%d件", location, count),
			Data:        map[string]any{"location": location, "count": count},
			CreatedAt:   now,
		})
	}

	return Trends{
		CategoryStatistics: categories,
		LocationStatistics: locations,
		Alerts:             alerts,
		TotalAnalyzed:      len(batch),
	}
}
