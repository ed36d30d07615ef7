package analysis

import (
	"github.com/govhotline/backend/internal/models"
)

const (
	DefaultCategory   = "其他"
	DefaultDepartment = "综合服务部"
	DefaultIntensity  = 0.5

	// PlaceholderLocation is what the degraded analysis reports when no location is known.
	PlaceholderLocation = "待确认"
)

// Entities are the named things the model found in the complaint.
type Entities struct {
	Location    *string  `json:"location,omitempty"`
	Time        *string  `json:"time,omitempty"`
	Departments []string `json:"departments"`
}

type Sentiment struct {
	Type      models.SentimentType `json:"type"`
	Intensity float64              `json:"intensity"`
	Urgency   models.Urgency       `json:"urgency"`
	Keywords  []string             `json:"keywords"`
}

// Result is the structured analysis of one complaint. Every field is populated:
// values missing from the upstream answer carry the documented defaults.
type Result struct {
	CoreIssues          []string        `json:"core_issues"`
	Entities            Entities        `json:"entities"`
	Sentiment           Sentiment       `json:"sentiment"`
	Summary             string          `json:"summary"`
	SuggestedCategory   string          `json:"suggested_category"`
	SuggestedDepartment string          `json:"suggested_department"`
	Priority            models.Priority `json:"priority"`

	// Keywords and SolutionSuggestion are only filled by the degraded path.
	Keywords           []string `json:"keywords,omitempty"`
	SolutionSuggestion string   `json:"solution_suggestion,omitempty"`
}

// EntityLocation returns the location entity, or "" when absent.
func (r Result) EntityLocation() string {
	if r.Entities.Location == nil {
		return ""
	}
	return *r.Entities.Location
}

func defaultSentiment() Sentiment {
	return Sentiment{
		Type:      models.SentimentNeutral,
		Intensity: DefaultIntensity,
		Urgency:   models.UrgencyMedium,
		Keywords:  []string{},
	}
}

func stringPtr(s string) *string { return &s }
