package models

import "strings"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// ParseStatus reports whether value names a known status.
func ParseStatus(value string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusPending:
		return StatusPending, true
	case StatusProcessing:
		return StatusProcessing, true
	case StatusResolved:
		return StatusResolved, true
	case StatusClosed:
		return StatusClosed, true
	}
	return "", false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority accepts the English labels and the Chinese 低/中/高 forms.
func ParsePriority(value string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "low", "低":
		return PriorityLow, true
	case "medium", "中", "普通":
		return PriorityMedium, true
	case "high", "高", "紧急":
		return PriorityHigh, true
	}
	return "", false
}

// PriorityOrDefault decodes untrusted text, falling back to medium.
func PriorityOrDefault(value string) Priority {
	if p, ok := ParsePriority(value); ok {
		return p
	}
	return PriorityMedium
}

type SentimentType string

const (
	SentimentPositive SentimentType = "positive"
	SentimentNeutral  SentimentType = "neutral"
	SentimentNegative SentimentType = "negative"
)

func SentimentOrDefault(value string) SentimentType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "positive", "正面", "积极":
		return SentimentPositive
	case "negative", "负面", "消极":
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

func UrgencyOrDefault(value string) Urgency {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "low", "低":
		return UrgencyLow
	case "high", "高", "紧急":
		return UrgencyHigh
	default:
		return UrgencyMedium
	}
}
