package models

import (
	"encoding/json"
	"time"
)

// DefaultUserID is the acting submitter for every write; there is no authentication.
const DefaultUserID int64 = 1

type Ticket struct {
	ID                 int64           `json:"id"`
	TicketNo           string          `json:"ticket_no"`
	UserID             int64           `json:"user_id"`
	Content            string          `json:"content"`
	Summary            string          `json:"summary"`
	Category           string          `json:"category"`
	Department         string          `json:"department"`
	Priority           Priority        `json:"priority"`
	Sentiment          SentimentType   `json:"sentiment"`
	SentimentScore     float64         `json:"sentiment_score"`
	LocationDistrict   string          `json:"location_district"`
	LocationStreet     string          `json:"location_street"`
	LocationDetail     string          `json:"location_detail"`
	Status             Status          `json:"status"`
	Keywords           string          `json:"keywords"`
	SolutionSuggestion string          `json:"solution_suggestion"`
	ResponseTime       *int64          `json:"response_time"`
	AIAnalysis         json.RawMessage `json:"ai_analysis"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// TicketUpdate carries the mutable ticket fields; nil means unchanged.
type TicketUpdate struct {
	Status     *Status
	Department *string
	Priority   *Priority
}

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Comment struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticket_id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Rating struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticket_id"`
	Score     int       `json:"score"`
	Feedback  string    `json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
}

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	TicketID  int64     `json:"ticket_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
