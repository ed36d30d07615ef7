package db

import (
	"context"
	"strings"
	"time"

	"github.com/govhotline/backend/internal/models"
)

const ticketColumns = `id, ticket_no, user_id, content, summary, category, department, priority,
	sentiment, sentiment_score, location_district, location_street, location_detail, status,
	keywords, solution_suggestion, response_time, ai_analysis, created_at, updated_at`

// TicketFilter selects tickets. Zero values mean "any"; a zero Limit means no limit.
type TicketFilter struct {
	Status   string
	Category string
	Priority string
	// Keyword matches content or summary as a substring.
	Keyword   string
	UserID    *int64
	Since     *time.Time
	Until     *time.Time
	ExcludeID int64
	Offset    int
	Limit     int
}

func (s *Store) CreateTicket(ctx context.Context, t models.Ticket) (models.Ticket, error) {
	now := s.stamp()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	} else {
		t.CreatedAt = s.timestamp(t.CreatedAt)
	}
	t.UpdatedAt = t.CreatedAt
	if t.Status == "" {
		t.Status = models.StatusPending
	}

	var analysis []byte
	if len(t.AIAnalysis) > 0 {
		analysis = []byte(t.AIAnalysis)
	}
	id, err := s.insert(ctx, `INSERT INTO tickets (ticket_no, user_id, content, summary, category, department,
		priority, sentiment, sentiment_score, location_district, location_street, location_detail, status,
		keywords, solution_suggestion, response_time, ai_analysis, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		t.TicketNo, t.UserID, t.Content, t.Summary, t.Category, t.Department,
		string(t.Priority), string(t.Sentiment), t.SentimentScore, t.LocationDistrict, t.LocationStreet,
		t.LocationDetail, string(t.Status), t.Keywords, t.SolutionSuggestion, nullable(t.ResponseTime), analysis,
		t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return models.Ticket{}, err
	}
	t.ID = id
	return t, nil
}

// TicketNoExists reports whether a ticket number is already taken.
func (s *Store) TicketNoExists(ctx context.Context, ticketNo string) (bool, error) {
	var n int
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE ticket_no = ?`, ticketNo).Scan(&n); err != nil {
		return false, s.translate(err)
	}
	return n > 0, nil
}

func (s *Store) GetTicket(ctx context.Context, id int64) (models.Ticket, error) {
	t, err := scanTicket(s.queryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id))
	if err != nil {
		return models.Ticket{}, s.translate(err)
	}
	return t, nil
}

// ListTickets returns matching tickets newest first.
func (s *Store) ListTickets(ctx context.Context, f TicketFilter) ([]models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets`
	var args []any
	var wheres []string
	if f.Status != "" {
		args = append(args, f.Status)
		wheres = append(wheres, "status = ?")
	}
	if f.Category != "" {
		args = append(args, f.Category)
		wheres = append(wheres, "category = ?")
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		wheres = append(wheres, "priority = ?")
	}
	if f.Keyword != "" {
		pattern := "%" + f.Keyword + "%"
		args = append(args, pattern, pattern)
		wheres = append(wheres, "(content LIKE ? OR summary LIKE ?)")
	}
	if f.UserID != nil {
		args = append(args, *f.UserID)
		wheres = append(wheres, "user_id = ?")
	}
	if f.Since != nil {
		args = append(args, s.timestamp(*f.Since))
		wheres = append(wheres, "created_at >= ?")
	}
	if f.Until != nil {
		args = append(args, s.timestamp(*f.Until))
		wheres = append(wheres, "created_at <= ?")
	}
	if f.ExcludeID != 0 {
		args = append(args, f.ExcludeID)
		wheres = append(wheres, "id <> ?")
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		offset := f.Offset
		if offset < 0 {
			offset = 0
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, offset)
	}

	r, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	out := []models.Ticket{}
	for r.Next() {
		t, err := scanTicket(r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, r.Err()
}

// UpdateTicket applies the non-nil fields of upd and returns the stored ticket.
func (s *Store) UpdateTicket(ctx context.Context, id int64, upd models.TicketUpdate) (models.Ticket, error) {
	sets := []string{"updated_at = ?"}
	args := []any{s.stamp()}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*upd.Status))
	}
	if upd.Department != nil {
		sets = append(sets, "department = ?")
		args = append(args, *upd.Department)
	}
	if upd.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, string(*upd.Priority))
	}
	args = append(args, id)

	n, err := s.exec(ctx, `UPDATE tickets SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return models.Ticket{}, err
	}
	if n == 0 {
		return models.Ticket{}, ErrNotFound
	}
	return s.GetTicket(ctx, id)
}

// DeleteTicket removes a ticket and returns what was deleted.
func (s *Store) DeleteTicket(ctx context.Context, id int64) (models.Ticket, error) {
	t, err := s.GetTicket(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	n, err := s.exec(ctx, `DELETE FROM tickets WHERE id = ?`, id)
	if err != nil {
		return models.Ticket{}, err
	}
	if n == 0 {
		return models.Ticket{}, ErrNotFound
	}
	return t, nil
}

func scanTicket(r row) (models.Ticket, error) {
	var (
		t                           models.Ticket
		priority, sentiment, status string
		analysis                    []byte
	)
	err := r.Scan(&t.ID, &t.TicketNo, &t.UserID, &t.Content, &t.Summary, &t.Category, &t.Department,
		&priority, &sentiment, &t.SentimentScore, &t.LocationDistrict, &t.LocationStreet,
		&t.LocationDetail, &status, &t.Keywords, &t.SolutionSuggestion, &t.ResponseTime, &analysis,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Ticket{}, err
	}
	t.Priority = models.Priority(priority)
	t.Sentiment = models.SentimentType(sentiment)
	t.Status = models.Status(status)
	if len(analysis) > 0 {
		t.AIAnalysis = analysis
	}
	return t, nil
}

func nullable(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
