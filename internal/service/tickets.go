package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/govhotline/backend/internal/analysis"
	"github.com/govhotline/backend/internal/db"
	"github.com/govhotline/backend/internal/geocode"
	"github.com/govhotline/backend/internal/metrics"
	"github.com/govhotline/backend/internal/models"
)

const (
	ticketNoAttempts  = 5
	similarCandidates = 100

	notificationTitleNew    = "工单已受理"
	notificationTitleStatus = "工单状态更新"
)

var ErrTicketNoExhausted = errors.New("could not allocate a unique ticket number")

var statusLabels = map[models.Status]string{
	models.StatusPending:    "待处理",
	models.StatusProcessing: "处理中",
	models.StatusResolved:   "已解决",
	models.StatusClosed:     "已关闭",
}

// CreateTicketInput is a citizen submission.
type CreateTicketInput struct {
	Content      string
	LocationInfo string
}

type TicketService struct {
	Store    *db.Store
	Analysis *analysis.Service
	// Geocoder is optional; without it district and street stay empty.
	Geocoder    geocode.Resolver
	GeocodeCity string
	Logger      zerolog.Logger

	// TicketNumbers overrides ticket number generation.
	TicketNumbers func(now time.Time) string
	Now           func() time.Time
}

func (s *TicketService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// NewTicketNo renders GH, the local timestamp to the second and four random digits.
func NewTicketNo(now time.Time) string {
	return fmt.Sprintf("GH%s%04d", now.Format("20060102150405"), rand.Intn(10000))
}

// Create analyzes the submission and persists the resulting ticket. Analysis
// never fails; only storage errors are returned.
func (s *TicketService) Create(ctx context.Context, in CreateTicketInput) (models.Ticket, error) {
	start := time.Now()

	result, blob := s.Analysis.AnalyzeIntent(ctx, in.Content)

	keywords := result.Keywords
	if len(keywords) == 0 {
		keywords = s.Analysis.ExtractKeywords(ctx, in.Content)
	}
	category := refineCategory(result.SuggestedCategory, in.Content)
	solution := s.Analysis.GenerateSolution(ctx, in.Content, category)

	elapsed := time.Since(start).Milliseconds()

	ticket := models.Ticket{
		UserID:             models.DefaultUserID,
		Content:            in.Content,
		Summary:            result.Summary,
		Category:           category,
		Department:         result.SuggestedDepartment,
		Priority:           result.Priority,
		Sentiment:          result.Sentiment.Type,
		SentimentScore:     result.Sentiment.Intensity,
		LocationDetail:     mergeLocation(in.LocationInfo, result.EntityLocation()),
		Status:             models.StatusPending,
		Keywords:           strings.Join(keywords, ","),
		SolutionSuggestion: solution,
		ResponseTime:       &elapsed,
		AIAnalysis:         blob,
	}
	s.resolveLocation(ctx, &ticket)

	created, err := s.insertWithTicketNo(ctx, ticket)
	if err != nil {
		return models.Ticket{}, err
	}
	metrics.TicketsCreated.WithLabelValues(created.Category).Inc()
	s.Logger.Info().
		Str("ticket_no", created.TicketNo).
		Str("category", created.Category).
		Str("priority", string(created.Priority)).
		Int64("response_time_ms", elapsed).
		Msg("ticket created")

	s.notify(ctx, created, notificationTitleNew,
		fmt.Sprintf("您的工单%s已受理，我们将尽快为您处理。", created.TicketNo))
	return created, nil
}

// refineCategory replaces a missing or default category with the first
// dictionary category found in the content.
func refineCategory(category, content string) string {
	category = strings.TrimSpace(category)
	if category != "" && category != analysis.DefaultCategory {
		return category
	}
	for _, c := range analysis.MatchCategories(content) {
		if c != analysis.DefaultCategory {
			return c
		}
	}
	return analysis.DefaultCategory
}

// mergeLocation prefers the location the model extracted unless it is a placeholder.
func mergeLocation(submitted, extracted string) string {
	extracted = strings.TrimSpace(extracted)
	if extracted != "" && extracted != analysis.PlaceholderLocation {
		return extracted
	}
	return strings.TrimSpace(submitted)
}

func (s *TicketService) resolveLocation(ctx context.Context, t *models.Ticket) {
	if s.Geocoder == nil || t.LocationDetail == "" {
		return
	}
	place, err := s.Geocoder.Resolve(ctx, geocode.BuildGeocodeQuery(s.GeocodeCity, t.LocationDetail))
	if err != nil {
		s.Logger.Debug().Err(err).Str("location", t.LocationDetail).Msg("location not resolved")
		return
	}
	t.LocationDistrict = place.District
	t.LocationStreet = place.Street
}

func (s *TicketService) insertWithTicketNo(ctx context.Context, t models.Ticket) (models.Ticket, error) {
	gen := s.TicketNumbers
	if gen == nil {
		gen = NewTicketNo
	}
	for attempt := 0; attempt < ticketNoAttempts; attempt++ {
		t.TicketNo = gen(s.now())
		taken, err := s.Store.TicketNoExists(ctx, t.TicketNo)
		if err != nil {
			return models.Ticket{}, err
		}
		if taken {
			continue
		}
		created, err := s.Store.CreateTicket(ctx, t)
		if errors.Is(err, db.ErrConflict) {
			continue
		}
		return created, err
	}
	return models.Ticket{}, ErrTicketNoExhausted
}

// Update applies a partial update and notifies the submitter when the status changed.
func (s *TicketService) Update(ctx context.Context, id int64, upd models.TicketUpdate) (models.Ticket, error) {
	before, err := s.Store.GetTicket(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	after, err := s.Store.UpdateTicket(ctx, id, upd)
	if err != nil {
		return models.Ticket{}, err
	}
	if after.Status != before.Status {
		label := statusLabels[after.Status]
		if label == "" {
			label = string(after.Status)
		}
		s.notify(ctx, after, notificationTitleStatus,
			fmt.Sprintf("您的工单%s状态已更新为：%s", after.TicketNo, label))
	}
	return after, nil
}

// Similar ranks the 100 most recent other tickets against the given one.
func (s *TicketService) Similar(ctx context.Context, id int64) ([]analysis.Similar, error) {
	target, err := s.Store.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	recent, err := s.Store.ListTickets(ctx, db.TicketFilter{ExcludeID: id, Limit: similarCandidates})
	if err != nil {
		return nil, err
	}
	candidates := make([]analysis.Candidate, 0, len(recent))
	for _, t := range recent {
		candidates = append(candidates, analysis.Candidate{
			ID:       t.ID,
			TicketNo: t.TicketNo,
			Content:  t.Content,
			Category: t.Category,
			Status:   string(t.Status),
		})
	}
	return s.Analysis.FindSimilar(target.Content, candidates), nil
}

// notify records a notification for the ticket's submitter. Failures are logged only.
func (s *TicketService) notify(ctx context.Context, t models.Ticket, title, content string) {
	_, err := s.Store.CreateNotification(ctx, models.Notification{
		UserID:   t.UserID,
		TicketID: t.ID,
		Title:    title,
		Content:  content,
	})
	if err != nil {
		s.Logger.Warn().Err(err).Int64("ticket_id", t.ID).Str("title", title).Msg("notification not stored")
	}
}
