package db

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/govhotline/backend/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, "sqlite://")
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, s.Migrate(ctx))
	return s
}

func sampleTicket(no, content string) models.Ticket {
	return models.Ticket{
		TicketNo:   no,
		UserID:     models.DefaultUserID,
		Content:    content,
		Category:   "环境卫生",
		Priority:   models.PriorityMedium,
		Sentiment:  models.SentimentNeutral,
		Status:     models.StatusPending,
		AIAnalysis: json.RawMessage(`{"summary":"x"}`),
	}
}

func TestSQLitePath(t *testing.T) {
	require.Equal(t, "./govhotline.db?_time_format=sqlite&_pragma=busy_timeout(5000)", sqlitePath("sqlite:///./govhotline.db"))
	require.Equal(t, "/var/lib/app.db?_time_format=sqlite&_pragma=busy_timeout(5000)", sqlitePath("sqlite:////var/lib/app.db"))
	require.Equal(t, ":memory:?_time_format=sqlite&_pragma=busy_timeout(5000)", sqlitePath("sqlite://"))
}

func TestRebind(t *testing.T) {
	pg := &Store{dialect: dialectPostgres}
	require.Equal(t, "a = $1 AND b = $2", pg.rebind("a = ? AND b = ?"))
	lite := &Store{dialect: dialectSQLite}
	require.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
	require.Equal(t, "sqlite", s.Backend())
	require.NoError(t, s.Ping(context.Background()))
}

func TestTicketRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rt := int64(1532)
	in := sampleTicket("GH202405010800001234", "小区门口垃圾堆积")
	in.ResponseTime = &rt
	created, err := s.CreateTicket(ctx, in)
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := s.GetTicket(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, in.TicketNo, got.TicketNo)
	require.Equal(t, models.StatusPending, got.Status)
	require.Equal(t, models.PriorityMedium, got.Priority)
	require.NotNil(t, got.ResponseTime)
	require.Equal(t, rt, *got.ResponseTime)
	require.JSONEq(t, `{"summary":"x"}`, string(got.AIAnalysis))
	require.False(t, got.CreatedAt.IsZero())

	exists, err := s.TicketNoExists(ctx, in.TicketNo)
	require.NoError(t, err)
	require.True(t, exists)

	_, err = s.GetTicket(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDuplicateTicketNoConflicts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateTicket(ctx, sampleTicket("GH1", "a"))
	require.NoError(t, err)
	_, err = s.CreateTicket(ctx, sampleTicket("GH1", "b"))
	require.ErrorIs(t, err, ErrConflict)
}

func TestListTicketsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	rows := []struct {
		no, content, category string
		status                models.Status
		priority              models.Priority
		user                  int64
		at                    time.Time
	}{
		{"GH1", "路灯不亮", "市政设施", models.StatusPending, models.PriorityHigh, 1, base},
		{"GH2", "垃圾没人收", "环境卫生", models.StatusResolved, models.PriorityMedium, 1, base.Add(time.Hour)},
		{"GH3", "夜间施工噪音", "噪音扰民", models.StatusPending, models.PriorityLow, 2, base.Add(2 * time.Hour)},
	}
	ids := map[string]int64{}
	for _, r := range rows {
		tk := sampleTicket(r.no, r.content)
		tk.Category, tk.Status, tk.Priority, tk.UserID, tk.CreatedAt = r.category, r.status, r.priority, r.user, r.at
		created, err := s.CreateTicket(ctx, tk)
		require.NoError(t, err)
		ids[r.no] = created.ID
	}

	all, err := s.ListTickets(ctx, TicketFilter{})
	require.NoError(t, err)
	require.Equal(t, []string{"GH3", "GH2", "GH1"}, ticketNos(all))

	pending, err := s.ListTickets(ctx, TicketFilter{Status: "pending"})
	require.NoError(t, err)
	require.Equal(t, []string{"GH3", "GH1"}, ticketNos(pending))

	kw, err := s.ListTickets(ctx, TicketFilter{Keyword: "垃圾"})
	require.NoError(t, err)
	require.Equal(t, []string{"GH2"}, ticketNos(kw))

	since := base.Add(30 * time.Minute)
	until := base.Add(90 * time.Minute)
	window, err := s.ListTickets(ctx, TicketFilter{Since: &since, Until: &until})
	require.NoError(t, err)
	require.Equal(t, []string{"GH2"}, ticketNos(window))

	user := int64(2)
	mine, err := s.ListTickets(ctx, TicketFilter{UserID: &user})
	require.NoError(t, err)
	require.Equal(t, []string{"GH3"}, ticketNos(mine))

	page, err := s.ListTickets(ctx, TicketFilter{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Equal(t, []string{"GH2"}, ticketNos(page))

	others, err := s.ListTickets(ctx, TicketFilter{ExcludeID: ids["GH3"], Priority: "high"})
	require.NoError(t, err)
	require.Equal(t, []string{"GH1"}, ticketNos(others))
}

func ticketNos(ts []models.Ticket) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.TicketNo)
	}
	return out
}

func TestUpdateAndDeleteTicket(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	created, err := s.CreateTicket(ctx, sampleTicket("GH1", "a"))
	require.NoError(t, err)

	status := models.StatusProcessing
	dept := "市政局"
	updated, err := s.UpdateTicket(ctx, created.ID, models.TicketUpdate{Status: &status, Department: &dept})
	require.NoError(t, err)
	require.Equal(t, models.StatusProcessing, updated.Status)
	require.Equal(t, "市政局", updated.Department)
	require.Equal(t, models.PriorityMedium, updated.Priority)

	_, err = s.UpdateTicket(ctx, 404, models.TicketUpdate{Status: &status})
	require.ErrorIs(t, err, ErrNotFound)

	deleted, err := s.DeleteTicket(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "GH1", deleted.TicketNo)
	_, err = s.DeleteTicket(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUsernameConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u, err := s.CreateUser(ctx, models.User{Username: "zhang", Email: "z@example.com"})
	require.NoError(t, err)
	require.Equal(t, "citizen", u.Role)

	_, err = s.CreateUser(ctx, models.User{Username: "zhang"})
	require.ErrorIs(t, err, ErrConflict)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "z@example.com", got.Email)
}

func TestRatingIsUniquePerTicket(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetRating(ctx, 7)
	require.ErrorIs(t, err, ErrNotFound)

	first, err := s.CreateRating(ctx, models.Rating{TicketID: 7, Score: 5, Feedback: "很好"})
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	_, err = s.CreateRating(ctx, models.Rating{TicketID: 7, Score: 1})
	require.ErrorIs(t, err, ErrConflict)

	got, err := s.GetRating(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, 5, got.Score)
}

func TestCommentsAndNotifications(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, body := range []string{"第一条", "第二条"} {
		_, err := s.CreateComment(ctx, models.Comment{TicketID: 3, UserID: 1, Content: body})
		require.NoError(t, err)
	}
	comments, err := s.ListComments(ctx, 3)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	require.Equal(t, "第一条", comments[0].Content)

	for i := 0; i < 25; i++ {
		_, err := s.CreateNotification(ctx, models.Notification{UserID: 1, TicketID: int64(i), Title: "工单已受理"})
		require.NoError(t, err)
	}
	list, err := s.ListNotifications(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 20)
	require.Equal(t, int64(24), list[0].TicketID)
	require.False(t, list[0].IsRead)

	require.NoError(t, s.MarkNotificationRead(ctx, list[0].ID))
	list, err = s.ListNotifications(ctx, 1)
	require.NoError(t, err)
	require.True(t, list[0].IsRead)

	require.ErrorIs(t, s.MarkNotificationRead(ctx, 9999), ErrNotFound)
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, url)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Migrate(ctx))
	require.Equal(t, "postgres", s.Backend())

	no := "GHTEST" + time.Now().Format("20060102150405.000000")
	created, err := s.CreateTicket(ctx, sampleTicket(no, "pg 集成测试"))
	require.NoError(t, err)
	defer func() { _, _ = s.DeleteTicket(ctx, created.ID) }()

	_, err = s.CreateTicket(ctx, sampleTicket(no, "dup"))
	require.ErrorIs(t, err, ErrConflict)

	got, err := s.GetTicket(ctx, created.ID)
	require.NoError(t, err)
	require.JSONEq(t, `{"summary":"x"}`, string(got.AIAnalysis))
}
