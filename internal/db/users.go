package db

import (
	"context"
	"errors"

	"github.com/govhotline/backend/internal/models"
)

const notificationListLimit = 20

// CreateUser fails with ErrConflict when the username is taken.
func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	now := s.stamp()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Role == "" {
		u.Role = "citizen"
	}
	id, err := s.insert(ctx, `INSERT INTO users (username, email, phone, full_name, role, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?)`, u.Username, u.Email, u.Phone, u.FullName, u.Role, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return models.User{}, err
	}
	u.ID = id
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := s.queryRow(ctx, `SELECT id, username, email, phone, full_name, role, created_at, updated_at
		FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.FullName, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return models.User{}, s.translate(err)
	}
	return u, nil
}

func (s *Store) CreateComment(ctx context.Context, c models.Comment) (models.Comment, error) {
	c.CreatedAt = s.stamp()
	id, err := s.insert(ctx, `INSERT INTO comments (ticket_id, user_id, content, created_at) VALUES (?,?,?,?)`,
		c.TicketID, c.UserID, c.Content, c.CreatedAt)
	if err != nil {
		return models.Comment{}, err
	}
	c.ID = id
	return c, nil
}

// ListComments returns a ticket's comments oldest first.
func (s *Store) ListComments(ctx context.Context, ticketID int64) ([]models.Comment, error) {
	r, err := s.query(ctx, `SELECT id, ticket_id, user_id, content, created_at FROM comments
		WHERE ticket_id = ? ORDER BY created_at ASC, id ASC`, ticketID)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	out := []models.Comment{}
	for r.Next() {
		var c models.Comment
		if err := r.Scan(&c.ID, &c.TicketID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, r.Err()
}

// CreateRating stores the single rating a ticket may have. The existence check
// runs right before the insert; the UNIQUE column catches a concurrent duplicate.
func (s *Store) CreateRating(ctx context.Context, rt models.Rating) (models.Rating, error) {
	_, err := s.GetRating(ctx, rt.TicketID)
	switch {
	case err == nil:
		return models.Rating{}, ErrConflict
	case !errors.Is(err, ErrNotFound):
		return models.Rating{}, err
	}

	rt.CreatedAt = s.stamp()
	id, err := s.insert(ctx, `INSERT INTO ratings (ticket_id, score, feedback, created_at) VALUES (?,?,?,?)`,
		rt.TicketID, rt.Score, rt.Feedback, rt.CreatedAt)
	if err != nil {
		return models.Rating{}, err
	}
	rt.ID = id
	return rt, nil
}

func (s *Store) GetRating(ctx context.Context, ticketID int64) (models.Rating, error) {
	var rt models.Rating
	err := s.queryRow(ctx, `SELECT id, ticket_id, score, feedback, created_at FROM ratings WHERE ticket_id = ?`, ticketID).
		Scan(&rt.ID, &rt.TicketID, &rt.Score, &rt.Feedback, &rt.CreatedAt)
	if err != nil {
		return models.Rating{}, s.translate(err)
	}
	return rt, nil
}

func (s *Store) CreateNotification(ctx context.Context, n models.Notification) (models.Notification, error) {
	n.CreatedAt = s.stamp()
	id, err := s.insert(ctx, `INSERT INTO notifications (user_id, ticket_id, title, content, is_read, created_at)
		VALUES (?,?,?,?,?,?)`, n.UserID, n.TicketID, n.Title, n.Content, n.IsRead, n.CreatedAt)
	if err != nil {
		return models.Notification{}, err
	}
	n.ID = id
	return n, nil
}

// ListNotifications returns the 20 newest notifications of a user.
func (s *Store) ListNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	r, err := s.query(ctx, `SELECT id, user_id, ticket_id, title, content, is_read, created_at FROM notifications
		WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, userID, notificationListLimit)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	out := []models.Notification{}
	for r.Next() {
		var n models.Notification
		if err := r.Scan(&n.ID, &n.UserID, &n.TicketID, &n.Title, &n.Content, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, r.Err()
}

func (s *Store) MarkNotificationRead(ctx context.Context, id int64) error {
	n, err := s.exec(ctx, `UPDATE notifications SET is_read = ? WHERE id = ?`, true, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
