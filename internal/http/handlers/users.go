package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/govhotline/backend/internal/db"
	"github.com/govhotline/backend/internal/models"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	FullName string `json:"full_name" validate:"omitempty,max=100"`
}

type CommentRequest struct {
	TicketID int64  `json:"ticket_id" validate:"required,gt=0"`
	Content  string `json:"content" validate:"required"`
}

type RatingRequest struct {
	TicketID int64  `json:"ticket_id" validate:"required,gt=0"`
	Score    int    `json:"score" validate:"required,min=1,max=5"`
	Feedback string `json:"feedback"`
}

// @Summary Register user
// @Tags users
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "User"
// @Success 201 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /api/v1/users/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	u, err := h.Store.CreateUser(c.Request.Context(), models.User{
		Username: strings.TrimSpace(req.Username),
		Email:    req.Email,
		Phone:    req.Phone,
		FullName: req.FullName,
	})
	if errors.Is(err, db.ErrConflict) {
		writeError(c, http.StatusConflict, "CONFLICT", "用户名已存在", req.Username)
		return
	}
	if err != nil {
		h.storeError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": u.ID, "username": u.Username, "message": "注册成功"})
}

// @Summary User profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} map[string]any
// @Router /api/v1/users/profile/{id} [get]
func (h *Handler) Profile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	u, err := h.Store.GetUser(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err, "用户不存在")
		return
	}
	c.JSON(http.StatusOK, u)
}

// ticketExists answers 404 itself when the ticket is missing.
func (h *Handler) ticketExists(c *gin.Context, id int64) bool {
	if _, err := h.Store.GetTicket(c.Request.Context(), id); err != nil {
		h.storeError(c, err, ticketNotFound)
		return false
	}
	return true
}

// @Summary Comment on a ticket
// @Tags users
// @Accept json
// @Produce json
// @Param body body CommentRequest true "Comment"
// @Success 201 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/v1/users/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	var req CommentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "content must not be empty", nil)
		return
	}
	if !h.ticketExists(c, req.TicketID) {
		return
	}
	cm, err := h.Store.CreateComment(c.Request.Context(), models.Comment{
		TicketID: req.TicketID,
		UserID:   models.DefaultUserID,
		Content:  req.Content,
	})
	if err != nil {
		h.storeError(c, err, ticketNotFound)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": cm.ID, "message": "评论成功"})
}

// @Summary Comments of a ticket
// @Tags users
// @Produce json
// @Param ticket_id path int true "Ticket ID"
// @Success 200 {array} models.Comment
// @Router /api/v1/users/comments/{ticket_id} [get]
func (h *Handler) ListComments(c *gin.Context) {
	id, ok := pathID(c, "ticket_id")
	if !ok {
		return
	}
	comments, err := h.Store.ListComments(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err, ticketNotFound)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// @Summary Rate a ticket
// @Description A ticket can be rated once
// @Tags users
// @Accept json
// @Produce json
// @Param body body RatingRequest true "Rating"
// @Success 201 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /api/v1/users/ratings [post]
func (h *Handler) CreateRating(c *gin.Context) {
	var req RatingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if !h.ticketExists(c, req.TicketID) {
		return
	}
	rt, err := h.Store.CreateRating(c.Request.Context(), models.Rating{
		TicketID: req.TicketID,
		Score:    req.Score,
		Feedback: req.Feedback,
	})
	if errors.Is(err, db.ErrConflict) {
		writeError(c, http.StatusConflict, "CONFLICT", "该工单已评价", req.TicketID)
		return
	}
	if err != nil {
		h.storeError(c, err, ticketNotFound)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": rt.ID, "message": "评价成功"})
}

// @Summary Rating of a ticket
// @Description null when the ticket has not been rated
// @Tags users
// @Produce json
// @Param ticket_id path int true "Ticket ID"
// @Success 200 {object} map[string]any
// @Router /api/v1/users/ratings/{ticket_id} [get]
func (h *Handler) GetRating(c *gin.Context) {
	id, ok := pathID(c, "ticket_id")
	if !ok {
		return
	}
	rt, err := h.Store.GetRating(c.Request.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusOK, nil)
		return
	}
	if err != nil {
		h.storeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"score": rt.Score, "feedback": rt.Feedback, "created_at": rt.CreatedAt})
}

// @Summary Notifications of a user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} models.Notification
// @Router /api/v1/users/notifications/{id} [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.Store.ListNotifications(c.Request.Context(), userID)
	if err != nil {
		h.storeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Mark notification read
// @Tags users
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/v1/users/notifications/{id}/read [put]
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Store.MarkNotificationRead(c.Request.Context(), id); err != nil {
		h.storeError(c, err, "通知不存在")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已标记为已读"})
}
