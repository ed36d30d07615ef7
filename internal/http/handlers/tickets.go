package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/govhotline/backend/internal/db"
	"github.com/govhotline/backend/internal/models"
	"github.com/govhotline/backend/internal/service"
)

const (
	ticketNotFound     = "工单不存在"
	defaultTicketLimit = 100
	defaultSearchLimit = 50
	defaultUserTickets = 20
)

type CreateTicketRequest struct {
	Content      string `json:"content" validate:"required"`
	LocationInfo string `json:"location_info"`
}

type UpdateTicketRequest struct {
	Status     *string `json:"status"`
	Department *string `json:"department"`
	Priority   *string `json:"priority"`
}

// @Summary Create ticket
// @Description Analyzes the complaint and stores the resulting ticket
// @Tags tickets
// @Accept json
// @Produce json
// @Param body body CreateTicketRequest true "Complaint"
// @Success 201 {object} models.Ticket
// @Failure 400 {object} map[string]any
// @Router /api/v1/tickets [post]
func (h *Handler) CreateTicket(c *gin.Context) {
	var req CreateTicketRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "content must not be empty", nil)
		return
	}
	ticket, err := h.Tickets.Create(c.Request.Context(), service.CreateTicketInput{
		Content:      req.Content,
		LocationInfo: req.LocationInfo,
	})
	if err != nil {
		h.storeError(c, err, ticketNotFound)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// @Summary Get ticket
// @Tags tickets
// @Produce json
// @Param id path int true "Ticket ID"
// @Success 200 {object} models.Ticket
// @Failure 404 {object} map[string]any
// @Router /api/v1/tickets/{id} [get]
func (h *Handler) GetTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticket, err := h.Store.GetTicket(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err, ticketNotFound)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// @Summary List tickets
// @Tags tickets
// @Produce json
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Param status query string false "Status"
// @Param category query string false "Category"
// @Success 200 {array} models.Ticket
// @Router /api/v1/tickets [get]
func (h *Handler) ListTickets(c *gin.Context) {
	offset, limit, ok := page(c, defaultTicketLimit)
	if !ok {
		return
	}
	h.listTickets(c, db.TicketFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Offset:   offset,
		Limit:    limit,
	})
}

// @Summary Search tickets
// @Tags tickets
// @Produce json
// @Param keyword query string false "Substring of content or summary"
// @Param category query string false "Category"
// @Param status query string false "Status"
// @Param priority query string false "Priority"
// @Param start_date query string false "ISO date, inclusive"
// @Param end_date query string false "ISO date, inclusive"
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Success 200 {array} models.Ticket
// @Failure 400 {object} map[string]any
// @Router /api/v1/tickets/search [get]
func (h *Handler) SearchTickets(c *gin.Context) {
	offset, limit, ok := page(c, defaultSearchLimit)
	if !ok {
		return
	}
	f := db.TicketFilter{
		Keyword:  c.Query("keyword"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Offset:   offset,
		Limit:    limit,
	}
	bounds := []struct {
		name string
		dst  **time.Time
	}{{"start_date", &f.Since}, {"end_date", &f.Until}}
	for _, b := range bounds {
		name, dst := b.name, b.dst
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		t, err := parseDate(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid "+name, raw)
			return
		}
		*dst = &t
	}
	h.listTickets(c, f)
}

// @Summary Tickets of a user
// @Tags tickets
// @Produce json
// @Param user_id path int true "User ID"
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Success 200 {array} models.Ticket
// @Router /api/v1/tickets/user/{user_id} [get]
func (h *Handler) UserTickets(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	offset, limit, ok := page(c, defaultUserTickets)
	if !ok {
		return
	}
	h.listTickets(c, db.TicketFilter{UserID: &userID, Offset: offset, Limit: limit})
}

func (h *Handler) listTickets(c *gin.Context, f db.TicketFilter) {
	tickets, err := h.Store.ListTickets(c.Request.Context(), f)
	if err != nil {
		h.storeError(c, err, ticketNotFound)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// @Summary Update ticket
// @Description Partial update of status, department and priority
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path int true "Ticket ID"
// @Param body body UpdateTicketRequest true "Fields to change"
// @Success 200 {object} models.Ticket
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/v1/tickets/{id} [put]
func (h *Handler) UpdateTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateTicketRequest
	if !h.bindJSON(c, &req) {
		return
	}
	var upd models.TicketUpdate
	if req.Status != nil && *req.Status != "" {
		st, ok := models.ParseStatus(*req.Status)
		if !ok {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown status", *req.Status)
			return
		}
		upd.Status = &st
	}
	if req.Priority != nil && *req.Priority != "" {
		p, ok := models.ParsePriority(*req.Priority)
		if !ok {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown priority", *req.Priority)
			return
		}
		upd.Priority = &p
	}
	if req.Department != nil && strings.TrimSpace(*req.Department) != "" {
		dept := strings.TrimSpace(*req.Department)
		upd.Department = &dept
	}

	ticket, err := h.Tickets.Update(c.Request.Context(), id, upd)
	if err != nil {
		h.storeError(c, err, ticketNotFound)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// @Summary Delete ticket
// @Tags tickets
// @Produce json
// @Param id path int true "Ticket ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/v1/tickets/{id} [delete]
func (h *Handler) DeleteTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticket, err := h.Store.DeleteTicket(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err, ticketNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "工单已删除", "ticket_no": ticket.TicketNo})
}

// @Summary Similar tickets
// @Tags tickets
// @Produce json
// @Param id path int true "Ticket ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/v1/tickets/{id}/similar [get]
func (h *Handler) SimilarTickets(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	similar, err := h.Tickets.Similar(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err, ticketNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket_id": id, "similar_tickets": similar})
}
