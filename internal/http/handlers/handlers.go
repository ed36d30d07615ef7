package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/govhotline/backend/internal/analysis"
	"github.com/govhotline/backend/internal/db"
	"github.com/govhotline/backend/internal/service"
)

const (
	apiTitle   = "政务热线智能助手API"
	apiVersion = "1.0.0"
)

type Handler struct {
	Store     *db.Store
	Tickets   *service.TicketService
	Analytics *service.AnalyticsService
	Analysis  *analysis.Service
	Validator *validator.Validate
	Logger    zerolog.Logger
}

// @Summary Service banner
// @Tags system
// @Produce json
// @Success 200 {object} map[string]any
// @Router / [get]
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": apiTitle,
		"version": apiVersion,
		"docs":    "/swagger/index.html",
	})
}

// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": h.Store.Backend()})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// storeError answers a failed store call; notFound is the message for a missing record.
func (h *Handler) storeError(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", notFound, nil)
	case errors.Is(err, db.ErrConflict):
		writeError(c, http.StatusConflict, "CONFLICT", "记录已存在", nil)
	default:
		h.Logger.Error().Err(err).Str("path", c.FullPath()).Msg("store call failed")
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "数据库操作失败", err.Error())
	}
}

// bindJSON decodes and validates the body, answering 400 itself on failure.
func (h *Handler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return false
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid "+name, c.Param(name))
		return 0, false
	}
	return id, true
}

// queryInt reads a non-negative integer query parameter.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid "+name, raw)
		return 0, false
	}
	return v, true
}

func page(c *gin.Context, defLimit int) (offset, limit int, ok bool) {
	if offset, ok = queryInt(c, "skip", 0); !ok {
		return 0, 0, false
	}
	if limit, ok = queryInt(c, "limit", defLimit); !ok {
		return 0, 0, false
	}
	if limit == 0 {
		limit = defLimit
	}
	return offset, limit, true
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDate accepts ISO-8601 dates and date-times; zone-less values are local time.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, raw, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
