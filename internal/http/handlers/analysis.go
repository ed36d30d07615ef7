package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"

	"github.com/govhotline/backend/internal/analysis"
	"github.com/govhotline/backend/internal/service"
)

const (
	shortWindow = 7
	longWindow  = 30
)

func days(c *gin.Context, def int) (int, bool) {
	raw := strings.TrimSpace(c.Query("days"))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", service.ErrInvalidWindow.Error(), raw)
		return 0, false
	}
	return n, true
}

func (h *Handler) analyticsError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInvalidWindow) {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	h.storeError(c, err, "")
}

// analytics runs one windowed aggregate and writes it as JSON.
func analytics[T any](h *Handler, c *gin.Context, def int, run func(*service.AnalyticsService, *gin.Context, int) (T, error)) {
	n, ok := days(c, def)
	if !ok {
		return
	}
	out, err := run(h.Analytics, c, n)
	if err != nil {
		h.analyticsError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Ticket statistics
// @Tags analysis
// @Produce json
// @Param days query int false "Window in days" default(7)
// @Success 200 {object} service.Statistics
// @Failure 400 {object} map[string]any
// @Router /api/v1/analysis/statistics [get]
func (h *Handler) Statistics(c *gin.Context) {
	analytics(h, c, shortWindow, func(s *service.AnalyticsService, c *gin.Context, n int) (service.Statistics, error) {
		return s.Statistics(c.Request.Context(), n)
	})
}

// @Summary Trend alerts
// @Tags analysis
// @Produce json
// @Param days query int false "Window in days" default(7)
// @Success 200 {array} analysis.Alert
// @Router /api/v1/analysis/alerts [get]
func (h *Handler) Alerts(c *gin.Context) {
	analytics(h, c, shortWindow, func(s *service.AnalyticsService, c *gin.Context, n int) ([]analysis.Alert, error) {
		return s.Alerts(c.Request.Context(), n)
	})
}

// @Summary Alert briefing
// @Description Alerts plus a narrated summary
// @Tags analysis
// @Produce json
// @Param days query int false "Window in days" default(7)
// @Success 200 {object} service.Briefing
// @Router /api/v1/analysis/alerts/briefing [get]
func (h *Handler) Briefing(c *gin.Context) {
	analytics(h, c, shortWindow, func(s *service.AnalyticsService, c *gin.Context, n int) (service.Briefing, error) {
		return s.Briefing(c.Request.Context(), n)
	})
}

// @Summary Daily category trends
// @Tags analysis
// @Produce json
// @Param days query int false "Window in days" default(30)
// @Success 200 {object} service.CategoryTrends
// @Router /api/v1/analysis/trends/category [get]
func (h *Handler) CategoryTrends(c *gin.Context) {
	analytics(h, c, longWindow, func(s *service.AnalyticsService, c *gin.Context, n int) (service.CategoryTrends, error) {
		return s.CategoryTrends(c.Request.Context(), n)
	})
}

// @Summary Location trends
// @Tags analysis
// @Produce json
// @Param days query int false "Window in days" default(7)
// @Success 200 {object} service.LocationTrends
// @Router /api/v1/analysis/trends/location [get]
func (h *Handler) LocationTrends(c *gin.Context) {
	analytics(h, c, shortWindow, func(s *service.AnalyticsService, c *gin.Context, n int) (service.LocationTrends, error) {
		return s.LocationTrends(c.Request.Context(), n)
	})
}

// @Summary Sentiment summary
// @Tags analysis
// @Produce json
// @Param days query int false "Window in days" default(7)
// @Success 200 {object} service.SentimentSummary
// @Router /api/v1/analysis/sentiment-analysis [get]
func (h *Handler) Sentiment(c *gin.Context) {
	analytics(h, c, shortWindow, func(s *service.AnalyticsService, c *gin.Context, n int) (service.SentimentSummary, error) {
		return s.Sentiment(c.Request.Context(), n)
	})
}

// @Summary Department performance
// @Tags analysis
// @Produce json
// @Param days query int false "Window in days" default(30)
// @Success 200 {object} service.DepartmentPerformance
// @Router /api/v1/analysis/department-performance [get]
func (h *Handler) DepartmentPerformance(c *gin.Context) {
	analytics(h, c, longWindow, func(s *service.AnalyticsService, c *gin.Context, n int) (service.DepartmentPerformance, error) {
		return s.DepartmentPerformance(c.Request.Context(), n)
	})
}

// @Summary Keyword cloud
// @Tags analysis
// @Produce json
// @Param days query int false "Window in days" default(30)
// @Success 200 {object} service.KeywordCloud
// @Router /api/v1/analysis/keywords-cloud [get]
func (h *Handler) KeywordCloud(c *gin.Context) {
	analytics(h, c, longWindow, func(s *service.AnalyticsService, c *gin.Context, n int) (service.KeywordCloud, error) {
		return s.KeywordCloud(c.Request.Context(), n)
	})
}

// @Summary Export report
// @Tags analysis
// @Produce json,application/x-yaml
// @Param days query int false "Window in days" default(30)
// @Param format query string false "json or yaml" default(json)
// @Success 200 {object} service.Report
// @Failure 400 {object} map[string]any
// @Router /api/v1/analysis/export/report [get]
func (h *Handler) ExportReport(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "json"))
	if format != "json" && format != "yaml" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "format must be json or yaml", format)
		return
	}
	n, ok := days(c, longWindow)
	if !ok {
		return
	}
	report, err := h.Analytics.Report(c.Request.Context(), n)
	if err != nil {
		h.analyticsError(c, err)
		return
	}
	if format == "json" {
		c.JSON(http.StatusOK, report)
		return
	}
	out, err := yaml.Marshal(report)
	if err != nil {
		h.Logger.Error().Err(err).Msg("encode report")
		writeError(c, http.StatusInternalServerError, "ENCODE_ERROR", "报告生成失败", err.Error())
		return
	}
	c.Data(http.StatusOK, "application/x-yaml; charset=utf-8", out)
}
