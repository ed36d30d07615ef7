package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/govhotline/backend/internal/analysis"
)

const probeSentence = "这是一个测试消息"

type TextRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *Handler) bindText(c *gin.Context) (string, bool) {
	var req TextRequest
	if !h.bindJSON(c, &req) {
		return "", false
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "content must not be empty", nil)
		return "", false
	}
	return req.Content, true
}

// @Summary Analyze complaint text
// @Description Structured analysis without persisting a ticket
// @Tags qianfan
// @Accept json
// @Produce json
// @Param body body TextRequest true "Text"
// @Success 200 {object} analysis.Result
// @Router /api/v1/qianfan/analyze [post]
func (h *Handler) Analyze(c *gin.Context) {
	content, ok := h.bindText(c)
	if !ok {
		return
	}
	result, _ := h.Analysis.AnalyzeIntent(c.Request.Context(), content)
	c.JSON(http.StatusOK, publicResult(result))
}

// publicResult drops the intake-only fields the degraded path adds.
func publicResult(r analysis.Result) analysis.Result {
	r.Keywords = nil
	r.SolutionSuggestion = ""
	return r
}

// @Summary Summarize text
// @Tags qianfan
// @Accept json
// @Produce json
// @Param body body TextRequest true "Text"
// @Success 200 {object} map[string]any
// @Router /api/v1/qianfan/summary [post]
func (h *Handler) Summary(c *gin.Context) {
	content, ok := h.bindText(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"content": content,
		"summary": h.Analysis.GenerateSummary(c.Request.Context(), content),
	})
}

// @Summary Probe the model endpoint
// @Tags qianfan
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/v1/qianfan/test [get]
func (h *Handler) ProbeModel(c *gin.Context) {
	ctx := c.Request.Context()
	status, message := "success", "千帆API连接正常"
	if err := h.Analysis.Probe(ctx); err != nil {
		status, message = "error", "千帆API连接失败: "+err.Error()
	}
	result, _ := h.Analysis.AnalyzeIntent(ctx, probeSentence)
	c.JSON(http.StatusOK, gin.H{
		"status":      status,
		"message":     message,
		"test_result": publicResult(result),
	})
}
