package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/govhotline/backend/internal/metrics"
)

// OpenAICompleter talks to an OpenAI-compatible chat completions endpoint,
// such as the Qianfan v2 API.
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

type OpenAIConfig struct {
	BaseURL   string
	Model     string
	AccessKey string
	SecretKey string
	Timeout   time.Duration
}

func NewOpenAICompleter(cfg OpenAIConfig) *OpenAICompleter {
	clientCfg := openai.DefaultConfig(bearerToken(cfg.AccessKey, cfg.SecretKey))
	if strings.TrimSpace(cfg.BaseURL) != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	// backstop for callers that pass a context without a deadline
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAICompleter{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

// bearerToken builds the Qianfan v2 credential from an access/secret key pair.
// A bare access key is passed through, which covers plain OpenAI-style API keys.
func bearerToken(ak, sk string) string {
	ak = strings.TrimSpace(ak)
	sk = strings.TrimSpace(sk)
	if sk == "" || strings.HasPrefix(ak, "bce-v3/") {
		return ak
	}
	return "bce-v3/" + ak + "/" + sk
}

func (c *OpenAICompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if strings.TrimSpace(c.model) == "" {
		return "", fmt.Errorf("AI_MODEL is not set")
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: req.Temperature,
		TopP:        req.TopP,
	})
	metrics.AIRequestDuration.WithLabelValues(operationLabel(req)).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("upstream request timed out: %w", err)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return RateLimitError{RetryAfter: retryAfterFromMessage(apiErr.Message)}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return RateLimitError{}
	}
	return fmt.Errorf("upstream request failed: %w", err)
}

// retryAfterFromMessage picks up hints like "retry after 3s" or "retry after 3 seconds".
func retryAfterFromMessage(msg string) time.Duration {
	lower := strings.ToLower(msg)
	idx := strings.Index(lower, "retry after ")
	if idx < 0 {
		return 0
	}
	fields := strings.Fields(lower[idx+len("retry after "):])
	if len(fields) == 0 {
		return 0
	}
	if d, err := time.ParseDuration(strings.TrimRight(fields[0], ".,;")); err == nil {
		return d
	}
	if n, err := strconv.Atoi(fields[0]); err == nil {
		return time.Duration(n) * time.Second
	}
	return 0
}

func operationLabel(req CompletionRequest) string {
	if req.Operation == "" {
		return "unknown"
	}
	return req.Operation
}
