package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bikeval/internal/domain"
	"github.com/kailas-cloud/bikeval/internal/domain/valuation"
	"github.com/kailas-cloud/bikeval/internal/format"
	"github.com/kailas-cloud/bikeval/internal/metrics"
)

const systemPrompt = "You are a used motorcycle pricing assistant. " +
	"Given a valuation, write two short sentences for a buyer: " +
	"whether the estimate looks fair next to the similar listings, and one practical tip. " +
	"Do not invent numbers that are not in the input."

// Narrator writes valuation summaries with an OpenAI-compatible chat model.
type Narrator struct {
	client    *openai.Client
	model     string
	timeout   time.Duration
	maxTokens int
	money     *format.Money
	logger    *zap.Logger
}

// Config holds the chat provider settings.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	MaxTokens int
	Logger    *zap.Logger
}

// NewNarrator creates an OpenAI-compatible narrator.
func NewNarrator(cfg *Config) *Narrator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 120
	}

	return &Narrator{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		timeout:   cfg.Timeout,
		maxTokens: maxTokens,
		money:     format.Default(),
		logger:    logger,
	}
}

// Summarize asks the model for a short buyer-facing note about v.
func (n *Narrator) Summarize(ctx context.Context, v *valuation.Valuation) (string, error) {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model:     n.model,
		MaxTokens: n.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: n.prompt(v)},
		},
	}

	start := time.Now()
	resp, err := n.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.NarratorRequestsTotal.WithLabelValues("error").Inc()
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.NarratorRequestsTotal.WithLabelValues("empty").Inc()
		return "", fmt.Errorf("empty chat completion: %w", domain.ErrNarratorUnavailable)
	}

	metrics.NarratorRequestsTotal.WithLabelValues("success").Inc()
	n.logger.Debug("Valuation summary generated",
		zap.String("model", n.model),
		zap.Duration("duration", duration),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (n *Narrator) HealthCheck(ctx context.Context) error {
	if _, err := n.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (n *Narrator) prompt(v *valuation.Valuation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bike: %s (%s)\n", v.Label, v.Category)
	fmt.Fprintf(&b, "Year: %d, age %d years, %s km, %.0f cc\n",
		v.Year, v.Features.Age, n.money.Number(v.Features.KmsDriven), v.Features.Power)
	fmt.Fprintf(&b, "Estimate: %s, fair range %s\n", n.money.Format(v.Estimate), n.money.Range(v.Range))
	if len(v.Comparables) == 0 {
		b.WriteString("Similar listings: none in range\n")
		return b.String()
	}
	b.WriteString("Similar listings:\n")
	for i := range v.Comparables {
		l := &v.Comparables[i]
		fmt.Fprintf(&b, "- %s, %s, %s km, %s\n",
			l.Name(), l.City(), n.money.Number(l.KmsDriven()), n.money.Format(l.Price()))
	}
	return b.String()
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrNarratorUnavailable.
func parseAPIError(err error) error {
	wrap := domain.ErrNarratorUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("chat API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("chat API error %d: %w", reqErr.HTTPStatusCode, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("chat request failed: %v: %w", err, wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
