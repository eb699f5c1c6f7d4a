package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/trendscout/trendscout/internal/platform/config"
)

const (
	rateLimiterBurst = 5
	errRateLimiter   = "rate limiter: %w"
)

// ErrEmptyCompletion indicates the provider returned no choices.
var ErrEmptyCompletion = errors.New("empty completion response")

type openaiClient struct {
	cfg         *config.Config
	client      *openai.Client
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter
}

// NewOpenAI returns a Client backed by the OpenAI chat completion API.
func NewOpenAI(cfg *config.Config, logger *zerolog.Logger) Client {
	return &openaiClient{
		cfg:         cfg,
		client:      openai.NewClient(cfg.LLMAPIKey),
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.LLMRateLimitRPS), rateLimiterBurst),
	}
}

func (c *openaiClient) Classify(ctx context.Context, text, context_ string) (Verdict, error) {
	raw, err := c.complete(ctx, fmt.Sprintf(classifyPrompt, text, context_), nil)
	if err != nil {
		return "", err
	}

	verdict, ok := parseVerdict(raw)
	if !ok {
		return "", fmt.Errorf("%w: classify returned %q", ErrUnparseableResponse, raw)
	}

	return verdict, nil
}

func (c *openaiClient) ResolveTitle(ctx context.Context, text, context_ string) (Resolution, error) {
	format := &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}

	raw, err := c.complete(ctx, fmt.Sprintf(resolvePrompt, text, context_), format)
	if err != nil {
		return Resolution{}, err
	}

	var res Resolution
	if err := json.Unmarshal([]byte(extractJSON(raw)), &res); err != nil {
		return Resolution{}, fmt.Errorf("%w: resolve returned %q", ErrUnparseableResponse, raw)
	}

	// An explicit null title is a valid answer: the model could not
	// identify a movie. The caller filters the item rather than erroring.
	res.Title = strings.TrimSpace(res.Title)
	if strings.EqualFold(res.Title, "null") {
		return Resolution{}, nil
	}

	if !validYear(res.Year) {
		res.Year = 0
	}

	return res, nil
}

func (c *openaiClient) complete(ctx context.Context, prompt string, format *openai.ChatCompletionResponseFormat) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf(errRateLimiter, err)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.LLMModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: format,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var _ Client = (*openaiClient)(nil)
