// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reasoning

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/pdiddy/paper-reviewer/pkg/types"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint,
// OpenRouter by default.
type OpenAIClient struct {
	Model       string
	MaxTokens   int
	Temperature float64

	client openai.Client
}

// NewOpenAIClient builds a client from configuration. Retries are handled by
// the invoker, so the SDK's own retry loop is disabled.
func NewOpenAIClient(cfg types.ModelConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, &ModelError{Kind: KindAuthFailure, Err: errors.New("no API key configured")}
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithHeader("X-Title", "paper-reviewer"),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIClient{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		client:      openai.NewClient(opts...),
	}, nil
}

// Complete sends one system and one user message and returns the reply text.
func (c *OpenAIClient) Complete(ctx context.Context, p Prompt) (string, error) {
	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(p.System),
		openai.UserMessage(p.User),
	}
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.Model),
		Messages:    msgs,
		Temperature: openai.Float(c.Temperature),
	}
	if c.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			if me := classifyStatus(apiErr.StatusCode, err); me != nil {
				return "", me
			}
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", &ModelError{Kind: KindMalformed, Err: errors.New("empty choices")}
	}
	return resp.Choices[0].Message.Content, nil
}
