package clients

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// LLMClient talks to an OpenAI-compatible chat completions endpoint.
// It is used to pull structured fields out of free text, so requests
// run at temperature zero.
type LLMClient struct {
	httpClient *resty.Client
	model      string
	logger     *zap.Logger
}

func NewLLMClient(baseURL, apiKey, model string, logger *zap.Logger) *LLMClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(60*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+apiKey)

	return &LLMClient{
		httpClient: client,
		model:      model,
		logger:     logger,
	}
}

// Complete sends one system+user exchange and returns the assistant
// text.
func (c *LLMClient) Complete(ctx context.Context, system, user string) (string, error) {
	request := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0,
	}

	var response chatResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("llm request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("llm request: status %d", resp.StatusCode())
	}
	if response.Error != nil {
		return "", fmt.Errorf("llm request: %s", response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("llm request: empty response")
	}

	return response.Choices[0].Message.Content, nil
}

// StripCodeFences unwraps a ```json ... ``` block if the model added
// one around its answer.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
