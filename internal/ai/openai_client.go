// internal/ai/openai_client.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

type OpenAIClient struct {
	client *openai.Client
}

func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is empty")
	}
	return &OpenAIClient{client: openai.NewClient(apiKey)}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	model := opts.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		req.MaxCompletionTokens = opts.MaxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		rateLimited := errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests
		return "", &ExternalServiceError{Provider: "openai", RateLimited: rateLimited, Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &ExternalServiceError{Provider: "openai", Err: fmt.Errorf("no choices returned")}
	}
	return resp.Choices[0].Message.Content, nil
}
