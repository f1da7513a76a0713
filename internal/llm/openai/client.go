// Package openai implements the triage.Provider interface on top of the
// OpenAI chat completion API, as an alternate backend to Gemini.
package openai

import (
	"context"
	"errors"

	sdk "github.com/sashabaranov/go-openai"
)

// Client calls the OpenAI chat completion API.
type Client struct {
	client *sdk.Client
	model  string
}

// New creates an OpenAI-backed client. A missing key fails here, before any
// network call is ever attempted.
func New(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	if model == "" {
		return nil, errors.New("openai: model is required")
	}
	return &Client{
		client: sdk.NewClient(apiKey),
		model:  model,
	}, nil
}

// Generate sends the prompt as a single user message and returns the
// assistant's response text. Temperature is kept low; the prompt already
// instructs the model to break ties toward higher urgency, and we want as
// little sampling variance on top of that as possible.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, sdk.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.2,
		Messages: []sdk.ChatCompletionMessage{
			{Role: sdk.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
