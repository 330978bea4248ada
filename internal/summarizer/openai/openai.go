// Package openai implements the summarizer boundary on top of the OpenAI
// chat-completions API via the official Go SDK.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/sakif/doctalk/internal/summarizer"
)

// systemPrompt pins the model to the one job this client has. Keeping it
// short and directive avoids the model chatting back instead of summarizing.
const systemPrompt = "You summarize documents. Reply with a concise summary " +
	"of the user's text in at most five sentences. Reply with the summary " +
	"only, no preamble."

// Client calls the chat-completions endpoint to summarize text.
type Client struct {
	api   openai.Client
	model openai.ChatModel
}

var _ summarizer.Summarizer = (*Client)(nil)

// New builds a Client for the given API key and model name. An empty model
// falls back to gpt-4o-mini, which is cheap and plenty for summarization.
func New(apiKey, model string) *Client {
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	return &Client{
		api:   openai.NewClient(option.WithAPIKey(apiKey)),
		model: openai.ChatModel(model),
	}
}

// Summarize sends text to the model and returns its reply.
// Errors are returned as-is for the caller to classify — the upload flow
// treats a failed summarization as a failed upload, not a degraded one.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
