package keywords

import (
	"context"

	"github.com/eleco-media/amaike/pkg/anthropic"
)

// AnthropicCompleter adapts the Anthropic messages client to the Completer
// interface, for deployments that extract keywords on a cheaper Claude model
// instead of a second Gemini call.
type AnthropicCompleter struct {
	client anthropic.Client
	model  string
}

// NewAnthropicCompleter creates a completer over an Anthropic client.
func NewAnthropicCompleter(client anthropic.Client, model string) *AnthropicCompleter {
	return &AnthropicCompleter{client: client, model: model}
}

func (c *AnthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     c.model,
		MaxTokens: 256,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
