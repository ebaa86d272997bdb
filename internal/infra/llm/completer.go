package llm

import (
	"context"
	"errors"

	"github.com/yanqian/support-expert/internal/domain/support"
	"github.com/yanqian/support-expert/internal/infra/llm/chatgpt"
	"github.com/yanqian/support-expert/pkg/metrics"
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// ChatGPTCompleter sends the prompt as a single user message.
type ChatGPTCompleter struct {
	client chatClient
}

// NewChatGPTCompleter constructs the adapter.
func NewChatGPTCompleter(client chatClient) *ChatGPTCompleter {
	return &ChatGPTCompleter{client: client}
}

// Complete implements support.Completer. The first choice is returned as-is.
func (c *ChatGPTCompleter) Complete(ctx context.Context, req support.CompletionRequest) (support.Completion, error) {
	resp, err := c.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Messages:    []chatgpt.Message{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return support.Completion{}, err
	}
	if len(resp.Choices) == 0 {
		return support.Completion{}, errors.New("completion returned no choices")
	}
	text := resp.Choices[0].Message.Content
	usage := metrics.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if usage.IsZero() {
		usage = metrics.EstimateUsage(req.Model, req.Prompt, text)
	}
	return support.Completion{Text: text, Usage: usage}, nil
}

// EchoCompleter answers without external calls, for local runs.
type EchoCompleter struct{}

// Complete returns the escalation marker so local runs never invent answers.
func (EchoCompleter) Complete(_ context.Context, req support.CompletionRequest) (support.Completion, error) {
	text := support.EscalationMarker
	return support.Completion{Text: text, Usage: metrics.EstimateUsage(req.Model, req.Prompt, text)}, nil
}

var (
	_ support.Completer = (*ChatGPTCompleter)(nil)
	_ support.Completer = EchoCompleter{}
)
