package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAIInvoker implements Invoker over the OpenAI chat completions API.
type OpenAIInvoker struct {
	client openai.Client
}

func NewOpenAIInvoker(apiKey string) (*OpenAIInvoker, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return &OpenAIInvoker{client: openai.NewClient(option.WithAPIKey(apiKey))}, nil
}

// Invoke runs one chat completion and returns the first choice's text.
// Errors are returned untouched so the orchestrator can classify them as
// transport failures; a response with no choices comes back as empty text,
// which the orchestrator treats the same way.
func (c *OpenAIInvoker) Invoke(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
