package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"math-solver/api/internal/llm"
)

type Engine struct {
	APIKey string
	Model  string
	client anthropic.Client
}

// New builds the messages client once. Extra options go after the defaults.
func New(key, model string, opts ...option.RequestOption) *Engine {
	opts = append([]option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
	}, opts...)
	return &Engine{
		APIKey: strings.TrimSpace(key),
		Model:  model,
		client: anthropic.NewClient(opts...),
	}
}

func (e *Engine) Name() string { return "claude" }

func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Solve(ctx context.Context, pngBase64 string) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("ANTHROPIC_API_KEY is empty")
	}

	msg, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(e.Model),
		MaxTokens:   llm.MaxTokens,
		Temperature: anthropic.Float(llm.Temperature),
		System:      []anthropic.TextBlockParam{{Text: llm.SystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(llm.UserPrompt),
				anthropic.NewImageBlockBase64("image/png", pngBase64),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic solve: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("anthropic solve: empty response")
	}
	return sb.String(), nil
}
