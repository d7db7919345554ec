package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"math-solver/api/internal/llm"
)

type Engine struct {
	APIKey string
	Model  string
	client openai.Client
}

// New builds the chat completions client once. baseURL may be empty.
func New(key, model, baseURL string) *Engine {
	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Engine{
		APIKey: strings.TrimSpace(key),
		Model:  model,
		client: openai.NewClient(opts...),
	}
}

func (e *Engine) Name() string { return "gpt" }

func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Solve(ctx context.Context, pngBase64 string) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("OPENAI_API_KEY is empty")
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(llm.SystemPrompt),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(llm.UserPrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: llm.DataURL("image/png", pngBase64),
				}),
			}),
		},
		MaxTokens:   openai.Int(llm.MaxTokens),
		Temperature: openai.Float(llm.Temperature),
	}

	resp, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai solve: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errors.New("openai solve: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
