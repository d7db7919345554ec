package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"math-solver/api/internal/llm"
)

type Engine struct {
	Model  string
	client *genai.Client
}

// New dials the Gemini API once; Close releases the client.
func New(ctx context.Context, apiKey, model string) (*Engine, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Engine{Model: strings.TrimSpace(model), client: cl}, nil
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Close() error { return e.client.Close() }

func (e *Engine) Solve(ctx context.Context, pngBase64 string) (string, error) {
	img, err := base64.StdEncoding.DecodeString(pngBase64)
	if err != nil {
		return "", fmt.Errorf("gemini solve: bad base64: %w", err)
	}

	m := e.client.GenerativeModel(e.Model)
	m.SetTemperature(llm.Temperature)
	m.SetMaxOutputTokens(llm.MaxTokens)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(llm.SystemPrompt)},
	}

	resp, err := m.GenerateContent(ctx,
		genai.Text(llm.UserPrompt),
		genai.ImageData("png", img),
	)
	if err != nil {
		return "", fmt.Errorf("gemini solve: %w", err)
	}
	txt := collectText(resp)
	if txt == "" {
		return "", errors.New("gemini solve: empty response")
	}
	return txt, nil
}

// collectText joins the text parts of the first candidate that has any.
func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	return ""
}
