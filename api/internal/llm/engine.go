package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Engine interface {
	Name() string
	GetModel() string
	// Solve sends the PNG (std base64) with the fixed tutor prompt and returns the raw reply text.
	Solve(ctx context.Context, pngBase64 string) (string, error)
}

// Engines holds the engines built at startup. Nil entries are not configured.
type Engines struct {
	Default   string
	OpenAI    Engine
	Gemini    Engine
	Anthropic Engine
}

var ErrUnknownEngine = errors.New("unknown llm_name; use 'gpt', 'gemini' or 'claude'")

func (e *Engines) GetEngine(llmName string) (Engine, error) {
	name := strings.ToLower(strings.TrimSpace(llmName))
	if name == "" {
		name = strings.ToLower(e.Default)
	}
	var eng Engine
	switch name {
	case "gpt", "openai":
		eng = e.OpenAI
	case "gemini":
		eng = e.Gemini
	case "claude", "anthropic":
		eng = e.Anthropic
	default:
		return nil, ErrUnknownEngine
	}
	if eng == nil {
		return nil, fmt.Errorf("llm engine %q is not configured", name)
	}
	return eng, nil
}
