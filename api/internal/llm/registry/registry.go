// Package registry builds the engine set from configuration.
package registry

import (
	"context"

	log "github.com/sirupsen/logrus"

	"math-solver/api/internal/config"
	"math-solver/api/internal/llm"
	"math-solver/api/internal/llm/anthropic"
	"math-solver/api/internal/llm/gemini"
	"math-solver/api/internal/llm/openai"
)

// Build constructs every engine. OpenAI and Anthropic are always present and
// report a missing key at call time; Gemini needs a key to dial, so it is left
// out without one. The returned func releases held clients.
func Build(ctx context.Context, cfg *config.Config) (*llm.Engines, func()) {
	engines := &llm.Engines{
		Default:   cfg.DefaultEngine,
		OpenAI:    openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL),
		Anthropic: anthropic.New(cfg.AnthropicAPIKey, cfg.AnthropicModel),
	}
	closeFn := func() {}

	if cfg.GeminiAPIKey != "" {
		g, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.WithError(err).Warn("gemini engine disabled")
		} else {
			engines.Gemini = g
			closeFn = func() { _ = g.Close() }
		}
	}

	log.WithFields(log.Fields{
		"default":   engines.Default,
		"openai":    cfg.OpenAIModel,
		"anthropic": cfg.AnthropicModel,
		"gemini":    engines.Gemini != nil,
		"event":     "engines_ready",
	}).Info("inference engines ready")
	return engines, closeFn
}
