package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/equitas/internal/common"
	"github.com/ternarybob/equitas/internal/interfaces"
)

// NewGenerator creates the text generator selected by cfg.LLM.Provider.
// A provider without an API key yields a generator whose every call fails
// with an endpoint error, so the server still starts and reports are marked
// failed rather than left pending.
func NewGenerator(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (interfaces.TextGenerator, error) {
	llmConfig := cfg.LLM
	timeout := llmConfig.GetTimeout()

	logger.Info().
		Str("provider", string(llmConfig.Provider)).
		Int("max_tokens", llmConfig.MaxTokens).
		Dur("timeout", timeout).
		Msg("Initializing text generator")

	var (
		generator interfaces.TextGenerator
		err       error
		provider  string
	)

	switch llmConfig.Provider {
	case common.LLMProviderClaude, "":
		provider = ProviderClaude
		generator, err = NewClaudeService(llmConfig.Anthropic, llmConfig.MaxTokens, timeout, logger)
	case common.LLMProviderGemini:
		provider = ProviderGemini
		generator, err = NewGeminiService(ctx, llmConfig.Gemini, llmConfig.MaxTokens, timeout, logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}

	if errors.Is(err, ErrAPIKeyNotConfigured) {
		logger.Warn().
			Str("provider", provider).
			Msg("API key not configured, report generation will fail until one is set")
		return &unconfiguredGenerator{provider: provider}, nil
	}
	if err != nil {
		return nil, err
	}

	return generator, nil
}

// unconfiguredGenerator stands in for a provider that has no API key
type unconfiguredGenerator struct {
	provider string
}

func (g *unconfiguredGenerator) Provider() string {
	return g.provider
}

func (g *unconfiguredGenerator) Generate(ctx context.Context, req interfaces.GenerationRequest) (string, error) {
	return "", &common.GenerationEndpointError{Provider: g.provider, Err: ErrAPIKeyNotConfigured}
}
