package llm

import (
	"context"
	"errors"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/equitas/internal/common"
	"github.com/ternarybob/equitas/internal/interfaces"
)

// ProviderClaude names the Anthropic provider in logs and errors
const ProviderClaude = "claude"

// ClaudeService implements the TextGenerator interface using the Anthropic Messages API.
// Every call is a single attempt; the SDK's own retry loop is disabled.
type ClaudeService struct {
	config    common.AnthropicConfig
	logger    arbor.ILogger
	client    anthropic.Client
	timeout   time.Duration
	maxTokens int
}

// Compile-time assertion
var _ interfaces.TextGenerator = (*ClaudeService)(nil)

// NewClaudeService creates a new Claude text generator.
//
// Parameters:
//   - config: Anthropic API key, model and optional base URL
//   - maxTokens: Default output bound when a request does not set one
//   - timeout: Upper bound for a single generation call
//   - logger: Structured logger for service operations
//
// Returns:
//   - *ClaudeService: Initialized service ready for use
//   - error: ErrAPIKeyNotConfigured when no API key is set
func NewClaudeService(config common.AnthropicConfig, maxTokens int, timeout time.Duration, logger arbor.ILogger) (*ClaudeService, error) {
	if config.APIKey == "" {
		return nil, ErrAPIKeyNotConfigured
	}

	if config.Model == "" {
		config.Model = "claude-3-5-haiku-20241022"
	}
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	service := &ClaudeService{
		config:    config,
		logger:    logger,
		client:    anthropic.NewClient(opts...),
		timeout:   timeout,
		maxTokens: maxTokens,
	}

	logger.Debug().
		Str("model", config.Model).
		Dur("timeout", timeout).
		Int("max_tokens", maxTokens).
		Msg("Claude text generator initialized")

	return service, nil
}

// Provider returns "claude"
func (s *ClaudeService) Provider() string {
	return ProviderClaude
}

// Generate sends the system instruction and prompt as a single user turn and
// returns the reply's text blocks joined by a blank line.
func (s *ClaudeService) Generate(ctx context.Context, req interfaces.GenerationRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.maxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	startTime := time.Now()
	s.logger.Debug().
		Str("model", s.config.Model).
		Int("prompt_length", len(req.Prompt)).
		Msg("Starting Claude generation")

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		endpointErr := &common.GenerationEndpointError{Provider: ProviderClaude, Err: err}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			endpointErr.StatusCode = apiErr.StatusCode
		}
		s.logger.Error().
			Err(err).
			Int("status_code", endpointErr.StatusCode).
			Dur("duration", time.Since(startTime)).
			Msg("Claude generation failed")
		return "", endpointErr
	}

	var blocks []string
	if resp != nil {
		for _, block := range resp.Content {
			if block.Type == "text" {
				blocks = append(blocks, block.Text)
			}
		}
	}

	completion, err := NewCompletion(ProviderClaude, blocks)
	if err != nil {
		s.logger.Error().Err(err).Msg("Claude returned no usable text")
		return "", err
	}

	text := completion.Text()
	s.logger.Debug().
		Int("blocks", len(completion.Blocks)).
		Int("response_length", len(text)).
		Dur("duration", time.Since(startTime)).
		Msg("Claude generation completed")

	return text, nil
}
