package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/equitas/internal/common"
	"github.com/ternarybob/equitas/internal/interfaces"
	"google.golang.org/genai"
)

// ProviderGemini names the Google provider in logs and errors
const ProviderGemini = "gemini"

// GeminiService implements the TextGenerator interface using the Google GenAI SDK.
type GeminiService struct {
	config    common.GeminiConfig
	logger    arbor.ILogger
	client    *genai.Client
	timeout   time.Duration
	maxTokens int
}

// Compile-time assertion
var _ interfaces.TextGenerator = (*GeminiService)(nil)

// NewGeminiService creates a new Gemini text generator.
func NewGeminiService(ctx context.Context, config common.GeminiConfig, maxTokens int, timeout time.Duration, logger arbor.ILogger) (*GeminiService, error) {
	if config.APIKey == "" {
		return nil, ErrAPIKeyNotConfigured
	}

	if config.Model == "" {
		config.Model = "gemini-2.5-flash"
	}
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger.Debug().
		Str("model", config.Model).
		Dur("timeout", timeout).
		Int("max_tokens", maxTokens).
		Msg("Gemini text generator initialized")

	return &GeminiService{
		config:    config,
		logger:    logger,
		client:    client,
		timeout:   timeout,
		maxTokens: maxTokens,
	}, nil
}

// Provider returns "gemini"
func (s *GeminiService) Provider() string {
	return ProviderGemini
}

// Generate sends the prompt as a single user turn with the system instruction
// attached and returns the first candidate's text parts joined by a blank line.
func (s *GeminiService) Generate(ctx context.Context, req interfaces.GenerationRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.maxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	startTime := time.Now()
	resp, err := s.client.Models.GenerateContent(ctx, s.config.Model, genai.Text(req.Prompt), config)
	if err != nil {
		endpointErr := &common.GenerationEndpointError{
			Provider:   ProviderGemini,
			StatusCode: geminiStatusCode(err),
			Err:        err,
		}
		s.logger.Error().
			Err(err).
			Int("status_code", endpointErr.StatusCode).
			Dur("duration", time.Since(startTime)).
			Msg("Gemini generation failed")
		return "", endpointErr
	}

	var blocks []string
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part != nil && part.Text != "" && !part.Thought {
				blocks = append(blocks, part.Text)
			}
		}
	}

	completion, err := NewCompletion(ProviderGemini, blocks)
	if err != nil {
		s.logger.Error().Err(err).Msg("Gemini returned no usable text")
		return "", err
	}

	text := completion.Text()
	s.logger.Debug().
		Int("blocks", len(completion.Blocks)).
		Int("response_length", len(text)).
		Dur("duration", time.Since(startTime)).
		Msg("Gemini generation completed")

	return text, nil
}

func geminiStatusCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	return 0
}
