package interfaces

import (
	"context"
)

// GenerationRequest is a single-turn text generation call
type GenerationRequest struct {
	// System is the fixed system instruction sent ahead of the prompt
	System string

	// Prompt is sent as the only user-role message
	Prompt string

	// MaxTokens bounds the output length. Zero uses the provider default.
	MaxTokens int
}

// TextGenerator defines the external text generation endpoint. Implementations
// wrap one provider (Anthropic Claude, Google Gemini) and normalize its
// response into a single narrative string.
type TextGenerator interface {
	// Generate submits the request and returns the generated narrative.
	// Multi-block responses are joined with a blank line.
	//
	// Parameters:
	//   - ctx: Context for cancellation; the implementation applies its own call timeout
	//   - req: System instruction, prompt and output bound
	//
	// Returns:
	//   - string: Generated narrative text
	//   - error: *common.GenerationEndpointError when the call fails or is rejected,
	//     *common.MalformedResponseError when a success response carries no text
	Generate(ctx context.Context, req GenerationRequest) (string, error)

	// Provider returns the provider name used in logs and errors (e.g., "claude")
	Provider() string
}
