package llm

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/equitas/internal/common"
	"github.com/ternarybob/equitas/internal/interfaces"
)

func newGeminiTestService(t *testing.T, handler http.HandlerFunc) *GeminiService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	service, err := NewGeminiService(context.Background(), common.GeminiConfig{
		APIKey:  "test-key",
		Model:   "gemini-2.5-flash",
		BaseURL: server.URL,
	}, 1000, 5*time.Second, arbor.NewLogger())
	require.NoError(t, err)
	return service
}

func TestGeminiGenerate_JoinsParts(t *testing.T) {
	service := newGeminiTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.5-flash:generateContent"), r.URL.Path)

		raw, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(raw), "write a report")
		assert.Contains(t, string(raw), "be helpful")

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"First"},{"text":"Second"}]},"finishReason":"STOP"}]}`)
	})

	text, err := service.Generate(context.Background(), interfaces.GenerationRequest{
		System: "be helpful",
		Prompt: "write a report",
	})
	require.NoError(t, err)
	assert.Equal(t, "First\n\nSecond", text)
}

func TestGeminiGenerate_NoCandidatesIsMalformed(t *testing.T) {
	service := newGeminiTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[]}`)
	})

	_, err := service.Generate(context.Background(), interfaces.GenerationRequest{Prompt: "p"})

	var malformed *common.MalformedResponseError
	assert.ErrorAs(t, err, &malformed)
}

func TestGeminiGenerate_ServerError(t *testing.T) {
	service := newGeminiTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)
	})

	_, err := service.Generate(context.Background(), interfaces.GenerationRequest{Prompt: "p"})

	var endpointErr *common.GenerationEndpointError
	require.ErrorAs(t, err, &endpointErr)
	assert.Equal(t, "gemini", endpointErr.Provider)
}
