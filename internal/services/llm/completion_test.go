package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/equitas/internal/common"
)

func TestNewCompletion(t *testing.T) {
	tests := []struct {
		name     string
		blocks   []string
		wantKind CompletionKind
		wantText string
	}{
		{"single block", []string{"Report body"}, CompletionSingle, "Report body"},
		{"multi block", []string{"Part one", "Part two", "Part three"}, CompletionMulti, "Part one\n\nPart two\n\nPart three"},
		{"blank blocks dropped", []string{"", "Only text", "  "}, CompletionSingle, "Only text"},
		{"blank block between parts", []string{"A", "  ", "B"}, CompletionMulti, "A\n\nB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completion, err := NewCompletion(ProviderClaude, tt.blocks)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, completion.Kind)
			assert.Equal(t, tt.wantText, completion.Text())
		})
	}
}

func TestNewCompletion_NoText(t *testing.T) {
	for _, blocks := range [][]string{nil, {}, {"", "\n"}} {
		_, err := NewCompletion(ProviderGemini, blocks)

		var malformed *common.MalformedResponseError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, ProviderGemini, malformed.Provider)
	}
}
