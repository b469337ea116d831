package llm

import (
	"errors"
	"strings"

	"github.com/ternarybob/equitas/internal/common"
)

// ErrAPIKeyNotConfigured is wrapped by the endpoint error returned from a
// generator whose provider has no API key.
var ErrAPIKeyNotConfigured = errors.New("API key not configured")

// CompletionKind distinguishes a single text block reply from a multi-block one
type CompletionKind int

const (
	CompletionSingle CompletionKind = iota
	CompletionMulti
)

// blockSeparator joins the text blocks of a multi-block reply
const blockSeparator = "\n\n"

// Completion is the normalized text of a generation reply.
// Single carries exactly one block. Multi carries two or more in reply order.
type Completion struct {
	Kind   CompletionKind
	Blocks []string
}

// Text returns the narrative: the single block, or every block joined by a blank line.
func (c Completion) Text() string {
	if c.Kind == CompletionSingle && len(c.Blocks) == 1 {
		return c.Blocks[0]
	}
	return strings.Join(c.Blocks, blockSeparator)
}

// NewCompletion builds a Completion from the text blocks of a reply.
// Blank blocks are dropped. A reply with no remaining text is malformed.
func NewCompletion(provider string, blocks []string) (Completion, error) {
	kept := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if strings.TrimSpace(block) == "" {
			continue
		}
		kept = append(kept, block)
	}

	switch len(kept) {
	case 0:
		return Completion{}, &common.MalformedResponseError{
			Provider: provider,
			Detail:   "no text content in response",
		}
	case 1:
		return Completion{Kind: CompletionSingle, Blocks: kept}, nil
	default:
		return Completion{Kind: CompletionMulti, Blocks: kept}, nil
	}
}
