// Package legal generates and renders formal demand-for-resolution documents.
package legal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/resodo/contact-crawler/internal/llm"
	"github.com/resodo/contact-crawler/internal/telemetry"
)

// ErrDocumentTooShort flags model output that cannot be a real document.
var ErrDocumentTooShort = errors.New("generated legal document is too short")

const minDocumentLength = 100

const documentPrompt = `Create a simple legal document for filing a formal complaint and requesting resolution.

COMPANY/INDIVIDUAL: %s
COMPLAINT DETAILS: %s

Please generate a formal legal document that only includes the following sections:

1. BACKGROUND: Detail the facts and circumstances of the complaint
2. SPECIFIC COMPLAINTS: List each specific issue with clear descriptions
3. LEGAL BASIS: Reference relevant consumer protection laws or regulations
4. DEMAND FOR RESOLUTION: Specific, actionable steps required to resolve the complaint
5. TIMELINE: Reasonable deadlines for response and resolution
6. CONSEQUENCES OF NON-COMPLIANCE: What actions will be taken if unresolved

Make the document professional, legally sound, and focused on complete resolution.
Include specific deadlines and clear expectations. Use formal legal language
while remaining clear and actionable. Ensure all demands are reasonable and
directly related to resolving the complaint described. Remove any markdown and output normal text.
Do not include any sections other than those listed above. Do not include a signature/date section or a title.`

// Generator asks the chat model for the demand document body.
type Generator struct {
	chatter llm.Chatter
	logger  *zap.Logger
}

// NewGenerator builds a Generator.
func NewGenerator(chatter llm.Chatter, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{chatter: chatter, logger: logger}
}

// GenerateDocument produces the validated document text for the respondent
// and complaint reason.
func (g *Generator) GenerateDocument(ctx context.Context, respondent, reason string) (string, error) {
	start := time.Now()
	doc, err := g.chatter.Chat(ctx, []llm.Message{
		{Role: "user", Content: fmt.Sprintf(documentPrompt, respondent, reason)},
	})
	telemetry.ObserveLLMCall("legal_document", err, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("generate legal document: %w", err)
	}
	return ValidateDocument(doc)
}

// ValidateDocument trims and sanity-checks generated document text.
func ValidateDocument(doc string) (string, error) {
	doc = strings.TrimSpace(doc)
	if len(doc) < minDocumentLength {
		return "", ErrDocumentTooShort
	}
	return doc, nil
}
