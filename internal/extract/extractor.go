package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"

	"github.com/resodo/contact-crawler/internal/llm"
	"github.com/resodo/contact-crawler/internal/report"
	"github.com/resodo/contact-crawler/internal/telemetry"
)

const extractionPrompt = `You are an intelligent contact information extractor.

Given the following web page text,
extract all relevant contact information (phone and email, exclude facsimile numbers).

Return exactly a single JSON array and nothing else:
[
  {
    "type": "phone" | "email",
    "value": "actual contact info"
  },
  ...
]

Web page text:
"""
%s
"""`

var jsonArrayPattern = regexp.MustCompile(`(?s)\[\s*\{.*?\}\s*\]`)

// ContactExtractor asks the chat model for contacts found in page text.
type ContactExtractor struct {
	chatter llm.Chatter
	logger  *zap.Logger
}

// NewContactExtractor builds a ContactExtractor.
func NewContactExtractor(chatter llm.Chatter, logger *zap.Logger) *ContactExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactExtractor{chatter: chatter, logger: logger}
}

// ExtractContacts prompts the model and parses its JSON reply. Model or
// parse failures degrade to an empty contact list; the pipeline treats
// "no contacts" as a valid outcome, not an error.
func (e *ContactExtractor) ExtractContacts(ctx context.Context, pageText string) ([]report.Contact, error) {
	if strings.TrimSpace(pageText) == "" {
		return nil, nil
	}

	start := time.Now()
	reply, err := e.chatter.Chat(ctx, []llm.Message{
		{Role: "user", Content: fmt.Sprintf(extractionPrompt, pageText)},
	})
	telemetry.ObserveLLMCall("contact_extraction", err, time.Since(start))
	if err != nil {
		e.logger.Warn("contact extraction chat failed", zap.Error(err))
		return nil, nil
	}

	contacts := ParseContacts(reply)
	if len(contacts) == 0 {
		e.logger.Info("no contacts parsed from model reply")
	}
	return contacts, nil
}

// ParseContacts locates a JSON array of contacts in a model reply, repairing
// malformed JSON when necessary.
func ParseContacts(reply string) []report.Contact {
	raw := jsonArrayPattern.FindString(reply)
	if raw == "" {
		return nil
	}

	var parsed []report.Contact
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(raw)
		if repairErr != nil {
			return nil
		}
		if err := json.Unmarshal([]byte(repaired), &parsed); err != nil {
			return nil
		}
	}

	out := make([]report.Contact, 0, len(parsed))
	for _, c := range parsed {
		c.Value = strings.TrimSpace(c.Value)
		if c.Value == "" {
			continue
		}
		if c.Type != report.ContactTypePhone && c.Type != report.ContactTypeEmail {
			continue
		}
		out = append(out, c)
	}
	return out
}
