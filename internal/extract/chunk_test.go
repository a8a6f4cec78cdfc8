package extract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestContactChunkFindsEmail(t *testing.T) {
	t.Parallel()

	text := "About our company. Reach us at sales@example.com for quotes."
	chunk := ContactChunk(text, 10)
	if !strings.Contains(chunk, "sales@example.com") {
		t.Fatalf("chunk %q does not contain the email", chunk)
	}
	if len(chunk) >= len(text) {
		t.Fatalf("expected a narrowed window, got the whole text")
	}
}

func TestContactChunkFindsPhone(t *testing.T) {
	t.Parallel()

	text := "Call our support line at (555) 123-4567 during business hours."
	chunk := ContactChunk(text, 1000)
	if !strings.Contains(chunk, "(555) 123-4567") {
		t.Fatalf("chunk %q missing phone number", chunk)
	}
}

func TestContactChunkPicksEarliestMatch(t *testing.T) {
	t.Parallel()

	text := "first@example.com then much later 555-123-4567"
	chunk := ContactChunk(text, 5)
	if !strings.Contains(chunk, "first@example.com") {
		t.Fatalf("expected chunk around the earliest match, got %q", chunk)
	}
}

func TestContactChunkStaysOnRuneBoundaries(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("é", 40) + " write to info@acme.test soon " + strings.Repeat("ü", 40)
	for context := 1; context <= 12; context++ {
		chunk := ContactChunk(text, context)
		if !utf8.ValidString(chunk) {
			t.Fatalf("context %d produced invalid UTF-8: %q", context, chunk)
		}
		if !strings.Contains(chunk, "info@acme.test") {
			t.Fatalf("context %d chunk missing the email: %q", context, chunk)
		}
	}
}

func TestContactChunkNoMatch(t *testing.T) {
	t.Parallel()

	if chunk := ContactChunk("nothing to see here", 100); chunk != "" {
		t.Fatalf("expected empty chunk, got %q", chunk)
	}
}
