package report

import (
	"context"
	"time"
)

// Store persists reports.
type Store interface {
	CreateReport(ctx context.Context, r Report) error
	GetReport(ctx context.Context, id string) (Report, error)
}

// BlobStore writes raw artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Publisher pushes completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// ContactFinder locates a contact page starting from a site root.
type ContactFinder interface {
	FindContactPage(ctx context.Context, startURL string) (CrawlResult, error)
}

// Extractor pulls contact details out of page text.
type Extractor interface {
	ExtractContacts(ctx context.Context, pageText string) ([]Contact, error)
}

// DocumentGenerator produces the legal demand text for a request.
type DocumentGenerator interface {
	GenerateDocument(ctx context.Context, respondent, reason string) (string, error)
}

// Renderer turns a legal document into a PDF.
type Renderer interface {
	RenderPDF(doc string, req Request, contacts []Contact) ([]byte, error)
}

// Hasher computes digests for deduplication/integrity.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces report IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
