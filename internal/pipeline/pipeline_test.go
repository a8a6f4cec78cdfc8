package pipeline

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/resodo/contact-crawler/internal/cache"
	"github.com/resodo/contact-crawler/internal/hash/sha256"
	pubmemory "github.com/resodo/contact-crawler/internal/publisher/memory"
	"github.com/resodo/contact-crawler/internal/report"
	blobmemory "github.com/resodo/contact-crawler/internal/storage/memory"
	storememory "github.com/resodo/contact-crawler/internal/store/memory"
	"github.com/resodo/contact-crawler/internal/telemetry"
)

func TestMain(m *testing.M) {
	telemetry.Init()
	os.Exit(m.Run())
}

type fakeFinder struct {
	text string
	err  error
}

func (f fakeFinder) FindContactPage(_ context.Context, startURL string) (report.CrawlResult, error) {
	if f.err != nil {
		return report.CrawlResult{}, f.err
	}
	return report.CrawlResult{Pages: []report.PageCapture{
		{URL: startURL, StatusCode: 200, Text: f.text},
	}}, nil
}

type fakeExtractor struct {
	contacts []report.Contact
	err      error
}

func (f fakeExtractor) ExtractContacts(context.Context, string) ([]report.Contact, error) {
	return f.contacts, f.err
}

type fakeGenerator struct {
	doc string
	err error
}

func (f fakeGenerator) GenerateDocument(context.Context, string, string) (string, error) {
	return f.doc, f.err
}

type fakeRenderer struct {
	pdf []byte
	err error
}

func (f fakeRenderer) RenderPDF(string, report.Request, []report.Contact) ([]byte, error) {
	return f.pdf, f.err
}

type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }

type fakeIDs struct{ id string }

func (f fakeIDs) NewID() (string, error) { return f.id, nil }

var testContacts = []report.Contact{
	{Type: report.ContactTypeEmail, Value: "info@acme.test"},
}

var testRequest = report.Request{
	Respondent: "Acme Corp",
	Website:    "https://acme.test",
	Filer:      "Jane Doe",
	FilerInfo:  []string{"jane@example.test"},
	Resolution: "refund my order please",
}

type fixture struct {
	store     *storememory.ReportStore
	blobs     *blobmemory.BlobStore
	publisher *pubmemory.Publisher
	cache     *cache.ReportCache
}

func newPipeline(t *testing.T, finder report.ContactFinder, extractor report.Extractor,
	generator report.DocumentGenerator, renderer report.Renderer) (*Pipeline, fixture) {
	t.Helper()

	fx := fixture{
		store:     storememory.NewReportStore(),
		blobs:     blobmemory.NewBlobStore(),
		publisher: pubmemory.New(),
		cache:     cache.New(cache.Config{MaxEntries: 8, TTL: time.Minute}),
	}
	p := New(
		finder, extractor, generator, renderer,
		fx.store, fx.blobs, fx.publisher, fx.cache,
		sha256.New(),
		fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)},
		fakeIDs{id: "r-1"},
		Config{BlobPrefix: "reports", Topic: "report-events"},
		nil,
	)
	return p, fx
}

func TestProcessSuccess(t *testing.T) {
	t.Parallel()

	p, fx := newPipeline(t,
		fakeFinder{text: "Email us at info@acme.test today."},
		fakeExtractor{contacts: testContacts},
		fakeGenerator{doc: "LEGAL DOCUMENT BODY"},
		fakeRenderer{pdf: []byte("%PDF-1.4 fake")},
	)

	outcome, err := p.Process(context.Background(), testRequest)
	require.NoError(t, err)
	require.False(t, outcome.CacheHit)
	require.Equal(t, report.StatusSucceeded, outcome.Report.Status)
	require.Equal(t, "r-1", outcome.Report.ID)
	require.Equal(t, testContacts, outcome.Report.Contacts)
	require.Equal(t, []byte("%PDF-1.4 fake"), outcome.PDF)
	require.Equal(t, "mem://reports/r-1.pdf", outcome.Report.PDFURI)
	require.Equal(t, 1, outcome.Report.PagesSeen)

	// Persisted.
	stored, err := fx.store.GetReport(context.Background(), "r-1")
	require.NoError(t, err)
	require.Equal(t, report.StatusSucceeded, stored.Status)

	// Archived.
	_, ok := fx.blobs.Object("reports/r-1.pdf")
	require.True(t, ok)

	// Published with a verifiable digest.
	events := fx.publisher.Events()
	require.Len(t, events, 1)
	require.Equal(t, "report-events", events[0].Topic)
	payload, ok := events[0].Payload.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "r-1", payload["report_id"])
	require.NotEmpty(t, payload["pdf_sha256"])
}

func TestProcessCacheHit(t *testing.T) {
	t.Parallel()

	p, _ := newPipeline(t,
		fakeFinder{text: "Email us at info@acme.test today."},
		fakeExtractor{contacts: testContacts},
		fakeGenerator{doc: "LEGAL DOCUMENT BODY"},
		fakeRenderer{pdf: []byte("%PDF-1.4 fake")},
	)

	first, err := p.Process(context.Background(), testRequest)
	require.NoError(t, err)
	require.False(t, first.CacheHit)

	second, err := p.Process(context.Background(), testRequest)
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, first.Report.ID, second.Report.ID)
	require.Empty(t, second.PDF)
}

func TestProcessNoContactPatterns(t *testing.T) {
	t.Parallel()

	p, fx := newPipeline(t,
		fakeFinder{text: "Just marketing copy with no contact details."},
		fakeExtractor{contacts: testContacts},
		fakeGenerator{doc: "unused"},
		fakeRenderer{pdf: []byte("unused")},
	)

	outcome, err := p.Process(context.Background(), testRequest)
	require.NoError(t, err)
	require.Equal(t, report.StatusNoContacts, outcome.Report.Status)
	require.Equal(t, "No contact information found", outcome.Report.Message)
	require.Empty(t, outcome.PDF)
	require.Equal(t, 0, fx.blobs.Len())
}

func TestProcessCrawlFailureDegrades(t *testing.T) {
	t.Parallel()

	p, _ := newPipeline(t,
		fakeFinder{err: errors.New("site unreachable")},
		fakeExtractor{},
		fakeGenerator{doc: "unused"},
		fakeRenderer{pdf: []byte("unused")},
	)

	outcome, err := p.Process(context.Background(), testRequest)
	require.NoError(t, err)
	require.Equal(t, report.StatusNoContacts, outcome.Report.Status)
}

func TestProcessCrawlCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, _ := newPipeline(t,
		fakeFinder{err: context.Canceled},
		fakeExtractor{},
		fakeGenerator{doc: "unused"},
		fakeRenderer{pdf: []byte("unused")},
	)

	_, err := p.Process(ctx, testRequest)
	require.Error(t, err)
}

func TestProcessDocumentFailureFallsBackToJSON(t *testing.T) {
	t.Parallel()

	p, _ := newPipeline(t,
		fakeFinder{text: "Email us at info@acme.test today."},
		fakeExtractor{contacts: testContacts},
		fakeGenerator{err: errors.New("model refused")},
		fakeRenderer{pdf: []byte("unused")},
	)

	outcome, err := p.Process(context.Background(), testRequest)
	require.NoError(t, err)
	require.Equal(t, report.StatusSucceeded, outcome.Report.Status)
	require.Empty(t, outcome.PDF)
	require.Contains(t, outcome.Report.PDFError, "model refused")
}

func TestProcessRenderFailureFallsBackToJSON(t *testing.T) {
	t.Parallel()

	p, _ := newPipeline(t,
		fakeFinder{text: "Email us at info@acme.test today."},
		fakeExtractor{contacts: testContacts},
		fakeGenerator{doc: "LEGAL DOCUMENT BODY"},
		fakeRenderer{err: errors.New("layout failed")},
	)

	outcome, err := p.Process(context.Background(), testRequest)
	require.NoError(t, err)
	require.Equal(t, report.StatusSucceeded, outcome.Report.Status)
	require.Empty(t, outcome.PDF)
	require.Contains(t, outcome.Report.PDFError, "layout failed")
}
