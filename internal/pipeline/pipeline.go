// Package pipeline runs the crawl, extraction, document and archival flow
// behind the contact-info endpoint.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/resodo/contact-crawler/internal/cache"
	"github.com/resodo/contact-crawler/internal/extract"
	"github.com/resodo/contact-crawler/internal/report"
	"github.com/resodo/contact-crawler/internal/telemetry"
)

const noContactsMessage = "No contact information found"

// Config controls pipeline behavior.
type Config struct {
	ContextChars int
	BlobPrefix   string
	Topic        string
}

// Pipeline wires the stages behind one resolution request.
type Pipeline struct {
	finder    report.ContactFinder
	extractor report.Extractor
	generator report.DocumentGenerator
	renderer  report.Renderer
	store     report.Store
	blobs     report.BlobStore
	publisher report.Publisher
	cache     *cache.ReportCache
	hasher    report.Hasher
	clock     report.Clock
	ids       report.IDGenerator
	cfg       Config
	logger    *zap.Logger
}

// Outcome is what one processed request produces.
type Outcome struct {
	Report   report.Report
	PDF      []byte
	CacheHit bool
}

// New constructs a Pipeline. cache may be nil to disable caching.
func New(
	finder report.ContactFinder,
	extractor report.Extractor,
	generator report.DocumentGenerator,
	renderer report.Renderer,
	store report.Store,
	blobs report.BlobStore,
	publisher report.Publisher,
	reportCache *cache.ReportCache,
	hasher report.Hasher,
	clock report.Clock,
	ids report.IDGenerator,
	cfg Config,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ContextChars <= 0 {
		cfg.ContextChars = 1000
	}
	if cfg.BlobPrefix == "" {
		cfg.BlobPrefix = "reports"
	}
	return &Pipeline{
		finder:    finder,
		extractor: extractor,
		generator: generator,
		renderer:  renderer,
		store:     store,
		blobs:     blobs,
		publisher: publisher,
		cache:     reportCache,
		hasher:    hasher,
		clock:     clock,
		ids:       ids,
		cfg:       cfg,
		logger:    logger,
	}
}

// Process executes the full flow for one validated request.
func (p *Pipeline) Process(ctx context.Context, req report.Request) (Outcome, error) {
	cacheKey := cache.Key(req.Website, req.Resolution)
	if p.cache != nil {
		if cached, ok := p.cache.Get(cacheKey); ok {
			p.logger.Info("returning cached report",
				zap.String("website", req.Website), zap.String("report_id", cached.ID))
			return Outcome{Report: cached, CacheHit: true}, nil
		}
	}

	id, err := p.ids.NewID()
	if err != nil {
		return Outcome{}, fmt.Errorf("generate report id: %w", err)
	}
	start := p.clock.Now()

	rep := report.Report{
		ID:         id,
		Respondent: req.Respondent,
		Filer:      req.Filer,
		FilerInfo:  req.FilerInfo,
		Reason:     req.Resolution,
		Website:    req.Website,
		Contacts:   []report.Contact{},
		CreatedAt:  start,
	}

	contacts, pagesSeen, err := p.discoverContacts(ctx, req.Website)
	rep.PagesSeen = pagesSeen
	if err != nil {
		return Outcome{}, err
	}

	if len(contacts) == 0 {
		rep.Status = report.StatusNoContacts
		rep.Message = noContactsMessage
		p.finish(ctx, &rep, start, cacheKey, "")
		return Outcome{Report: rep}, nil
	}
	rep.Contacts = contacts
	rep.Status = report.StatusSucceeded

	pdf := p.buildDocument(ctx, &rep, req, contacts)
	p.finish(ctx, &rep, start, cacheKey, p.digest(pdf))
	return Outcome{Report: rep, PDF: pdf}, nil
}

// digest fingerprints the rendered PDF so event consumers can verify the
// archived copy.
func (p *Pipeline) digest(pdf []byte) string {
	if p.hasher == nil || len(pdf) == 0 {
		return ""
	}
	sum, err := p.hasher.Hash(pdf)
	if err != nil {
		p.logger.Warn("pdf digest failed", zap.Error(err))
		return ""
	}
	return sum
}

// discoverContacts crawls the site and extracts contacts from the winning
// page. Crawl failures and empty pages degrade to zero contacts; the caller
// answers with the no-contacts report rather than an error, matching the
// endpoint contract.
func (p *Pipeline) discoverContacts(ctx context.Context, website string) ([]report.Contact, int, error) {
	crawl, err := p.finder.FindContactPage(ctx, website)
	if err != nil {
		p.logger.Warn("contact page discovery failed",
			zap.String("website", website), zap.Error(err))
		if ctx.Err() != nil {
			return nil, len(crawl.Pages), fmt.Errorf("crawl canceled: %w", ctx.Err())
		}
		return nil, len(crawl.Pages), nil
	}

	chunk := extract.ContactChunk(crawl.Text(), p.cfg.ContextChars)
	if chunk == "" {
		p.logger.Info("no contact patterns in page text", zap.String("website", website))
		return nil, len(crawl.Pages), nil
	}

	contacts, err := p.extractor.ExtractContacts(ctx, chunk)
	if err != nil {
		return nil, len(crawl.Pages), fmt.Errorf("extract contacts: %w", err)
	}
	return contacts, len(crawl.Pages), nil
}

// buildDocument generates and renders the demand PDF. Failures are recorded
// on the report and the JSON fallback is served instead.
func (p *Pipeline) buildDocument(ctx context.Context, rep *report.Report, req report.Request, contacts []report.Contact) []byte {
	doc, err := p.generator.GenerateDocument(ctx, req.Respondent, req.Resolution)
	if err != nil {
		p.logger.Warn("legal document generation failed",
			zap.String("report_id", rep.ID), zap.Error(err))
		rep.PDFError = err.Error()
		return nil
	}

	pdf, err := p.renderer.RenderPDF(doc, req, contacts)
	if err != nil {
		p.logger.Warn("pdf rendering failed",
			zap.String("report_id", rep.ID), zap.Error(err))
		rep.PDFError = err.Error()
		return nil
	}
	telemetry.ObservePDFRendered()

	if p.blobs != nil {
		path := fmt.Sprintf("%s/%s.pdf", p.cfg.BlobPrefix, rep.ID)
		uri, putErr := p.blobs.PutObject(ctx, path, "application/pdf", pdf)
		if putErr != nil {
			p.logger.Warn("pdf archive failed",
				zap.String("report_id", rep.ID), zap.Error(putErr))
		} else {
			rep.PDFURI = uri
		}
	}
	return pdf
}

// finish stamps timings, persists, publishes and caches the report. Archive
// side effects never fail the request; they are logged and dropped.
func (p *Pipeline) finish(ctx context.Context, rep *report.Report, start time.Time, cacheKey, pdfDigest string) {
	rep.DurationMs = p.clock.Now().Sub(start).Milliseconds()
	telemetry.ObserveReport(string(rep.Status))

	if p.store != nil {
		if err := p.store.CreateReport(ctx, *rep); err != nil {
			p.logger.Warn("persist report failed",
				zap.String("report_id", rep.ID), zap.Error(err))
		}
	}

	if p.publisher != nil && p.cfg.Topic != "" {
		payload := map[string]any{
			"report_id": rep.ID,
			"website":   rep.Website,
			"status":    string(rep.Status),
			"contacts":  len(rep.Contacts),
			"pdf_uri":   rep.PDFURI,
			"timestamp": rep.CreatedAt.Format(time.RFC3339),
		}
		if pdfDigest != "" {
			payload["pdf_sha256"] = pdfDigest
		}
		if _, err := p.publisher.Publish(ctx, p.cfg.Topic, payload); err != nil {
			p.logger.Warn("publish report event failed",
				zap.String("report_id", rep.ID), zap.Error(err))
		}
	}

	if p.cache != nil {
		p.cache.Put(cacheKey, *rep)
	}
}
