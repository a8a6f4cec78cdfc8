package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/resodo/contact-crawler/internal/extract"
	"github.com/resodo/contact-crawler/internal/report"
	"github.com/resodo/contact-crawler/internal/telemetry"
)

// ErrNoPages is returned when not a single page could be captured.
var ErrNoPages = errors.New("no pages captured")

// Config governs contact-page discovery.
type Config struct {
	UserAgent       string
	MaxDepth        int
	MaxPages        int
	RespectRobots   bool
	ContactKeywords []string
}

// Engine walks a site breadth-first looking for its contact page.
//
// Depth 0 is the start URL; at each subsequent depth only links scoring
// against the contact keywords are followed, highest score first, until the
// page budget runs out. The last captured page is the extraction input.
type Engine struct {
	cfg        Config
	probe      Fetcher
	headless   Fetcher
	detector   Detector
	politeness *Politeness
	logger     *zap.Logger
}

// NewEngine constructs an Engine. headless and detector may be nil, which
// disables promotion and keeps every fetch on the probe path.
func NewEngine(
	cfg Config,
	probe Fetcher,
	headless Fetcher,
	detector Detector,
	politeness *Politeness,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 2
	}
	if len(cfg.ContactKeywords) == 0 {
		cfg.ContactKeywords = []string{"contact", "get-in-touch", "contact-us", "contactus"}
	}
	return &Engine{
		cfg:        cfg,
		probe:      probe,
		headless:   headless,
		detector:   detector,
		politeness: politeness,
		logger:     logger,
	}
}

// FindContactPage runs the bounded BFS from startURL.
func (e *Engine) FindContactPage(ctx context.Context, startURL string) (report.CrawlResult, error) {
	var (
		result  report.CrawlResult
		lastErr error
	)
	visited := map[string]struct{}{}
	frontier := []candidate{{url: startURL, score: 0}}

	for depth := 0; depth <= e.cfg.MaxDepth && len(frontier) > 0; depth++ {
		var next []candidate
		for _, cand := range frontier {
			if len(result.Pages) >= e.cfg.MaxPages {
				break
			}
			if _, seen := visited[cand.url]; seen {
				continue
			}
			visited[cand.url] = struct{}{}

			capture, body, err := e.fetchPage(ctx, cand.url, depth)
			if err != nil {
				lastErr = err
				e.logger.Warn("page fetch failed",
					zap.String("url", cand.url), zap.Int("depth", depth), zap.Error(err))
				if ctx.Err() != nil {
					break
				}
				continue
			}
			result.Pages = append(result.Pages, capture)
			e.logger.Info("page captured",
				zap.String("url", capture.URL),
				zap.Int("status", capture.StatusCode),
				zap.Int("depth", depth),
				zap.Bool("headless", capture.UsedHeadless),
				zap.String("title", capture.Title))

			if depth < e.cfg.MaxDepth {
				next = append(next, harvestLinks(body, capture.URL, e.cfg.ContactKeywords)...)
			}
		}
		if len(result.Pages) >= e.cfg.MaxPages || ctx.Err() != nil {
			break
		}
		frontier = next
	}

	if len(result.Pages) == 0 {
		if lastErr != nil {
			return result, fmt.Errorf("crawl %s: %w", startURL, lastErr)
		}
		return result, fmt.Errorf("crawl %s: %w", startURL, ErrNoPages)
	}
	return result, nil
}

// fetchPage runs the probe fetch, promotes to headless when the heuristic
// fires, and converts the winning body to a capture.
func (e *Engine) fetchPage(ctx context.Context, pageURL string, depth int) (report.PageCapture, string, error) {
	if e.politeness != nil {
		if err := e.politeness.Wait(ctx, pageURL); err != nil {
			return report.PageCapture{}, "", err
		}
	}

	req := FetchRequest{URL: pageURL, RespectRobots: e.cfg.RespectRobots}
	resp, err := e.probe.Fetch(ctx, req)
	if err != nil {
		// A robots denial is a policy outcome, not a fetch failure; the
		// headless path performs no robots check so it must not retry.
		if req.RespectRobots && errors.Is(err, colly.ErrRobotsTxtBlocked) {
			return report.PageCapture{}, "", fmt.Errorf("fetch %s: %w", pageURL, err)
		}
		// The probe path failing outright (TLS, blocked bots) still leaves
		// the headless browser as a fallback.
		if e.headless == nil {
			return report.PageCapture{}, "", err
		}
		resp, err = e.headless.Fetch(ctx, req)
		if err != nil {
			return report.PageCapture{}, "", err
		}
		telemetry.ObserveHeadlessPromotion()
	} else if e.shouldPromote(resp) {
		headlessResp, headlessErr := e.headless.Fetch(ctx, req)
		if headlessErr != nil {
			e.logger.Warn("headless promotion failed",
				zap.String("url", pageURL), zap.Error(headlessErr))
		} else {
			resp = headlessResp
			telemetry.ObserveHeadlessPromotion()
		}
	}

	telemetry.ObserveCrawlPage(resp.URL, resp.StatusCode)
	if resp.StatusCode >= 400 {
		return report.PageCapture{}, "", fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}
	if !looksHTML(resp) {
		return report.PageCapture{}, "", fmt.Errorf("fetch %s: not an html document", pageURL)
	}

	body := string(resp.Body)
	text, err := extract.PageText(body)
	if err != nil {
		return report.PageCapture{}, "", fmt.Errorf("flatten %s: %w", pageURL, err)
	}

	return report.PageCapture{
		URL:          resp.URL,
		StatusCode:   resp.StatusCode,
		Depth:        depth,
		Title:        extract.PageTitle(body),
		Text:         text,
		UsedHeadless: resp.UsedHeadless,
		Duration:     resp.Duration,
	}, body, nil
}

func (e *Engine) shouldPromote(resp FetchResponse) bool {
	return e.headless != nil && e.detector != nil && e.detector.ShouldPromote(resp)
}

// looksHTML filters out non-document responses before text extraction.
func looksHTML(resp FetchResponse) bool {
	ct := resp.Headers.Get("Content-Type")
	if ct == "" {
		return true
	}
	return strings.Contains(strings.ToLower(ct), "text/html") ||
		strings.Contains(strings.ToLower(ct), "application/xhtml")
}
