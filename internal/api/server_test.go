package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/resodo/contact-crawler/internal/config"
	"github.com/resodo/contact-crawler/internal/pipeline"
	"github.com/resodo/contact-crawler/internal/ratelimit"
	"github.com/resodo/contact-crawler/internal/report"
	storememory "github.com/resodo/contact-crawler/internal/store/memory"
)

type stubFinder struct {
	text string
	err  error
}

func (f stubFinder) FindContactPage(_ context.Context, startURL string) (report.CrawlResult, error) {
	if f.err != nil {
		return report.CrawlResult{}, f.err
	}
	return report.CrawlResult{Pages: []report.PageCapture{
		{URL: startURL, StatusCode: 200, Text: f.text},
	}}, nil
}

type stubExtractor struct{ contacts []report.Contact }

func (f stubExtractor) ExtractContacts(context.Context, string) ([]report.Contact, error) {
	return f.contacts, nil
}

type stubGenerator struct {
	doc string
	err error
}

func (f stubGenerator) GenerateDocument(context.Context, string, string) (string, error) {
	return f.doc, f.err
}

type stubRenderer struct{ pdf []byte }

func (f stubRenderer) RenderPDF(string, report.Request, []report.Contact) ([]byte, error) {
	return f.pdf, nil
}

type stubClock struct{}

func (stubClock) Now() time.Time { return time.Now().UTC() }

type stubIDs struct{ id string }

func (f stubIDs) NewID() (string, error) { return f.id, nil }

type serverOptions struct {
	generator report.DocumentGenerator
	store     report.Store
	limiter   *ratelimit.Limiter
	cfg       config.Config
}

func newTestServer(t *testing.T, opts serverOptions) *Server {
	t.Helper()

	if opts.generator == nil {
		opts.generator = stubGenerator{doc: "LEGAL DOCUMENT BODY"}
	}
	if opts.store == nil {
		opts.store = storememory.NewReportStore()
	}
	if opts.cfg.RateLimit.RequestsPerMinute == 0 {
		opts.cfg.RateLimit.RequestsPerMinute = 10
	}

	p := pipeline.New(
		stubFinder{text: "Email us at info@acme.test today."},
		stubExtractor{contacts: []report.Contact{
			{Type: report.ContactTypeEmail, Value: "info@acme.test"},
		}},
		opts.generator,
		stubRenderer{pdf: []byte("%PDF-1.4 fake")},
		opts.store,
		nil, nil, nil, nil,
		stubClock{},
		stubIDs{id: "r-1"},
		pipeline.Config{},
		nil,
	)
	return NewServer(p, opts.store, opts.limiter, opts.cfg, nil)
}

func validContactInfoURL() string {
	return "/contact-info?respondent=Acme+Corp&website=acme.test&filer=Jane+Doe" +
		"&filer_info=jane%40example.test&resolution=Please+refund+my+order+number+12345."
}

func TestRootEndpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, serverOptions{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ALL SYSTEMS ONLINE", body["message"])
	require.Equal(t, "running", body["status"])
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, serverOptions{})
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestContactInfoValidationError(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, serverOptions{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contact-info?respondent=A", nil))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestContactInfoReturnsPDF(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, serverOptions{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, validContactInfoURL(), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), `Resolution for Acme Corp.pdf`)
	require.Equal(t, "%PDF-1.4 fake", rec.Body.String())
}

func TestContactInfoJSONFallbackOnDocumentFailure(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, serverOptions{
		generator: stubGenerator{err: context.DeadlineExceeded},
	})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, validContactInfoURL(), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var rep report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	require.Equal(t, report.StatusSucceeded, rep.Status)
	require.NotEmpty(t, rep.PDFError)
	require.Len(t, rep.Contacts, 1)
}

func TestContactInfoRateLimited(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.New(ratelimit.Config{RequestsPerMinute: 10, Burst: 1})
	s := newTestServer(t, serverOptions{limiter: limiter})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, validContactInfoURL(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, validContactInfoURL(), nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Rate limit exceeded. Maximum 10 requests per minute.", body["error"])
}

func TestRateLimitDoesNotGateHealth(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.New(ratelimit.Config{RequestsPerMinute: 10, Burst: 1})
	s := newTestServer(t, serverOptions{limiter: limiter})

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestGetReport(t *testing.T) {
	t.Parallel()

	store := storememory.NewReportStore()
	require.NoError(t, store.CreateReport(context.Background(), report.Report{
		ID: "r-42", Status: report.StatusNoContacts,
	}))
	s := newTestServer(t, serverOptions{store: store})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/r-42", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rep report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	require.Equal(t, "r-42", rep.ID)
}

func TestGetReportNotFound(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, serverOptions{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIKeyAuth(t *testing.T) {
	t.Parallel()

	cfg := config.Config{}
	cfg.Auth.Enabled = true
	cfg.Auth.APIKey = "secret"
	s := newTestServer(t, serverOptions{cfg: cfg})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-API-Key", "secret")
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, serverOptions{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:4567"
	require.Equal(t, "10.0.0.9", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	require.Equal(t, "203.0.113.7", clientIP(req))
}
