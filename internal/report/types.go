// Package report defines core types shared across subsystems.
package report

import "time"

// ContactType distinguishes the kinds of contact details we extract.
type ContactType string

// Contact type values returned by the extractor.
const (
	ContactTypePhone ContactType = "phone"
	ContactTypeEmail ContactType = "email"
)

// Contact is a single extracted contact detail.
type Contact struct {
	Type  ContactType `json:"type"`
	Value string      `json:"value"`
}

// Status represents the lifecycle state of a resolution report.
type Status string

// Report status values persisted in the report store.
const (
	StatusSucceeded  Status = "succeeded"
	StatusNoContacts Status = "no_contacts"
	StatusFailed     Status = "failed"
)

// Request captures a validated resolution-filing request.
type Request struct {
	Respondent string   `json:"respondent"`
	Website    string   `json:"website"`
	Filer      string   `json:"filer"`
	FilerInfo  []string `json:"filer_info"`
	Resolution string   `json:"resolution"`
}

// Report is the persisted outcome of one resolution request.
type Report struct {
	ID         string    `json:"id"`
	Status     Status    `json:"status"`
	Respondent string    `json:"respondent"`
	Filer      string    `json:"filer"`
	FilerInfo  []string  `json:"filer_info"`
	Reason     string    `json:"reason"`
	Website    string    `json:"website"`
	Contacts   []Contact `json:"contacts"`
	Message    string    `json:"message,omitempty"`
	PDFError   string    `json:"pdf_error,omitempty"`
	PDFURI     string    `json:"pdf_uri,omitempty"`
	PagesSeen  int       `json:"pages_seen"`
	CreatedAt  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms"`
}

// PageCapture records one page visited during contact-page discovery.
type PageCapture struct {
	URL          string        `json:"url"`
	StatusCode   int           `json:"status_code"`
	Depth        int           `json:"depth"`
	Title        string        `json:"title,omitempty"`
	Text         string        `json:"-"`
	UsedHeadless bool          `json:"used_headless"`
	Duration     time.Duration `json:"-"`
}

// CrawlResult is returned by the crawl engine: the pages visited in order.
type CrawlResult struct {
	Pages []PageCapture
}

// Text returns the extraction input, the text of the last captured page.
// The deepest contact-scored page is visited last, so it wins.
func (r CrawlResult) Text() string {
	if len(r.Pages) == 0 {
		return ""
	}
	return r.Pages[len(r.Pages)-1].Text
}
