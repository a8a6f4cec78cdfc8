// Package crawler discovers contact pages with a probe-first, headless-when-needed fetch pipeline.
package crawler

import (
	"context"
	"net/http"
	"time"
)

// FetchRequest captures everything needed to fetch a URL.
type FetchRequest struct {
	URL           string
	Headers       http.Header
	RespectRobots bool
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL          string
	StatusCode   int
	Headers      http.Header
	Body         []byte
	Duration     time.Duration
	UsedHeadless bool
}

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Detector decides whether a probe response warrants a headless re-fetch.
type Detector interface {
	ShouldPromote(resp FetchResponse) bool
}
