package crawler

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

// ProbeConfig controls collector behavior for the fast path.
type ProbeConfig struct {
	UserAgent     string
	RespectRobots bool
	Timeout       time.Duration
	MaxBodyBytes  int
}

// ProbeFetcher implements Fetcher using the Colly collector.
type ProbeFetcher struct {
	cfg           ProbeConfig
	transport     http.RoundTripper
	baseCollector *colly.Collector
}

// NewProbeFetcher builds a ProbeFetcher.
func NewProbeFetcher(cfg ProbeConfig) *ProbeFetcher {
	c := colly.NewCollector(colly.Async(false))
	transport := newHTTPTransport()
	c.WithTransport(transport)
	if cfg.MaxBodyBytes > 0 {
		c.MaxBodySize = cfg.MaxBodyBytes
	}

	return &ProbeFetcher{
		cfg:           cfg,
		transport:     transport,
		baseCollector: c,
	}
}

// Fetch executes a single HTTP GET using Colly.
func (f *ProbeFetcher) Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error) {
	var (
		result   FetchResponse
		fetchErr error
	)
	start := time.Now()
	collector := f.buildCollector(request, start, &result, &fetchErr)

	if err := f.runCollector(ctx, collector, request.URL, &fetchErr); err != nil {
		return FetchResponse{}, err
	}
	return result, nil
}

func (f *ProbeFetcher) buildCollector(
	request FetchRequest,
	start time.Time,
	result *FetchResponse,
	fetchErr *error,
) *colly.Collector {
	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.IgnoreRobotsTxt = !request.RespectRobots
	timeout := f.cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collector.SetRequestTimeout(timeout)
	collector.WithTransport(f.transport)

	collector.OnRequest(func(r *colly.Request) {
		for key, values := range request.Headers {
			for _, v := range values {
				r.Headers.Add(key, v)
			}
		}
	})

	collector.OnResponse(func(r *colly.Response) {
		*result = FetchResponse{
			URL:          r.Request.URL.String(),
			StatusCode:   r.StatusCode,
			Headers:      r.Headers.Clone(),
			Body:         append([]byte(nil), r.Body...),
			Duration:     time.Since(start),
			UsedHeadless: false,
		}
	})

	collector.OnError(func(_ *colly.Response, err error) {
		*fetchErr = err
	})

	return collector
}

func (f *ProbeFetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("probe fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("probe visit failed: %w", err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("probe response failed: %w", *fetchErr)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
