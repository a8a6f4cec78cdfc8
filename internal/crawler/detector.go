package crawler

import (
	"bytes"
	"strings"
)

// HeuristicDetector implements a handful of rule-based promotions.
type HeuristicDetector struct {
	BodyLengthThreshold int
}

// NewHeuristicDetector creates a new detector.
func NewHeuristicDetector(threshold int) *HeuristicDetector {
	if threshold == 0 {
		threshold = 2048
	}
	return &HeuristicDetector{BodyLengthThreshold: threshold}
}

var spaMarkers = [][]byte{
	[]byte("__next"),
	[]byte("id=\"root\""),
	[]byte("id=\"app\""),
	[]byte("data-reactroot"),
}

// ShouldPromote decides whether a headless fetch is required.
func (h *HeuristicDetector) ShouldPromote(resp FetchResponse) bool {
	if resp.StatusCode != 200 {
		return false
	}
	body := resp.Body
	if len(body) == 0 {
		return true
	}
	if len(body) < h.BodyLengthThreshold && scriptDensityHigh(body) {
		return true
	}
	for _, marker := range spaMarkers {
		if bytes.Contains(body, marker) {
			return true
		}
	}
	return false
}

// scriptDensityHigh reports whether script tags cover more than half the body.
func scriptDensityHigh(body []byte) bool {
	lower := strings.ToLower(string(body))
	total := len(lower)
	if total == 0 {
		return false
	}

	const (
		openTag  = "<script"
		closeTag = "</script>"
	)
	scriptCoverage := 0
	searchPos := 0

	for {
		relativeStart := strings.Index(lower[searchPos:], openTag)
		if relativeStart == -1 {
			break
		}
		start := searchPos + relativeStart
		relativeEnd := strings.Index(lower[start:], closeTag)
		if relativeEnd == -1 {
			scriptCoverage += total - start
			break
		}
		end := start + relativeEnd + len(closeTag)
		scriptCoverage += end - start
		searchPos = end
	}

	return scriptCoverage*2 > total
}
