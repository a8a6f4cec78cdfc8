// Package memory provides an in-memory report store for development/testing.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/resodo/contact-crawler/internal/report"
)

// ErrNotFound is returned for unknown report IDs.
var ErrNotFound = errors.New("report not found")

// ReportStore keeps reports in a map.
type ReportStore struct {
	mu      sync.RWMutex
	reports map[string]report.Report
}

// NewReportStore constructs a ReportStore.
func NewReportStore() *ReportStore {
	return &ReportStore{
		reports: make(map[string]report.Report),
	}
}

// CreateReport stores a finished report.
func (s *ReportStore) CreateReport(_ context.Context, r report.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.reports[r.ID]; exists {
		return errors.New("report already exists")
	}
	s.reports[r.ID] = r
	return nil
}

// GetReport fetches a report by ID.
func (s *ReportStore) GetReport(_ context.Context, id string) (report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return report.Report{}, ErrNotFound
	}
	return r, nil
}

// Len returns the number of stored reports.
func (s *ReportStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}
