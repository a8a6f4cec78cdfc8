package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/resodo/contact-crawler/internal/report"
)

func TestCreateAndGetReport(t *testing.T) {
	t.Parallel()

	s := NewReportStore()
	ctx := context.Background()

	r := report.Report{
		ID:         "r-1",
		Status:     report.StatusSucceeded,
		Respondent: "Acme Corp",
		Contacts:   []report.Contact{{Type: report.ContactTypeEmail, Value: "info@acme.test"}},
	}
	require.NoError(t, s.CreateReport(ctx, r))
	require.Equal(t, 1, s.Len())

	got, err := s.GetReport(ctx, "r-1")
	require.NoError(t, err)
	require.Equal(t, r, got)
}

func TestCreateReportDuplicate(t *testing.T) {
	t.Parallel()

	s := NewReportStore()
	ctx := context.Background()
	require.NoError(t, s.CreateReport(ctx, report.Report{ID: "r-1"}))
	require.Error(t, s.CreateReport(ctx, report.Report{ID: "r-1"}))
}

func TestGetReportNotFound(t *testing.T) {
	t.Parallel()

	s := NewReportStore()
	_, err := s.GetReport(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
