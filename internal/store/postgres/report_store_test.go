// Package postgres_test contains unit tests for the postgres report store.
package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resodo/contact-crawler/internal/report"
	"github.com/resodo/contact-crawler/internal/store/postgres"
)

func TestCreateReport(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := postgres.NewReportStoreWithPool(mock, "reports")
	require.NoError(t, err)

	r := report.Report{
		ID:         "r-1",
		Status:     report.StatusSucceeded,
		Respondent: "Acme Corp",
		Filer:      "Jane Doe",
		FilerInfo:  []string{"jane@example.test"},
		Reason:     "refund my order",
		Website:    "https://acme.test",
		Contacts:   []report.Contact{{Type: report.ContactTypeEmail, Value: "info@acme.test"}},
		PagesSeen:  2,
		CreatedAt:  time.Now().UTC(),
		DurationMs: 1234,
	}

	mock.ExpectExec("INSERT INTO reports").
		WithArgs(r.ID, string(r.Status), r.Respondent, r.Filer, pgxmock.AnyArg(),
			r.Reason, r.Website, pgxmock.AnyArg(), r.Message, r.PDFError,
			r.PDFURI, r.PagesSeen, r.CreatedAt, r.DurationMs).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.CreateReport(context.Background(), r))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReportRequiresID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := postgres.NewReportStoreWithPool(mock, "reports")
	require.NoError(t, err)

	require.Error(t, store.CreateReport(context.Background(), report.Report{}))
}

func TestGetReport(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := postgres.NewReportStoreWithPool(mock, "reports")
	require.NoError(t, err)

	created := time.Now().UTC().Truncate(time.Millisecond)
	rows := pgxmock.NewRows([]string{
		"id", "status", "respondent", "filer", "filer_info", "reason", "website",
		"contacts", "message", "pdf_error", "pdf_uri", "pages_seen", "created_at", "duration_ms",
	}).AddRow(
		"r-1", "succeeded", "Acme Corp", "Jane Doe", []byte(`["jane@example.test"]`),
		"refund my order", "https://acme.test",
		[]byte(`[{"type":"email","value":"info@acme.test"}]`),
		"", "", "file:///tmp/r-1.pdf", 2, created, int64(1234),
	)

	mock.ExpectQuery("SELECT id, status, respondent").
		WithArgs("r-1").
		WillReturnRows(rows)

	got, err := store.GetReport(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, "r-1", got.ID)
	assert.Equal(t, report.StatusSucceeded, got.Status)
	assert.Equal(t, []string{"jane@example.test"}, got.FilerInfo)
	require.Len(t, got.Contacts, 1)
	assert.Equal(t, report.ContactTypeEmail, got.Contacts[0].Type)
	assert.Equal(t, "file:///tmp/r-1.pdf", got.PDFURI)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReportNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := postgres.NewReportStoreWithPool(mock, "reports")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, status, respondent").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = store.GetReport(context.Background(), "missing")
	require.ErrorIs(t, err, postgres.ErrNotFound)
}

func TestNewReportStoreWithPoolValidatesTable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = postgres.NewReportStoreWithPool(mock, "reports; DROP TABLE reports")
	require.Error(t, err)
}
