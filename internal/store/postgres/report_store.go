// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/resodo/contact-crawler/internal/report"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ErrNotFound is returned for unknown report IDs.
var ErrNotFound = errors.New("report not found")

// ReportStoreConfig controls the Postgres connection pool used for report rows.
type ReportStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// ReportStore writes report rows into Postgres.
type ReportStore struct {
	pool  pgxPool
	table string
}

// NewReportStore creates a Postgres-backed ReportStore using the provided config.
func NewReportStore(ctx context.Context, cfg ReportStoreConfig) (*ReportStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "reports"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &ReportStore{
		pool:  pool,
		table: table,
	}, nil
}

// NewReportStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewReportStoreWithPool(pool pgxPool, table string) (*ReportStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "reports"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &ReportStore{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *ReportStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// CreateReport inserts a report row into Postgres.
func (s *ReportStore) CreateReport(ctx context.Context, r report.Report) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("report store is not configured")
	}
	if r.ID == "" {
		return fmt.Errorf("report id is required")
	}
	contactsJSON, err := json.Marshal(r.Contacts)
	if err != nil {
		return fmt.Errorf("marshal contacts: %w", err)
	}
	filerInfoJSON, err := json.Marshal(r.FilerInfo)
	if err != nil {
		return fmt.Errorf("marshal filer info: %w", err)
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	status,
	respondent,
	filer,
	filer_info,
	reason,
	website,
	contacts,
	message,
	pdf_error,
	pdf_uri,
	pages_seen,
	created_at,
	duration_ms
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
)`, s.table)

	args := []any{
		r.ID,
		string(r.Status),
		r.Respondent,
		r.Filer,
		filerInfoJSON,
		r.Reason,
		r.Website,
		contactsJSON,
		r.Message,
		r.PDFError,
		r.PDFURI,
		r.PagesSeen,
		r.CreatedAt,
		r.DurationMs,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// GetReport fetches a report row by ID.
func (s *ReportStore) GetReport(ctx context.Context, id string) (report.Report, error) {
	if s == nil || s.pool == nil {
		return report.Report{}, fmt.Errorf("report store is not configured")
	}
	query := fmt.Sprintf(`
SELECT id, status, respondent, filer, filer_info, reason, website, contacts,
	message, pdf_error, pdf_uri, pages_seen, created_at, duration_ms
FROM %s WHERE id = $1`, s.table)

	var (
		r             report.Report
		status        string
		filerInfoJSON []byte
		contactsJSON  []byte
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&r.ID,
		&status,
		&r.Respondent,
		&r.Filer,
		&filerInfoJSON,
		&r.Reason,
		&r.Website,
		&contactsJSON,
		&r.Message,
		&r.PDFError,
		&r.PDFURI,
		&r.PagesSeen,
		&r.CreatedAt,
		&r.DurationMs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return report.Report{}, ErrNotFound
		}
		return report.Report{}, fmt.Errorf("select report: %w", err)
	}
	r.Status = report.Status(status)
	if err := json.Unmarshal(filerInfoJSON, &r.FilerInfo); err != nil {
		return report.Report{}, fmt.Errorf("unmarshal filer info: %w", err)
	}
	if err := json.Unmarshal(contactsJSON, &r.Contacts); err != nil {
		return report.Report{}, fmt.Errorf("unmarshal contacts: %w", err)
	}
	return r, nil
}
