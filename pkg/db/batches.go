package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dtnitsch/doc-leveler/models"
)

// Batch is a recorded batch run.
type Batch struct {
	BatchID      int64
	CreatedAt    time.Time
	ProcessedAt  string
	ReportPath   string
	TotalURLs    int
	SuccessCount int
	FailedCount  int
}

// BatchResult is one URL outcome within a batch.
type BatchResult struct {
	Position      int
	URL           string
	Status        string
	ErrorMessage  string
	OutputFile    string
	SectionsCount int
}

// RecordBatch stores a finished batch report and its outcomes in one transaction.
func (db *DB) RecordBatch(ctx context.Context, reportPath string, report *models.BatchReport) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO batches (processed_at, report_path, total_urls, success_count, failed_count)
		VALUES (?, ?, ?, ?, ?)
	`, report.ProcessedAt, reportPath, report.TotalURLs, report.Successful, report.Failed)
	if err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}
	batchID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get batch ID: %w", err)
	}

	for i, outcome := range report.Results {
		urlID, err := insertURL(ctx, tx, outcome.URL)
		if err != nil {
			return fmt.Errorf("failed to insert URL %s: %w", outcome.URL, err)
		}

		sections := 0
		if outcome.Result != nil {
			sections = outcome.Result.Metadata.SectionsCount
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO batch_results (batch_id, url_id, position, status, error_message, output_file, sections_count)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, batchID, urlID, i, outcome.Status, NewNullString(outcome.Error), NewNullString(outcome.OutputFile), sections)
		if err != nil {
			return fmt.Errorf("failed to insert batch result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// GetBatchByID retrieves a batch by its ID
func (db *DB) GetBatchByID(batchID int64) (*Batch, error) {
	var b Batch
	err := db.QueryRow(`
		SELECT batch_id, created_at, processed_at, report_path, total_urls, success_count, failed_count
		FROM batches
		WHERE batch_id = ?
	`, batchID).Scan(&b.BatchID, &b.CreatedAt, &b.ProcessedAt, &b.ReportPath, &b.TotalURLs, &b.SuccessCount, &b.FailedCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("batch %d not found", batchID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}
	return &b, nil
}

// LatestBatchID returns the most recently recorded batch.
func (db *DB) LatestBatchID() (int64, error) {
	var id int64
	err := db.QueryRow("SELECT batch_id FROM batches ORDER BY batch_id DESC LIMIT 1").Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("no batches recorded")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get latest batch: %w", err)
	}
	return id, nil
}

const batchColumns = `b.batch_id, b.created_at, b.processed_at, b.report_path, b.total_urls, b.success_count, b.failed_count`

// ListBatches retrieves batches, most recent first
func (db *DB) ListBatches(limit int) ([]Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches b ORDER BY b.batch_id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return db.queryBatches(query)
}

// ListBatchesForURL retrieves batches that included rawURL, most recent first.
// A URL that was never recorded yields no batches.
func (db *DB) ListBatchesForURL(rawURL string, limit int) ([]Batch, error) {
	urlID, err := db.GetURLID(rawURL)
	if errors.Is(err, ErrURLNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + batchColumns + `
		FROM batches b
		WHERE b.batch_id IN (SELECT batch_id FROM batch_results WHERE url_id = ?)
		ORDER BY b.batch_id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return db.queryBatches(query, urlID)
}

func (db *DB) queryBatches(query string, args ...any) ([]Batch, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.BatchID, &b.CreatedAt, &b.ProcessedAt, &b.ReportPath,
			&b.TotalURLs, &b.SuccessCount, &b.FailedCount); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// GetBatchResults retrieves the outcomes of a batch in input order
func (db *DB) GetBatchResults(batchID int64) ([]BatchResult, error) {
	rows, err := db.Query(`
		SELECT br.position, u.original_url, br.status, br.error_message, br.output_file, br.sections_count
		FROM batch_results br
		JOIN urls u ON br.url_id = u.url_id
		WHERE br.batch_id = ?
		ORDER BY br.position
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get batch results: %w", err)
	}
	defer rows.Close()

	var results []BatchResult
	for rows.Next() {
		var r BatchResult
		var errorMessage, outputFile sql.NullString
		if err := rows.Scan(&r.Position, &r.URL, &r.Status, &errorMessage, &outputFile, &r.SectionsCount); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.ErrorMessage = errorMessage.String
		r.OutputFile = outputFile.String
		results = append(results, r)
	}
	return results, rows.Err()
}

// NewNullString maps "" to NULL.
func NewNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
