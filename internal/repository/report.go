package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aurahq/aura_service/internal/client"
)

// ReportRecord is one archived assessment outcome. Records are
// append-only; a finished assessment is written once and never updated.
type ReportRecord struct {
	ID        uuid.UUID `json:"id"`
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	Subject   string    `json:"subject"`
	Score     int       `json:"score"`
	Grade     string    `json:"grade"`
	Narrative string    `json:"narrative"`
	ChartData string    `json:"chart_data"`
	CreatedAt time.Time `json:"created_at"`
}

type ReportRepository interface {
	Create(ctx context.Context, record *ReportRecord) error
	ListRecent(ctx context.Context, limit int) ([]*ReportRecord, error)
}

type PostgresReportRepository struct {
	db *client.PostgresClient
}

func NewPostgresReportRepository(db *client.PostgresClient) *PostgresReportRepository {
	return &PostgresReportRepository{db: db}
}

func (r *PostgresReportRepository) Create(ctx context.Context, record *ReportRecord) error {
	if r.db == nil || r.db.Pool == nil {
		return fmt.Errorf("database not configured")
	}

	query := `
		INSERT INTO assessment_reports (
			session_id, kind, subject, score, grade, narrative, chart_data
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		) RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		record.SessionID,
		record.Kind,
		record.Subject,
		record.Score,
		record.Grade,
		record.Narrative,
		record.ChartData,
	).Scan(&record.ID, &record.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to archive report: %w", err)
	}

	return nil
}

func (r *PostgresReportRepository) ListRecent(ctx context.Context, limit int) ([]*ReportRecord, error) {
	if r.db == nil || r.db.Pool == nil {
		return nil, fmt.Errorf("database not configured")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT id, session_id, kind, subject, score, grade, narrative, chart_data, created_at
		FROM assessment_reports
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var records []*ReportRecord
	for rows.Next() {
		var rec ReportRecord
		err := rows.Scan(
			&rec.ID,
			&rec.SessionID,
			&rec.Kind,
			&rec.Subject,
			&rec.Score,
			&rec.Grade,
			&rec.Narrative,
			&rec.ChartData,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}

	return records, nil
}
