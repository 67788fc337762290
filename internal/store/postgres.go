package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	"summit-push-go/internal/models"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// RunMigrations creates tables if they don't exist
func (s *PostgresStore) RunMigrations(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Record writes one audit row per broadcast. Failed endpoints go to metadata.
func (s *PostgresStore) Record(ctx context.Context, origin string, report models.DispatchReport) error {
	var metadata sql.NullString
	if len(report.Failures) > 0 {
		meta, err := json.Marshal(map[string]any{"failures": report.Failures})
		if err != nil {
			return fmt.Errorf("encode failures: %w", err)
		}
		metadata = sql.NullString{String: string(meta), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO broadcast_audit (report_id, title, body, category, origin, total, sent, failed, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		report.ID, report.Title, report.Body, report.Category, origin,
		report.Total, report.Sent, report.Failed(), metadata, report.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert broadcast audit: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecentBroadcasts(ctx context.Context, limit int) ([]models.BroadcastRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, report_id, title, body, category, origin, total, sent, failed, metadata, created_at
		 FROM broadcast_audit ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.BroadcastRecord
	for rows.Next() {
		var rec models.BroadcastRecord
		var metadata sql.NullString
		if err := rows.Scan(&rec.ID, &rec.ReportID, &rec.Title, &rec.Body, &rec.Category, &rec.Origin,
			&rec.Total, &rec.Sent, &rec.Failed, &metadata, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if metadata.Valid {
			rec.Metadata = metadata.String
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
