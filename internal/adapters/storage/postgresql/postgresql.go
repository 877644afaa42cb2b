package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"coinassist/internal/application/ports"
	"coinassist/internal/config"
	"coinassist/internal/domain/models"
)

// Adapter implements the HistoryPort interface for PostgreSQL
type Adapter struct {
	db *sql.DB
}

// New creates a PostgreSQL query-history adapter
func New(cfg config.DatabaseConfig) (ports.HistoryPort, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare schema: %w", err)
	}

	return adapter, nil
}

func (a *Adapter) ensureSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS query_history (
		id BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL,
		entity TEXT NOT NULL DEFAULT '',
		intent TEXT NOT NULL,
		source TEXT NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`

	_, err := a.db.ExecContext(ctx, query)
	return err
}

// SaveQuery persists the outcome of one processed message
func (a *Adapter) SaveQuery(ctx context.Context, record models.QueryRecord) error {
	query := `INSERT INTO query_history (session_id, entity, intent, source, confidence, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := a.db.ExecContext(ctx, query, record.SessionID, record.Entity,
		record.Intent, record.Source, record.Confidence, record.CreatedAt)
	return err
}

// RecentQueries returns the most recent audit entries, newest first
func (a *Adapter) RecentQueries(ctx context.Context, limit int) ([]models.QueryRecord, error) {
	query := `SELECT id, session_id, entity, intent, source, confidence, created_at
			  FROM query_history
			  ORDER BY created_at DESC
			  LIMIT $1`

	rows, err := a.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.QueryRecord
	for rows.Next() {
		var record models.QueryRecord
		err := rows.Scan(&record.ID, &record.SessionID, &record.Entity,
			&record.Intent, &record.Source, &record.Confidence, &record.CreatedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// CountBySource returns how many results each source produced
func (a *Adapter) CountBySource(ctx context.Context) (map[string]int64, error) {
	query := `SELECT source, COUNT(*) FROM query_history GROUP BY source`

	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var source string
		var count int64
		if err := rows.Scan(&source, &count); err != nil {
			return nil, err
		}
		counts[source] = count
	}

	return counts, rows.Err()
}

// Close closes the storage connection
func (a *Adapter) Close() error {
	return a.db.Close()
}
