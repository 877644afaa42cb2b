package ports

import (
	"context"

	"coinassist/internal/domain/models"
)

// HistoryPort defines the interface for the query audit storage
type HistoryPort interface {
	// SaveQuery persists the outcome of one processed message
	SaveQuery(ctx context.Context, record models.QueryRecord) error

	// RecentQueries returns the most recent audit entries, newest first
	RecentQueries(ctx context.Context, limit int) ([]models.QueryRecord, error)

	// CountBySource returns how many results each source produced
	CountBySource(ctx context.Context) (map[string]int64, error)

	// Close closes the storage connection
	Close() error
}
