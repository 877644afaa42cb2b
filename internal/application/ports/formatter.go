package ports

import "coinassist/internal/domain/models"

// FormatterPort renders retrieved facts into user-facing prose. A formatter
// never introduces facts and never alters source or confidence; an LLM-backed
// implementation would slot in behind the same interface.
type FormatterPort interface {
	// FormatMetadata renders the static facts of a record
	FormatMetadata(record *models.CoinRecord) string

	// FormatPrice renders the cached price snapshot of a record
	FormatPrice(record *models.CoinRecord) string

	// FormatFinal renders the user-visible response including the
	// source/confidence annotation
	FormatFinal(result models.PipelineResult) string
}
