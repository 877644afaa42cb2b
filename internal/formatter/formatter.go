package formatter

import (
	"fmt"
	"strings"

	"coinassist/internal/application/ports"
	"coinassist/internal/domain/models"
)

// Formatter renders retrieved facts into prose with fixed templates. It
// never introduces facts: every number and name in its output comes from the
// record it is handed.
type Formatter struct{}

// New creates a template formatter
func New() ports.FormatterPort {
	return &Formatter{}
}

// FormatMetadata renders the static facts of a record
func (f *Formatter) FormatMetadata(record *models.CoinRecord) string {
	if record == nil || record.Metadata == nil {
		return models.InsufficientData
	}
	meta := record.Metadata

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)", record.Name, record.Symbol)

	if meta.Description != "" {
		fmt.Fprintf(&b, ": %s", meta.Description)
	}
	if meta.LaunchYear != 0 {
		fmt.Fprintf(&b, " Launched in %d", meta.LaunchYear)
		if meta.Creator != "" {
			fmt.Fprintf(&b, " by %s", meta.Creator)
		}
		b.WriteString(".")
	} else if meta.Creator != "" {
		fmt.Fprintf(&b, " Created by %s.", meta.Creator)
	}
	if meta.ChainType != "" {
		fmt.Fprintf(&b, " Chain type: %s.", meta.ChainType)
	}
	if meta.Consensus != "" {
		fmt.Fprintf(&b, " Consensus: %s.", meta.Consensus)
	}
	if meta.MaxSupply != nil {
		fmt.Fprintf(&b, " Max supply: %s.", humanAmount(*meta.MaxSupply))
	}

	return b.String()
}

// FormatPrice renders the cached price snapshot of a record
func (f *Formatter) FormatPrice(record *models.CoinRecord) string {
	if record == nil || !record.HasPrice() {
		return models.InsufficientData
	}

	name := record.Name
	if name == "" {
		name = record.Symbol
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) is trading at $%s", name, record.Symbol, humanAmount(*record.LastPrice))
	fmt.Fprintf(&b, " with a market cap of $%s.", humanAmount(*record.MarketCap))
	fmt.Fprintf(&b, " 24h change: %+.2f%%, volume: $%s.", *record.Change24h, humanAmount(*record.Volume24h))

	return b.String()
}

// FormatFinal renders the user-visible response including the source and
// confidence annotation. Rejections carry no annotation so "can't answer"
// stays uniform.
func (f *Formatter) FormatFinal(result models.PipelineResult) string {
	if result.Source == models.SourceRejected {
		return result.Text
	}
	return fmt.Sprintf("%s\n\nSource: %s | Confidence: %.1f", result.Text, sourceLabel(result.Source), result.Confidence)
}

func sourceLabel(source models.Source) string {
	switch source {
	case models.SourceKnowledgeBase:
		return "Knowledge Base"
	case models.SourceExternalAPI:
		return "External API"
	default:
		return string(source)
	}
}

// humanAmount renders large amounts with T/B/M suffixes and small ones with
// enough precision to be useful for sub-dollar coins
func humanAmount(value float64) string {
	abs := value
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.2fT", value/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", value/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", value/1e6)
	case abs >= 1:
		return fmt.Sprintf("%.2f", value)
	default:
		return fmt.Sprintf("%.4f", value)
	}
}
