package detector

import (
	"regexp"
	"sort"
	"strings"

	"coinassist/internal/domain/models"
)

// Detection is the outcome of classifying one message
type Detection struct {
	Entity string
	Intent models.Intent
}

// rejectionPatterns match queries the system refuses to answer: predictions,
// investment advice, hypotheticals and price-target speculation. They are
// evaluated before anything else so a disallowed query never reaches a
// lookup, whatever entities it mentions.
var rejectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(will|gonna|going to|predict|forecast|future|tomorrow|next week|next month|next year)\b`),
	regexp.MustCompile(`\b(should i|recommend|advice|advise|invest|buy|sell|hold|worth buying|good investment)\b`),
	regexp.MustCompile(`\b(what if|suppose|imagine|hypothetical)\b`),
	regexp.MustCompile(`\b(reach|hit|get to|moon|crash|dump|pump)\b.*\$\d+`),
}

// priceKeywords promote a query with a recognized entity to the price intent
var priceKeywords = []string{
	"price", "worth", "cost", "how much", "market cap", "marketcap",
	"mcap", "value", "trading at",
}

var pronounPattern = regexp.MustCompile(`\b(it|its|this|that|same)\b|the coin|the token|that coin`)

// Detector maps raw user text to a recognized coin symbol and an intent.
// It is a pure classifier: no lookups, no side effects.
type Detector struct {
	// symbols in deterministic order, so the first match is stable
	symbols  []string
	patterns map[string]*regexp.Regexp
}

// New creates a detector for the given symbol -> display name alias table
func New(knownCoins map[string]string) *Detector {
	symbols := make([]string, 0, len(knownCoins))
	patterns := make(map[string]*regexp.Regexp, len(knownCoins))

	for symbol, name := range knownCoins {
		symbols = append(symbols, symbol)
		aliases := []string{regexp.QuoteMeta(strings.ToLower(symbol))}
		if name != "" {
			aliases = append(aliases, regexp.QuoteMeta(strings.ToLower(name)))
		}
		patterns[symbol] = regexp.MustCompile(`\b(` + strings.Join(aliases, "|") + `)\b`)
	}
	sort.Strings(symbols)

	return &Detector{
		symbols:  symbols,
		patterns: patterns,
	}
}

// Detect classifies a message. resolvedContext is the last entity mentioned
// in the session, used to resolve anaphoric pronouns ("its price") when the
// message itself names no coin.
//
// Rule order is part of the contract: rejection is checked on the raw text
// before pronoun substitution, then price keywords, then metadata as the
// default for a recognized entity, then unknown.
func (d *Detector) Detect(text, resolvedContext string) Detection {
	lower := strings.ToLower(text)

	entity := d.matchEntity(lower)

	for _, pattern := range rejectionPatterns {
		if pattern.MatchString(lower) {
			return Detection{Entity: entity, Intent: models.IntentRejected}
		}
	}

	if entity == "" && resolvedContext != "" && pronounPattern.MatchString(lower) {
		entity = resolvedContext
	}

	if entity == "" {
		return Detection{Intent: models.IntentUnknown}
	}

	for _, keyword := range priceKeywords {
		if strings.Contains(lower, keyword) {
			return Detection{Entity: entity, Intent: models.IntentPrice}
		}
	}

	return Detection{Entity: entity, Intent: models.IntentMetadata}
}

func (d *Detector) matchEntity(lower string) string {
	for _, symbol := range d.symbols {
		if d.patterns[symbol].MatchString(lower) {
			return symbol
		}
	}
	return ""
}
