package models

import "time"

// Role identifies who produced a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one entry in a session's conversation history
type ConversationTurn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Entity    string    `json:"entity,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Source tags where the facts in a pipeline result came from
type Source string

const (
	SourceKnowledgeBase Source = "KnowledgeBase"
	SourceExternalAPI   Source = "ExternalAPI"
	SourceRejected      Source = "Rejected"
)

// Intent is the classified purpose of a user query
type Intent string

const (
	IntentMetadata Intent = "metadata"
	IntentPrice    Intent = "price"
	IntentRejected Intent = "rejected"
	IntentUnknown  Intent = "unknown"
)

// InsufficientData is the uniform refusal text for every rejection or miss.
// Rejected queries, unknown entities and upstream failures all collapse into
// it so the caller never sees partial or unverified information.
const InsufficientData = "INSUFFICIENT DATA"

// PipelineResult is the outcome of one processed message. Confidence is a
// fixed provenance label, not an estimate: 1.0 for a knowledge store hit,
// 0.9 for a live fetch, 0.0 for any rejection or miss.
type PipelineResult struct {
	Text       string  `json:"text"`
	Source     Source  `json:"source"`
	Confidence float64 `json:"confidence"`
	Entity     string  `json:"entity,omitempty"`
	Intent     Intent  `json:"intent"`
}

// SourceMode selects which price source serves cache misses (live or sim)
type SourceMode string

const (
	SourceModeLive SourceMode = "live"
	SourceModeSim  SourceMode = "sim"
)

// QueryRecord is the audit entry persisted for each processed message
type QueryRecord struct {
	ID         int64     `db:"id"`
	SessionID  string    `db:"session_id"`
	Entity     string    `db:"entity"`
	Intent     string    `db:"intent"`
	Source     string    `db:"source"`
	Confidence float64   `db:"confidence"`
	CreatedAt  time.Time `db:"created_at"`
}
