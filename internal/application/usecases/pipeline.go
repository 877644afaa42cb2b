package usecases

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"coinassist/internal/application/ports"
	"coinassist/internal/concurrency"
	"coinassist/internal/detector"
	"coinassist/internal/domain/models"
	"coinassist/internal/memory"
)

// Confidence is a fixed function of the path taken, never of data content:
// it communicates provenance, not estimated correctness.
const (
	confidenceKnowledge = 1.0
	confidenceLive      = 0.9
	confidenceRejected  = 0.0
)

// Pipeline drives each incoming message through the knowledge-first state
// machine: memory resolution, detection, rejection gate, knowledge lookup,
// freshness check, live fallback, cache update, confidence assignment and
// memory recording.
type Pipeline struct {
	kb        ports.KnowledgePort
	memory    *memory.SessionStore
	detector  *detector.Detector
	formatter ports.FormatterPort
	history   ports.HistoryPort // nil when audit storage is disabled
	logger    *slog.Logger
	ttl       time.Duration

	fetches concurrency.FetchGroup

	mu   sync.RWMutex
	mode models.SourceMode
	live ports.PriceSourcePort
	sim  ports.PriceSourcePort
}

// NewPipeline creates the message processing pipeline
func NewPipeline(
	kb ports.KnowledgePort,
	sessions *memory.SessionStore,
	det *detector.Detector,
	fmtr ports.FormatterPort,
	live ports.PriceSourcePort,
	sim ports.PriceSourcePort,
	history ports.HistoryPort,
	ttl time.Duration,
	mode models.SourceMode,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		kb:        kb,
		memory:    sessions,
		detector:  det,
		formatter: fmtr,
		history:   history,
		logger:    logger,
		ttl:       ttl,
		mode:      mode,
		live:      live,
		sim:       sim,
	}
}

// HandleMessage processes one chat message for a session. Errors returned
// here are infrastructure failures (knowledge backend unreachable); every
// policy outcome, including upstream fetch failures, is a normal result.
func (p *Pipeline) HandleMessage(ctx context.Context, sessionID, text string) (*models.PipelineResult, error) {
	resolved := p.memory.LastEntity(sessionID)
	det := p.detector.Detect(text, resolved)

	result, err := p.route(ctx, det)
	if err != nil {
		return nil, err
	}

	p.recordTurns(sessionID, text, det, result)
	p.recordHistory(ctx, sessionID, result)

	p.logger.Debug("Message processed",
		"session_id", sessionID,
		"entity", result.Entity,
		"intent", result.Intent,
		"source", result.Source,
		"confidence", result.Confidence)

	return result, nil
}

// ResetSession clears a session's conversation history
func (p *Pipeline) ResetSession(sessionID string) {
	p.memory.Clear(sessionID)
}

// Sessions lists the ids of sessions with history
func (p *Pipeline) Sessions() []string {
	return p.memory.ActiveSessions()
}

// SetMode switches which price source serves cache misses
func (p *Pipeline) SetMode(mode models.SourceMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = mode
}

// GetMode returns the current source mode
func (p *Pipeline) GetMode() models.SourceMode {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mode
}

func (p *Pipeline) route(ctx context.Context, det detector.Detection) (*models.PipelineResult, error) {
	// Rejection gate: a disallowed or unrecognizable query never reaches a
	// lookup.
	if det.Intent == models.IntentRejected || (det.Intent == models.IntentUnknown && det.Entity == "") {
		return p.insufficient(det), nil
	}

	switch det.Intent {
	case models.IntentMetadata:
		return p.handleMetadata(ctx, det)
	case models.IntentPrice:
		return p.handlePrice(ctx, det)
	default:
		return p.insufficient(det), nil
	}
}

func (p *Pipeline) handleMetadata(ctx context.Context, det detector.Detection) (*models.PipelineResult, error) {
	record, err := p.kb.Get(ctx, det.Entity)
	if err != nil {
		return nil, err
	}

	// Metadata lives only in the knowledge store; the price sources cannot
	// repair a miss.
	if record == nil || record.Metadata == nil {
		return p.insufficient(det), nil
	}

	return &models.PipelineResult{
		Text:       p.formatter.FormatMetadata(record),
		Source:     models.SourceKnowledgeBase,
		Confidence: confidenceKnowledge,
		Entity:     det.Entity,
		Intent:     det.Intent,
	}, nil
}

func (p *Pipeline) handlePrice(ctx context.Context, det detector.Detection) (*models.PipelineResult, error) {
	fresh, err := p.kb.IsPriceFresh(ctx, det.Entity, p.ttl)
	if err != nil {
		return nil, err
	}

	if fresh {
		record, err := p.kb.Get(ctx, det.Entity)
		if err != nil {
			return nil, err
		}
		return &models.PipelineResult{
			Text:       p.formatter.FormatPrice(record),
			Source:     models.SourceKnowledgeBase,
			Confidence: confidenceKnowledge,
			Entity:     det.Entity,
			Intent:     det.Intent,
		}, nil
	}

	return p.fetchLive(ctx, det)
}

// fetchLive serves a stale or missing cache entry from the current price
// source, repopulating the cache on success. Concurrent requests for the
// same symbol share one upstream call.
func (p *Pipeline) fetchLive(ctx context.Context, det detector.Detection) (*models.PipelineResult, error) {
	source := p.currentSource()

	quote, err := p.fetches.Fetch(det.Entity, func() (*models.PriceQuote, error) {
		return source.FetchPrice(ctx, det.Entity)
	})
	if err != nil {
		if errors.Is(err, models.ErrSourceUnavailable) {
			p.logger.Warn("Price source unavailable",
				"source", source.Name(), "symbol", det.Entity, "error", err)
			return p.insufficient(det), nil
		}
		return nil, err
	}

	if err := p.kb.UpdatePrice(ctx, det.Entity, *quote); err != nil {
		return nil, err
	}

	record, err := p.kb.Get(ctx, det.Entity)
	if err != nil {
		return nil, err
	}

	return &models.PipelineResult{
		Text:       p.formatter.FormatPrice(record),
		Source:     models.SourceExternalAPI,
		Confidence: confidenceLive,
		Entity:     det.Entity,
		Intent:     det.Intent,
	}, nil
}

func (p *Pipeline) currentSource() ports.PriceSourcePort {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.mode == models.SourceModeSim && p.sim != nil {
		return p.sim
	}
	return p.live
}

func (p *Pipeline) insufficient(det detector.Detection) *models.PipelineResult {
	return &models.PipelineResult{
		Text:       models.InsufficientData,
		Source:     models.SourceRejected,
		Confidence: confidenceRejected,
		Entity:     det.Entity,
		Intent:     det.Intent,
	}
}

// recordTurns appends the user and assistant turns. The entity is recorded
// even on a rejected or missing result when one was identified, so an
// immediately following pronoun query still resolves; a turn without an
// entity never overwrites the last entity since the scan skips empty ones.
func (p *Pipeline) recordTurns(sessionID, text string, det detector.Detection, result *models.PipelineResult) {
	now := time.Now()
	p.memory.Append(sessionID, models.ConversationTurn{
		Role:      models.RoleUser,
		Text:      text,
		Entity:    det.Entity,
		Timestamp: now,
	})
	p.memory.Append(sessionID, models.ConversationTurn{
		Role:      models.RoleAssistant,
		Text:      result.Text,
		Entity:    result.Entity,
		Timestamp: now,
	})
}

// recordHistory writes the audit entry best-effort; a storage failure never
// fails the request
func (p *Pipeline) recordHistory(ctx context.Context, sessionID string, result *models.PipelineResult) {
	if p.history == nil {
		return
	}
	record := models.QueryRecord{
		SessionID:  sessionID,
		Entity:     result.Entity,
		Intent:     string(result.Intent),
		Source:     string(result.Source),
		Confidence: result.Confidence,
		CreatedAt:  time.Now(),
	}
	if err := p.history.SaveQuery(ctx, record); err != nil {
		p.logger.Warn("Failed to record query history", "error", err)
	}
}
