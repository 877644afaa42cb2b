package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"coinassist/internal/application/ports"
)

const (
	defaultStatsLimit = 20
	maxStatsLimit     = 100
)

// StatsHandler serves query-history statistics from the audit storage
type StatsHandler struct {
	history ports.HistoryPort // nil when audit storage is disabled
	logger  *slog.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(history ports.HistoryPort, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		history: history,
		logger:  logger,
	}
}

// Handle handles stats requests
func (h *StatsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if h.history == nil {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"enabled": false})
		return
	}

	limit := defaultStatsLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	if limit > maxStatsLimit {
		limit = maxStatsLimit
	}

	ctx := r.Context()

	counts, err := h.history.CountBySource(ctx)
	if err != nil {
		h.logger.Error("Failed to load source counts", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	recent, err := h.history.RecentQueries(ctx, limit)
	if err != nil {
		h.logger.Error("Failed to load recent queries", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"enabled":          true,
		"counts_by_source": counts,
		"recent":           recent,
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
