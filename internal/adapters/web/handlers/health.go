package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"coinassist/internal/application/ports"
)

const version = "1.0.0"

// HealthHandler handles health check requests
type HealthHandler struct {
	kb     ports.KnowledgePort
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(kb ports.KnowledgePort, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		kb:     kb,
		logger: logger,
	}
}

// Handle handles health check requests
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	symbols, err := h.kb.Symbols(r.Context())
	if err != nil {
		h.logger.Error("Knowledge store unreachable", "error", err)
		http.Error(w, "Knowledge store unreachable", http.StatusServiceUnavailable)
		return
	}

	response := map[string]interface{}{
		"status":      "healthy",
		"version":     version,
		"coins_in_kb": len(symbols),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
