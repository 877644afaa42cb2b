package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"coinassist/internal/application/usecases"
)

// SessionsHandler handles active-session listing requests (debugging)
type SessionsHandler struct {
	pipeline *usecases.Pipeline
	logger   *slog.Logger
}

// NewSessionsHandler creates a new sessions handler
func NewSessionsHandler(pipeline *usecases.Pipeline, logger *slog.Logger) *SessionsHandler {
	return &SessionsHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

// Handle handles session listing requests
func (h *SessionsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessions := h.pipeline.Sessions()

	response := map[string]interface{}{
		"active_sessions": sessions,
		"count":           len(sessions),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
