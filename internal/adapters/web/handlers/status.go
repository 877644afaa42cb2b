package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"coinassist/internal/application/usecases"
)

// StatusHandler handles status requests
type StatusHandler struct {
	pipeline *usecases.Pipeline
	logger   *slog.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(pipeline *usecases.Pipeline, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

// Handle handles status requests
func (h *StatusHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"current_mode":    string(h.pipeline.GetMode()),
		"available_modes": []string{"live", "sim"},
		"status":          "running",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
