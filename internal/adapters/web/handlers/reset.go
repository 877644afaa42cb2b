package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"coinassist/internal/application/usecases"
)

// ResetHandler handles conversation reset requests
type ResetHandler struct {
	pipeline *usecases.Pipeline
	logger   *slog.Logger
}

// NewResetHandler creates a new reset handler
func NewResetHandler(pipeline *usecases.Pipeline, logger *slog.Logger) *ResetHandler {
	return &ResetHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

type resetRequest struct {
	SessionID string `json:"session_id"`
}

// Handle handles reset requests
func (h *ResetHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "Method not allowed. Use POST.", http.StatusMethodNotAllowed)
		return
	}

	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	h.pipeline.ResetSession(req.SessionID)
	h.logger.Info("Session reset", "session_id", req.SessionID)

	response := map[string]interface{}{
		"message":    "Conversation reset successfully",
		"session_id": req.SessionID,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
