package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"coinassist/internal/application/usecases"
	"coinassist/internal/domain/models"
)

// ModeHandler handles price source mode switching requests
type ModeHandler struct {
	pipeline *usecases.Pipeline
	logger   *slog.Logger
}

// NewModeHandler creates a new mode handler
func NewModeHandler(pipeline *usecases.Pipeline, logger *slog.Logger) *ModeHandler {
	return &ModeHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

// Handle handles mode switching requests
func (h *ModeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "Method not allowed. Use POST.", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/mode/")

	var mode models.SourceMode
	switch path {
	case "live":
		mode = models.SourceModeLive
	case "sim":
		mode = models.SourceModeSim
	default:
		h.logger.Warn("Invalid mode requested", "mode", path)
		http.Error(w, "Invalid mode. Use 'live' or 'sim'.", http.StatusBadRequest)
		return
	}

	h.pipeline.SetMode(mode)
	h.logger.Info("Price source mode switched", "new_mode", mode)

	response := map[string]interface{}{
		"status":  "success",
		"mode":    string(mode),
		"message": "Price source mode switched successfully",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
