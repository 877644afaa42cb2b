package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"coinassist/internal/application/ports"
	"coinassist/internal/application/usecases"
	"coinassist/internal/domain/models"
)

// ChatHandler handles chat requests
type ChatHandler struct {
	pipeline  *usecases.Pipeline
	formatter ports.FormatterPort
	logger    *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(pipeline *usecases.Pipeline, formatter ports.FormatterPort, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		pipeline:  pipeline,
		formatter: formatter,
		logger:    logger,
	}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response   string        `json:"response"`
	Source     models.Source `json:"source"`
	Confidence float64       `json:"confidence"`
	Entity     string        `json:"entity,omitempty"`
	Intent     models.Intent `json:"intent"`
	SessionID  string        `json:"session_id"`
}

// Handle handles chat requests
func (h *ChatHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "Method not allowed. Use POST.", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}

	// A request without a session id starts a fresh session; the minted id
	// is echoed back so the client can continue it.
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	result, err := h.pipeline.HandleMessage(r.Context(), req.SessionID, req.Message)
	if err != nil {
		h.logger.Error("Failed to process message", "error", err, "session_id", req.SessionID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := chatResponse{
		Response:   h.formatter.FormatFinal(*result),
		Source:     result.Source,
		Confidence: result.Confidence,
		Entity:     result.Entity,
		Intent:     result.Intent,
		SessionID:  req.SessionID,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
