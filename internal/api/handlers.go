package api

import (
	"encoding/json"
	"net/http"

	"log/slog"
)

// StatusHandler serves the health check and the root endpoint listing.
type StatusHandler struct {
	aiConfigured bool
	logger       *slog.Logger
}

// NewStatusHandler creates the status handler. aiConfigured reports whether
// an OpenAI API key was supplied at startup.
func NewStatusHandler(aiConfigured bool, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{aiConfigured: aiConfigured, logger: logger}
}

// Health handles GET /health
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	aiStatus := "not configured"
	if h.aiConfigured {
		aiStatus = "connected"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "healthy",
		"ai_status": aiStatus,
	})
}

// Home handles GET /
func (h *StatusHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"message": "AI-Powered Menu Pricing System",
		"endpoints": map[string]string{
			"pricing": "POST /api/pricing/suggest",
			"health":  "GET /health",
			"metrics": "GET /metrics",
		},
	})
}
