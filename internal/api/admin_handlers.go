package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"log/slog"
)

// AdminHandler exposes stored pricing suggestions to authenticated admins.
type AdminHandler struct {
	store  SuggestionStore
	logger *slog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(store SuggestionStore, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{store: store, logger: logger}
}

// ListSuggestions handles GET /api/admin/suggestions
func (h *AdminHandler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 500 {
			writeError(w, http.StatusBadRequest, "limit must be an integer between 1 and 500")
			return
		}
		limit = parsed
	}

	suggestions, err := h.store.ListSuggestions(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list pricing suggestions", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}
