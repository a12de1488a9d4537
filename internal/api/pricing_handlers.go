package api

import (
	"context"
	"encoding/json"
	"net/http"

	"log/slog"

	"github.com/google/uuid"
	"github.com/menumetrics/menupricer/internal/metrics"
	"github.com/menumetrics/menupricer/internal/models"
	"github.com/menumetrics/menupricer/internal/pricing"
)

// Suggester produces a pricing recommendation for a validated request.
type Suggester interface {
	Suggest(ctx context.Context, requestID string, req models.PricingRequest) (models.PricingResult, pricing.Outcome)
}

// SuggestionStore is the persistence sink for accepted suggestions.
type SuggestionStore interface {
	StoreSnapshot(ctx context.Context, snap models.SuggestionSnapshot) error
	ListSuggestions(ctx context.Context, limit int) ([]models.PricingSuggestion, error)
}

// PricingHandler serves POST /api/pricing/suggest.
type PricingHandler struct {
	engine    Suggester
	store     SuggestionStore
	collector *metrics.Collector
	location  string
	logger    *slog.Logger
}

// NewPricingHandler creates the pricing endpoint handler. Store and
// collector may be nil (persistence and metrics are then skipped).
func NewPricingHandler(engine Suggester, store SuggestionStore, collector *metrics.Collector, location string, logger *slog.Logger) *PricingHandler {
	return &PricingHandler{
		engine:    engine,
		store:     store,
		collector: collector,
		location:  location,
		logger:    logger,
	}
}

// PricingFactors is the weight split returned to the caller.
type PricingFactors struct {
	InternalWeight float64 `json:"internal_weight"`
	ExternalWeight float64 `json:"external_weight"`
}

// PricingResponse is the body of a successful suggestion.
type PricingResponse struct {
	MenuItemID       int64          `json:"menu_item_id"`
	RecommendedPrice int            `json:"recommended_price"`
	Factors          PricingFactors `json:"factors"`
	Reasoning        string         `json:"reasoning"`
}

// SuggestPricing handles POST /api/pricing/suggest.
func (h *PricingHandler) SuggestPricing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.PricingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Zero value counts as missing, for either field. No model call is
	// issued for an invalid request.
	if req.MenuItemID == nil || *req.MenuItemID == 0 || req.CurrentPrice == nil || *req.CurrentPrice == 0 {
		writeError(w, http.StatusBadRequest, "menu_item_id and current_price are required")
		return
	}

	requestID := uuid.NewString()
	result, outcome := h.engine.Suggest(r.Context(), requestID, req)

	if h.collector != nil {
		h.collector.ObserveOutcome(string(outcome))
	}

	// Emergency results are not persisted. Persistence failures are logged,
	// never surfaced: the response is already computed.
	if h.store != nil && !outcome.Emergency() {
		snap := models.SuggestionSnapshot{
			MenuItemID: *req.MenuItemID,
			Weather:    req.Weather,
			Events:     req.Events,
			Location:   h.location,
			Result:     result,
		}
		if err := h.store.StoreSnapshot(r.Context(), snap); err != nil {
			h.logger.Error("failed to persist pricing snapshot",
				"request_id", requestID,
				"menu_item_id", *req.MenuItemID,
				"error", err)
		}
	}

	h.logger.Info("pricing suggestion generated",
		"request_id", requestID,
		"menu_item_id", *req.MenuItemID,
		"recommended_price", result.RecommendedPrice,
		"outcome", outcome)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(PricingResponse{
		MenuItemID:       *req.MenuItemID,
		RecommendedPrice: result.RecommendedPrice,
		Factors: PricingFactors{
			InternalWeight: result.InternalWeight,
			ExternalWeight: result.ExternalWeight,
		},
		Reasoning: result.Reasoning,
	}); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
