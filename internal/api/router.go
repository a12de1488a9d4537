package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"log/slog"

	"github.com/menumetrics/menupricer/internal/auth"
	"github.com/menumetrics/menupricer/internal/metrics"
)

// RouterDeps bundles the collaborators the route table needs.
type RouterDeps struct {
	Engine       Suggester
	Store        SuggestionStore
	Collector    *metrics.Collector
	AuthConfig   auth.Config
	AIConfigured bool
	Location     string
	Logger       *slog.Logger
}

// SetupRoutes configures all API routes.
func SetupRoutes(mux *http.ServeMux, deps RouterDeps) {
	pricingHandler := NewPricingHandler(deps.Engine, deps.Store, deps.Collector, deps.Location, deps.Logger)
	statusHandler := NewStatusHandler(deps.AIConfigured, deps.Logger)
	authHandler := NewAuthHandler(deps.AuthConfig, deps.Logger)
	adminHandler := NewAdminHandler(deps.Store, deps.Logger)

	authMiddleware := auth.Middleware(deps.AuthConfig)

	mux.HandleFunc("/api/pricing/suggest", pricingHandler.SuggestPricing)

	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.Handle("/api/admin/suggestions", authMiddleware(http.HandlerFunc(adminHandler.ListSuggestions)))

	mux.HandleFunc("/health", statusHandler.Health)
	mux.HandleFunc("/", statusHandler.Home)
}

// Recoverer converts panics escaping a handler into a 500 response with an
// error message, matching the API's unhandled-failure contract.
func Recoverer(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic in handler", "path", r.URL.Path, "panic", rec)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{
					"error":   "Internal server error",
					"message": fmt.Sprint(rec),
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
