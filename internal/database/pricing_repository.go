package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/menumetrics/menupricer/internal/models"
)

// PricingRepository persists pricing suggestions, their weather/event
// context, and the inference audit log in PostgreSQL.
type PricingRepository struct {
	db *sql.DB
}

// NewPricingRepository creates a new PostgreSQL pricing repository.
func NewPricingRepository(db *sql.DB) *PricingRepository {
	return &PricingRepository{db: db}
}

// StoreSnapshot writes one weather row, one row per event, and exactly one
// pricing suggestion as a single transaction. Any failure rolls back the
// whole write.
func (r *PricingRepository) StoreSnapshot(ctx context.Context, snap models.SuggestionSnapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var temperature sql.NullFloat64
	var condition sql.NullString
	if snap.Weather != nil {
		if snap.Weather.Temperature != nil {
			temperature = sql.NullFloat64{Float64: *snap.Weather.Temperature, Valid: true}
		}
		if snap.Weather.Condition != nil {
			condition = sql.NullString{String: *snap.Weather.Condition, Valid: true}
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO weather_data (temperature, condition, location)
		VALUES ($1, $2, $3)
	`, temperature, condition, snap.Location)
	if err != nil {
		return fmt.Errorf("failed to insert weather snapshot: %w", err)
	}

	for _, event := range snap.Events {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO events_data (name, popularity, distance_km)
			VALUES ($1, $2, $3)
		`, event.Name, event.Popularity, event.DistanceKm)
		if err != nil {
			return fmt.Errorf("failed to insert event snapshot: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pricing_suggestions (menu_item_id, recommended_price, internal_weight, external_weight, reasoning)
		VALUES ($1, $2, $3, $4, $5)
	`, snap.MenuItemID, snap.Result.RecommendedPrice, snap.Result.InternalWeight, snap.Result.ExternalWeight, snap.Result.Reasoning)
	if err != nil {
		return fmt.Errorf("failed to insert pricing suggestion: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return nil
}

// ListSuggestions returns the most recent stored pricing suggestions.
func (r *PricingRepository) ListSuggestions(ctx context.Context, limit int) ([]models.PricingSuggestion, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, menu_item_id, recommended_price, internal_weight, external_weight, reasoning, created_at
		FROM pricing_suggestions
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pricing suggestions: %w", err)
	}
	defer rows.Close()

	suggestions := make([]models.PricingSuggestion, 0, limit)
	for rows.Next() {
		var s models.PricingSuggestion
		if err := rows.Scan(&s.ID, &s.MenuItemID, &s.RecommendedPrice, &s.InternalWeight, &s.ExternalWeight, &s.Reasoning, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pricing suggestion: %w", err)
		}
		suggestions = append(suggestions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pricing suggestions: %w", err)
	}

	return suggestions, nil
}

// CreateInferenceLog stores one model-call audit row.
func (r *PricingRepository) CreateInferenceLog(ctx context.Context, log models.InferenceLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inference_logs (id, request_id, model, operation, prompt_tokens, completion_tokens, total_tokens, latency_ms, status, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, log.ID, log.RequestID, log.Model, log.Operation, log.PromptTokens, log.CompletionTokens, log.TotalTokens, log.LatencyMs, log.Status, log.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to insert inference log: %w", err)
	}
	return nil
}
