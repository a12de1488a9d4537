package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/menumetrics/menupricer/internal/config"
	"github.com/menumetrics/menupricer/internal/inference"
	"github.com/menumetrics/menupricer/internal/models"
)

// Outcome identifies which tier of the recommendation cascade produced a
// result.
type Outcome string

const (
	// OutcomePrimary means the first model call validated cleanly.
	OutcomePrimary Outcome = "primary"
	// OutcomeRepaired means the repair call produced a valid result.
	OutcomeRepaired Outcome = "repaired"
	// OutcomeRepairFallback means the repair call also failed and the static
	// conservative price was used.
	OutcomeRepairFallback Outcome = "repair_fallback"
	// OutcomeEmergency means the primary pipeline failed entirely and the
	// minimal emergency call succeeded.
	OutcomeEmergency Outcome = "emergency"
	// OutcomeEmergencyFallback means even the emergency call failed.
	OutcomeEmergencyFallback Outcome = "emergency_fallback"
)

const (
	opSuggestion = "suggestion"
	opRepair     = "repair"
	opEmergency  = "emergency"

	repairMaxTokens    = 200
	emergencyMaxTokens = 150

	repairFallbackReasoning    = "Standard pricing applied due to processing error."
	emergencyFallbackReasoning = "Conservative price increase applied."
)

// Emergency reports whether the outcome came from the emergency path, which
// skips the persistence sink.
func (o Outcome) Emergency() bool {
	return o == OutcomeEmergency || o == OutcomeEmergencyFallback
}

// Engine runs the recommendation cascade: primary model call, validation,
// one repair call, and the static fallbacks. It holds no mutable state and
// is safe for concurrent use.
type Engine struct {
	completer Completer
	cfg       config.PricingConfig
	ai        config.OpenAIConfig
	prompts   *PromptTemplates
	audit     *inference.Recorder
	logger    *slog.Logger
}

// NewEngine constructs an Engine. The audit recorder may be nil.
func NewEngine(completer Completer, cfg config.PricingConfig, ai config.OpenAIConfig, audit *inference.Recorder, logger *slog.Logger) *Engine {
	return &Engine{
		completer: completer,
		cfg:       cfg,
		ai:        ai,
		prompts:   NewPromptTemplates(),
		audit:     audit,
		logger:    logger,
	}
}

// Suggest produces a pricing recommendation for a validated request. It
// always returns a well-formed result; failures degrade through the repair
// and emergency tiers rather than surfacing as errors.
func (e *Engine) Suggest(ctx context.Context, requestID string, req models.PricingRequest) (models.PricingResult, Outcome) {
	currentPrice := *req.CurrentPrice

	result, outcome, err := e.recommend(ctx, requestID, req)
	if err != nil {
		e.logger.Error("pricing pipeline failed, using emergency fallback",
			"request_id", requestID,
			"menu_item_id", *req.MenuItemID,
			"error", err)
		return e.emergency(ctx, requestID, currentPrice)
	}

	return result, outcome
}

// recommend runs the primary call plus validation; a validation failure
// degrades into the repair tier, which never errors. Only transport-level
// failures of the primary call propagate.
func (e *Engine) recommend(ctx context.Context, requestID string, req models.PricingRequest) (models.PricingResult, Outcome, error) {
	currentPrice := *req.CurrentPrice

	market := e.marketSummary(*req.MenuItemID, currentPrice, req.CompetitorPrices)
	thresholds := e.thresholds(currentPrice)
	prompt := e.prompts.BuildSuggestionPrompt(market, req.Weather, req.Events, thresholds)

	raw, err := e.callModel(ctx, requestID, opSuggestion, ChatRequest{
		System:      e.prompts.SystemPrompt,
		User:        prompt,
		Temperature: e.ai.Temperature,
		MaxTokens:   e.ai.MaxTokens,
	})
	if err != nil {
		return models.PricingResult{}, "", err
	}

	result, err := normalizeResponse(raw, currentPrice, e.cfg)
	if err != nil {
		if !errors.Is(err, ErrNeedsRepair) {
			return models.PricingResult{}, "", err
		}
		e.logger.Warn("model response failed validation, requesting repair",
			"request_id", requestID,
			"error", err)
		result, outcome := e.repair(ctx, requestID, raw, currentPrice)
		return result, outcome, nil
	}

	e.logger.Info("ai recommendation",
		"request_id", requestID,
		"recommended_price", result.RecommendedPrice,
		"internal_weight", result.InternalWeight,
		"external_weight", result.ExternalWeight)

	return result, OutcomePrimary, nil
}

// repair asks the model to correct its own malformed output, at half the
// configured temperature and a reduced token budget. Terminal: any further
// failure resolves to the static conservative result.
func (e *Engine) repair(ctx context.Context, requestID string, broken map[string]any, currentPrice float64) (models.PricingResult, Outcome) {
	minPrice, maxPrice := priceBand(currentPrice, e.cfg)

	raw, err := e.callModel(ctx, requestID, opRepair, ChatRequest{
		System:      e.prompts.RepairSystemPrompt,
		User:        e.prompts.BuildRepairPrompt(broken, minPrice, maxPrice),
		Temperature: e.ai.Temperature * 0.5,
		MaxTokens:   repairMaxTokens,
	})
	if err == nil {
		result, verr := normalizeResponse(raw, currentPrice, e.cfg)
		if verr == nil {
			return result, OutcomeRepaired
		}
		err = verr
	}

	e.logger.Error("repair attempt failed, using static fallback",
		"request_id", requestID,
		"error", err)

	return models.PricingResult{
		RecommendedPrice: floorPrice(currentPrice * e.cfg.ConservativeAdjustment),
		InternalWeight:   e.cfg.DefaultInternalWeight,
		ExternalWeight:   e.cfg.DefaultExternalWeight,
		Reasoning:        repairFallbackReasoning,
	}, OutcomeRepairFallback
}

// emergency issues one minimal call with the current price only. Terminal:
// any failure resolves to the static conservative result.
func (e *Engine) emergency(ctx context.Context, requestID string, currentPrice float64) (models.PricingResult, Outcome) {
	raw, err := e.callModel(ctx, requestID, opEmergency, ChatRequest{
		System: e.prompts.EmergencySystemPrompt,
		User: e.prompts.BuildEmergencyPrompt(currentPrice,
			e.cfg.PriceDecreaseMax, e.cfg.PriceIncreaseMax,
			e.cfg.DefaultInternalWeight, e.cfg.DefaultExternalWeight),
		Temperature: e.ai.Temperature * 0.5,
		MaxTokens:   emergencyMaxTokens,
	})
	if err != nil {
		e.logger.Error("emergency call failed, using static fallback",
			"request_id", requestID,
			"error", err)
		return models.PricingResult{
			RecommendedPrice: floorPrice(currentPrice * e.cfg.ConservativeAdjustment),
			InternalWeight:   e.cfg.DefaultInternalWeight,
			ExternalWeight:   e.cfg.DefaultExternalWeight,
			Reasoning:        emergencyFallbackReasoning,
		}, OutcomeEmergencyFallback
	}

	price, ok, perr := numberField(raw, "recommended_price")
	if perr != nil || !ok {
		price = currentPrice * e.cfg.ConservativeAdjustment
	}

	minPrice, maxPrice := priceBand(currentPrice, e.cfg)

	return models.PricingResult{
		RecommendedPrice: clampInt(int(price), minPrice, maxPrice),
		InternalWeight:   e.cfg.DefaultInternalWeight,
		ExternalWeight:   e.cfg.DefaultExternalWeight,
		Reasoning:        reasoningField(raw),
	}, OutcomeEmergency
}

// callModel performs one completion, records it in the inference audit log,
// and parses the response body as a JSON object.
func (e *Engine) callModel(ctx context.Context, requestID, operation string, req ChatRequest) (map[string]any, error) {
	start := time.Now()
	content, usage, err := e.completer.Complete(ctx, req)
	latency := time.Since(start)

	if e.audit != nil {
		e.audit.Record(inference.Call{
			RequestID:        requestID,
			Model:            e.completer.Model(),
			Operation:        operation,
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
			Latency:          latency,
			Err:              err,
		})
	}

	if err != nil {
		return nil, fmt.Errorf("%s call: %w", operation, err)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("%s call returned malformed JSON: %w", operation, err)
	}

	return raw, nil
}

// marketSummary digests competitor prices, substituting the current price
// for mean/min/max when no competitors are supplied.
func (e *Engine) marketSummary(menuItemID int64, currentPrice float64, prices []float64) models.MarketSummary {
	if prices == nil {
		prices = []float64{}
	}

	summary := models.MarketSummary{
		MenuItemID:          menuItemID,
		CurrentPrice:        currentPrice,
		CompetitorPrices:    prices,
		NumberOfCompetitors: len(prices),
		AvgCompetitorPrice:  currentPrice,
		MinCompetitorPrice:  currentPrice,
		MaxCompetitorPrice:  currentPrice,
	}

	if stats, ok := Stats(prices); ok {
		summary.AvgCompetitorPrice = stats.Mean
		summary.MinCompetitorPrice = stats.Min
		summary.MaxCompetitorPrice = stats.Max
		summary.PriceStdDev = stats.StdDev
	}

	return summary
}

// thresholds materializes the configured bounds for one request.
func (e *Engine) thresholds(currentPrice float64) models.ThresholdSnapshot {
	return models.ThresholdSnapshot{
		PriceBounds: models.PriceBounds{
			MinMultiplier: e.cfg.PriceDecreaseMax,
			MaxMultiplier: e.cfg.PriceIncreaseMax,
			MinPrice:      currentPrice * e.cfg.PriceDecreaseMax,
			MaxPrice:      currentPrice * e.cfg.PriceIncreaseMax,
		},
		Weather: models.WeatherBands{
			HighTemp:    e.cfg.HighTempThreshold,
			LowTemp:     e.cfg.LowTempThreshold,
			ExtremeHigh: e.cfg.ExtremeHighTemp,
			ExtremeLow:  e.cfg.ExtremeLowTemp,
		},
		Events: models.EventBands{
			ProximityKm:   e.cfg.EventProximityKm,
			FarDistanceKm: e.cfg.EventFarDistanceKm,
		},
		Competitors: models.CompetitorBands{
			HighCount: e.cfg.HighCompetitorCount,
		},
	}
}
