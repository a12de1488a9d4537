package pricing

import (
	"encoding/json"
	"fmt"

	"github.com/menumetrics/menupricer/internal/models"
)

// PromptTemplates holds the system prompts for the three remote-call tiers.
type PromptTemplates struct {
	SystemPrompt          string
	RepairSystemPrompt    string
	EmergencySystemPrompt string
}

// NewPromptTemplates creates the prompts used for pricing recommendations.
func NewPromptTemplates() *PromptTemplates {
	return &PromptTemplates{
		SystemPrompt: `You are an expert AI pricing analyst with deep knowledge of:
- Dynamic pricing strategies
- Market analysis and competitive positioning
- Demand forecasting based on external factors
- Weight allocation for multi-factor decision making

Always provide data-driven recommendations with precise numerical weights.
Respond only in valid JSON format.`,
		RepairSystemPrompt:    "You fix malformed pricing data. Always return valid JSON.",
		EmergencySystemPrompt: "Provide safe pricing recommendations. Always return valid JSON.",
	}
}

// BuildSuggestionPrompt assembles the full market/weather/event/threshold
// payload together with the decision rules the model must apply.
func (p *PromptTemplates) BuildSuggestionPrompt(market models.MarketSummary, weather *models.Weather, events []models.Event, thresholds models.ThresholdSnapshot) string {
	marketJSON := mustMarshal(market)
	weatherJSON := mustMarshal(weather)
	eventsJSON := mustMarshal(events)
	thresholdsJSON := mustMarshal(thresholds)

	return fmt.Sprintf(`You are an advanced AI pricing strategist. Your task is to analyze market data and provide a complete pricing strategy.

MARKET DATA:
%s

WEATHER DATA:
%s

EVENTS DATA:
%s

CONFIGURATION THRESHOLDS:
%s

YOUR TASK:
Analyze all the provided data and determine:

1. DYNAMIC WEIGHT ALLOCATION:
   - Calculate internal_weight (0.0 to 1.0): How much should market/competitor factors influence pricing?
   - Calculate external_weight (0.0 to 1.0): How much should weather/events influence pricing?
   - Weights must sum to 1.0
   - Consider:
     * More than %d competitors or high price variance -> higher internal_weight
     * Temperature above %g C or below %g C -> higher external_weight
     * Extreme conditions (above %g C, below %g C) -> much higher external_weight
     * High popularity events within %g km -> higher external_weight
     * Events farther than %g km -> minimal impact

2. PRICE RECOMMENDATION:
   - Recommend an optimal price (integer value)
   - Price must be between %d and %d
   - Apply internal_weight to market-based pricing
   - Apply external_weight to demand-based pricing

3. REASONING:
   - Provide a clear, concise explanation (1-2 sentences)
   - Explain why you allocated weights the way you did
   - Mention key factors driving the price recommendation

Respond ONLY with valid JSON in this exact format:
{
    "internal_weight": <decimal between 0.0 and 1.0>,
    "external_weight": <decimal between 0.0 and 1.0>,
    "recommended_price": <integer>,
    "reasoning": "<your explanation>"
}`,
		marketJSON,
		weatherJSON,
		eventsJSON,
		thresholdsJSON,
		thresholds.Competitors.HighCount,
		thresholds.Weather.HighTemp,
		thresholds.Weather.LowTemp,
		thresholds.Weather.ExtremeHigh,
		thresholds.Weather.ExtremeLow,
		thresholds.Events.ProximityKm,
		thresholds.Events.FarDistanceKm,
		floorPrice(thresholds.PriceBounds.MinPrice),
		floorPrice(thresholds.PriceBounds.MaxPrice),
	)
}

// BuildRepairPrompt embeds a malformed model response and asks for a
// corrected object meeting the same contract.
func (p *PromptTemplates) BuildRepairPrompt(broken map[string]any, minPrice, maxPrice int) string {
	return fmt.Sprintf(`The following pricing response has issues:
%s

Please provide a corrected version with:
- internal_weight: decimal between 0.0 and 1.0
- external_weight: decimal between 0.0 and 1.0 (must sum with internal_weight to 1.0)
- recommended_price: integer between %d and %d
- reasoning: brief explanation string

Respond ONLY with valid JSON.`, mustMarshal(broken), minPrice, maxPrice)
}

// BuildEmergencyPrompt asks for a minimal safe adjustment using only the
// current price and the configured percentage band.
func (p *PromptTemplates) BuildEmergencyPrompt(currentPrice, decreaseMax, increaseMax, internalWeight, externalWeight float64) string {
	return fmt.Sprintf(`Provide emergency pricing for an item with current price $%g.
Suggest a safe price adjustment within %.0f%% to +%.0f%%.

Respond with JSON:
{
    "recommended_price": <integer>,
    "internal_weight": %g,
    "external_weight": %g,
    "reasoning": "<brief explanation>"
}`,
		currentPrice,
		(decreaseMax-1)*100,
		(increaseMax-1)*100,
		internalWeight,
		externalWeight,
	)
}

func mustMarshal(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
