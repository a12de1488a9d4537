package models

import "time"

// PricingRequest is the caller-supplied context for one pricing suggestion.
// MenuItemID and CurrentPrice are pointers so the handler can distinguish
// absent fields from zero values.
type PricingRequest struct {
	MenuItemID       *int64    `json:"menu_item_id"`
	CurrentPrice     *float64  `json:"current_price"`
	CompetitorPrices []float64 `json:"competitor_prices"`
	Weather          *Weather  `json:"weather"`
	Events           []Event   `json:"events"`
}

// Weather is an optional snapshot of current conditions near the restaurant.
// Both fields are nullable; the persistence layer stores whatever was given.
type Weather struct {
	Temperature *float64 `json:"temperature"`
	Condition   *string  `json:"condition"`
}

// Event describes a nearby event that may shift demand.
type Event struct {
	Name       string  `json:"name"`
	Popularity string  `json:"popularity"`
	DistanceKm float64 `json:"distance_km"`
}

// MarketSummary is the competitor-price digest embedded into the model prompt.
// When no competitor prices are supplied the current price substitutes for
// mean/min/max and the standard deviation is zero.
type MarketSummary struct {
	MenuItemID          int64     `json:"menu_item_id"`
	CurrentPrice        float64   `json:"current_price"`
	CompetitorPrices    []float64 `json:"competitor_prices"`
	NumberOfCompetitors int       `json:"number_of_competitors"`
	AvgCompetitorPrice  float64   `json:"avg_competitor_price"`
	MinCompetitorPrice  float64   `json:"min_competitor_price"`
	MaxCompetitorPrice  float64   `json:"max_competitor_price"`
	PriceStdDev         float64   `json:"price_std_dev"`
}

// ThresholdSnapshot carries the configured bounds for one request. It is
// serialized verbatim into the prompt so the model reasons against the same
// numbers the validator later enforces.
type ThresholdSnapshot struct {
	PriceBounds PriceBounds     `json:"price_bounds"`
	Weather     WeatherBands    `json:"weather"`
	Events      EventBands      `json:"events"`
	Competitors CompetitorBands `json:"competitors"`
}

// PriceBounds is the closed band any recommended price must fall into.
type PriceBounds struct {
	MinMultiplier float64 `json:"min_multiplier"`
	MaxMultiplier float64 `json:"max_multiplier"`
	MinPrice      float64 `json:"min_price"`
	MaxPrice      float64 `json:"max_price"`
}

// WeatherBands holds the temperature thresholds for external weighting.
type WeatherBands struct {
	HighTemp    float64 `json:"high_temp"`
	LowTemp     float64 `json:"low_temp"`
	ExtremeHigh float64 `json:"extreme_high"`
	ExtremeLow  float64 `json:"extreme_low"`
}

// EventBands holds the event distance thresholds.
type EventBands struct {
	ProximityKm   float64 `json:"proximity_km"`
	FarDistanceKm float64 `json:"far_distance_km"`
}

// CompetitorBands holds the competitor-count threshold.
type CompetitorBands struct {
	HighCount int `json:"high_count"`
}

// PricingResult is the validated output of the recommendation cascade.
// InternalWeight and ExternalWeight always sum to 1.0 after normalization.
type PricingResult struct {
	RecommendedPrice int     `json:"recommended_price"`
	InternalWeight   float64 `json:"internal_weight"`
	ExternalWeight   float64 `json:"external_weight"`
	Reasoning        string  `json:"reasoning"`
}

// SuggestionSnapshot bundles everything the persistence sink writes for one
// request: the weather and event context as supplied by the caller plus the
// final pricing result.
type SuggestionSnapshot struct {
	MenuItemID int64
	Weather    *Weather
	Events     []Event
	Location   string
	Result     PricingResult
}

// PricingSuggestion is a stored pricing recommendation row.
type PricingSuggestion struct {
	ID               int64     `json:"id"`
	MenuItemID       int64     `json:"menu_item_id"`
	RecommendedPrice int       `json:"recommended_price"`
	InternalWeight   float64   `json:"internal_weight"`
	ExternalWeight   float64   `json:"external_weight"`
	Reasoning        string    `json:"reasoning"`
	CreatedAt        time.Time `json:"created_at"`
}

// InferenceLog records one outbound model call for auditing.
type InferenceLog struct {
	ID               string
	RequestID        string
	Model            string
	Operation        string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	LatencyMs        int
	Status           string
	ErrorMessage     *string
	CreatedAt        time.Time
}
