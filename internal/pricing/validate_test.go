package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/menumetrics/menupricer/internal/config"
)

func testPricingConfig() config.PricingConfig {
	return config.PricingConfig{
		PriceIncreaseMax:       1.3,
		PriceDecreaseMax:       0.7,
		ConservativeAdjustment: 1.05,
		DefaultInternalWeight:  0.6,
		DefaultExternalWeight:  0.4,
		HighTempThreshold:      30,
		LowTempThreshold:       10,
		ExtremeHighTemp:        35,
		ExtremeLowTemp:         5,
		EventProximityKm:       5,
		EventFarDistanceKm:     5,
		HighCompetitorCount:    3,
		DefaultLocation:        "default",
	}
}

func TestNormalizeWellFormedResponse(t *testing.T) {
	raw := map[string]any{
		"internal_weight":   0.4,
		"external_weight":   0.6,
		"recommended_price": 268.0,
		"reasoning":         "Nearby event and warm weather.",
	}

	result, err := normalizeResponse(raw, 250, testPricingConfig())
	if err != nil {
		t.Fatalf("normalizeResponse returned error: %v", err)
	}

	if result.RecommendedPrice != 268 {
		t.Errorf("expected price 268, got %d", result.RecommendedPrice)
	}
	if result.InternalWeight != 0.4 || result.ExternalWeight != 0.6 {
		t.Errorf("expected weights 0.4/0.6, got %v/%v", result.InternalWeight, result.ExternalWeight)
	}
	if result.Reasoning != "Nearby event and warm weather." {
		t.Errorf("unexpected reasoning %q", result.Reasoning)
	}
}

func TestNormalizeRenormalizationTieBreak(t *testing.T) {
	// Raw weights summing to 0.6: internal rounds first, external is
	// derived as 1 minus the rounded value, forcing the sum to 1.0.
	raw := map[string]any{
		"internal_weight":   0.3,
		"external_weight":   0.3,
		"recommended_price": 250.0,
	}

	result, err := normalizeResponse(raw, 250, testPricingConfig())
	if err != nil {
		t.Fatalf("normalizeResponse returned error: %v", err)
	}

	if result.InternalWeight != 0.5 {
		t.Errorf("expected internal weight exactly 0.5, got %v", result.InternalWeight)
	}
	if result.ExternalWeight != 0.5 {
		t.Errorf("expected external weight exactly 0.5, got %v", result.ExternalWeight)
	}
	if sum := result.InternalWeight + result.ExternalWeight; math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("weights must sum to 1.0, got %v", sum)
	}
}

func TestNormalizeWeightSumInvariant(t *testing.T) {
	cases := []struct {
		name     string
		internal float64
		external float64
	}{
		{"skewed", 0.9, 0.4},
		{"tiny", 0.001, 0.002},
		{"already normalized", 0.7, 0.3},
		{"thirds", 1, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := map[string]any{
				"internal_weight": tc.internal,
				"external_weight": tc.external,
			}
			result, err := normalizeResponse(raw, 100, testPricingConfig())
			if err != nil {
				t.Fatalf("normalizeResponse returned error: %v", err)
			}
			if sum := result.InternalWeight + result.ExternalWeight; math.Abs(sum-1.0) > 1e-9 {
				t.Errorf("weights must sum to 1.0, got %v (in=%v ex=%v)", sum, result.InternalWeight, result.ExternalWeight)
			}
		})
	}
}

func TestNormalizeZeroWeightSumUsesDefaults(t *testing.T) {
	raw := map[string]any{
		"internal_weight": 0.0,
		"external_weight": 0.0,
	}

	result, err := normalizeResponse(raw, 100, testPricingConfig())
	if err != nil {
		t.Fatalf("normalizeResponse returned error: %v", err)
	}

	if result.InternalWeight != 0.6 || result.ExternalWeight != 0.4 {
		t.Errorf("expected default weights 0.6/0.4, got %v/%v", result.InternalWeight, result.ExternalWeight)
	}
}

func TestNormalizeDefaultsForAbsentFields(t *testing.T) {
	result, err := normalizeResponse(map[string]any{}, 250, testPricingConfig())
	if err != nil {
		t.Fatalf("normalizeResponse returned error: %v", err)
	}

	if result.RecommendedPrice != 250 {
		t.Errorf("expected price to default to current price 250, got %d", result.RecommendedPrice)
	}
	if result.InternalWeight != 0.6 || result.ExternalWeight != 0.4 {
		t.Errorf("expected default weights, got %v/%v", result.InternalWeight, result.ExternalWeight)
	}
	if result.Reasoning != defaultReasoning {
		t.Errorf("expected default reasoning, got %q", result.Reasoning)
	}
}

func TestNormalizeClampsPriceIntoBand(t *testing.T) {
	// current_price=250 with multipliers 0.7/1.3 gives the band [175, 325]
	cases := []struct {
		name  string
		price float64
		want  int
	}{
		{"above max", 500, 325},
		{"below min", 100, 175},
		{"at max", 325, 325},
		{"at min", 175, 175},
		{"inside", 268, 268},
		{"truncated", 267.9, 267},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := map[string]any{
				"internal_weight":   0.5,
				"external_weight":   0.5,
				"recommended_price": tc.price,
			}
			result, err := normalizeResponse(raw, 250, testPricingConfig())
			if err != nil {
				t.Fatalf("normalizeResponse returned error: %v", err)
			}
			if result.RecommendedPrice != tc.want {
				t.Errorf("price %v: expected %d, got %d", tc.price, tc.want, result.RecommendedPrice)
			}
		})
	}
}

func TestNormalizeAcceptsNumericStrings(t *testing.T) {
	raw := map[string]any{
		"internal_weight":   "0.4",
		"external_weight":   "0.6",
		"recommended_price": "268",
	}

	result, err := normalizeResponse(raw, 250, testPricingConfig())
	if err != nil {
		t.Fatalf("normalizeResponse returned error: %v", err)
	}

	if result.RecommendedPrice != 268 {
		t.Errorf("expected price 268, got %d", result.RecommendedPrice)
	}
	if result.InternalWeight != 0.4 {
		t.Errorf("expected internal weight 0.4, got %v", result.InternalWeight)
	}
}

func TestNormalizeNeedsRepair(t *testing.T) {
	cases := []struct {
		name string
		raw  map[string]any
	}{
		{"non-numeric price", map[string]any{"recommended_price": "about right"}},
		{"non-numeric weight", map[string]any{"internal_weight": "high"}},
		{"nested object", map[string]any{"external_weight": map[string]any{"value": 0.4}}},
		{"boolean weight", map[string]any{"internal_weight": true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := normalizeResponse(tc.raw, 250, testPricingConfig())
			if !errors.Is(err, ErrNeedsRepair) {
				t.Fatalf("expected ErrNeedsRepair, got %v", err)
			}
		})
	}
}

func TestNormalizeStringifiesNonStringReasoning(t *testing.T) {
	raw := map[string]any{"reasoning": 42.0}

	result, err := normalizeResponse(raw, 100, testPricingConfig())
	if err != nil {
		t.Fatalf("normalizeResponse returned error: %v", err)
	}
	if result.Reasoning != "42" {
		t.Errorf("expected stringified reasoning %q, got %q", "42", result.Reasoning)
	}
}
