package pricing

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/menumetrics/menupricer/internal/config"
	"github.com/menumetrics/menupricer/internal/models"
)

// ErrNeedsRepair marks a model response whose fields could not be coerced
// into the expected shape. The engine reacts by issuing a repair call rather
// than surfacing the error.
var ErrNeedsRepair = errors.New("model response needs repair")

const defaultReasoning = "Price optimized based on AI analysis"

// normalizeResponse coerces a raw model response into a well-formed
// PricingResult:
//
//   - weights default to the configured split when absent, are renormalized
//     to sum to 1.0 when their sum is positive, and are reset to the defaults
//     otherwise; external_weight is always derived as 1 minus the rounded
//     internal_weight so the sum invariant holds exactly
//   - recommended_price defaults to the current price, is truncated to an
//     integer and clamped into the configured band
//
// A field that is present but not coercible to a number yields ErrNeedsRepair.
func normalizeResponse(raw map[string]any, currentPrice float64, cfg config.PricingConfig) (models.PricingResult, error) {
	internal, ok, err := numberField(raw, "internal_weight")
	if err != nil {
		return models.PricingResult{}, err
	}
	if !ok {
		internal = cfg.DefaultInternalWeight
	}

	external, ok, err := numberField(raw, "external_weight")
	if err != nil {
		return models.PricingResult{}, err
	}
	if !ok {
		external = cfg.DefaultExternalWeight
	}

	price, ok, err := numberField(raw, "recommended_price")
	if err != nil {
		return models.PricingResult{}, err
	}
	if !ok {
		price = currentPrice
	}

	if total := internal + external; total > 0 {
		internal = round2(internal / total)
		external = round2(1.0 - internal)
	} else {
		internal = cfg.DefaultInternalWeight
		external = cfg.DefaultExternalWeight
	}

	minPrice, maxPrice := priceBand(currentPrice, cfg)
	recommended := clampInt(int(price), minPrice, maxPrice)

	return models.PricingResult{
		RecommendedPrice: recommended,
		InternalWeight:   internal,
		ExternalWeight:   external,
		Reasoning:        reasoningField(raw),
	}, nil
}

// priceBand computes the closed integer price band for the given current
// price. Both bounds floor toward zero.
func priceBand(currentPrice float64, cfg config.PricingConfig) (int, int) {
	return floorPrice(currentPrice * cfg.PriceDecreaseMax), floorPrice(currentPrice * cfg.PriceIncreaseMax)
}

// floorPrice floors a computed price bound, compensating for binary float
// artifacts so that exact products like 250*0.7 floor to 175 rather than 174.
func floorPrice(v float64) int {
	return int(math.Floor(v + 1e-9))
}

// numberField extracts a numeric field. Returns ok=false when the key is
// absent or null, and ErrNeedsRepair when a value exists but cannot be read
// as a number. Numeric strings are accepted.
func numberField(raw map[string]any, key string) (float64, bool, error) {
	v, exists := raw[key]
	if !exists || v == nil {
		return 0, false, nil
	}

	switch n := v.(type) {
	case float64:
		return n, true, nil
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false, fmt.Errorf("%w: field %q has non-numeric value %q", ErrNeedsRepair, key, n)
		}
		return parsed, true, nil
	default:
		return 0, false, fmt.Errorf("%w: field %q has unexpected type %T", ErrNeedsRepair, key, v)
	}
}

// reasoningField stringifies the reasoning value, substituting a generic
// explanation when absent.
func reasoningField(raw map[string]any) string {
	v, exists := raw["reasoning"]
	if !exists || v == nil {
		return defaultReasoning
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
