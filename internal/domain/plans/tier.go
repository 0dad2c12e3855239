package plans

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Tier constants (single source of truth)
const (
	TierNone     = "none"
	TierBasic    = "basic"
	TierFeatured = "featured"
	TierPremium  = "premium"
)

var (
	featuredFloor = decimal.NewFromInt(50)
	premiumFloor  = decimal.NewFromInt(120)
)

// PlanTier returns the effective tier for a plan.
// Priority:
// 1. Explicit Tier stored in DB
// 2. Fallback inference by price (legacy rows without a tier)
func PlanTier(p *Plan) string {
	if p == nil {
		return TierNone
	}

	tier := strings.ToLower(strings.TrimSpace(p.Tier))
	switch tier {
	case TierBasic, TierFeatured, TierPremium:
		return tier
	}

	return inferTierFromPrice(p.Price)
}

// TierRank orders tiers from none (0) to premium (3).
func TierRank(tier string) int {
	switch tier {
	case TierBasic:
		return 1
	case TierFeatured:
		return 2
	case TierPremium:
		return 3
	}
	return 0
}

func inferTierFromPrice(price decimal.Decimal) string {
	switch {
	case price.GreaterThanOrEqual(premiumFloor):
		return TierPremium
	case price.GreaterThanOrEqual(featuredFloor):
		return TierFeatured
	default:
		return TierBasic
	}
}
