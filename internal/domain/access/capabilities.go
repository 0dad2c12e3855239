package access

import (
	"marketplace-payments/internal/domain/plans"
)

func CapabilitiesFor(state AccessState, plan *plans.Plan) []string {
	if state != AccessActive {
		return []string{}
	}

	switch plans.PlanTier(plan) {
	case plans.TierPremium:
		return []string{CapPublishListing, CapFeaturedPlacement, CapTopOfSearch, CapHighlightBadge}
	case plans.TierFeatured:
		return []string{CapPublishListing, CapFeaturedPlacement}
	default:
		return []string{CapPublishListing}
	}
}
