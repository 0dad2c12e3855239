package access

import (
	"time"

	"marketplace-payments/internal/domain/plans"
	"marketplace-payments/internal/domain/subscriptions"
)

type Policy struct {
	State        AccessState
	Tier         string
	ActiveUntil  *time.Time
	Capabilities []string
}

func ComputePolicy(now time.Time, sub *subscriptions.Subscription) Policy {
	state := ComputeAccessState(now, sub)

	var plan *plans.Plan
	var until *time.Time
	if sub != nil {
		plan = sub.Plan
		if state == AccessActive {
			end := sub.EndsAt
			until = &end
		}
	}

	tier := plans.TierNone
	if state == AccessActive {
		tier = plans.PlanTier(plan)
	}

	return Policy{
		State:        state,
		Tier:         tier,
		ActiveUntil:  until,
		Capabilities: CapabilitiesFor(state, plan),
	}
}
