package access

import (
	"time"

	"marketplace-payments/internal/domain/subscriptions"
)

// ComputeAccessState reports what a seller's latest subscription grants at now.
func ComputeAccessState(now time.Time, sub *subscriptions.Subscription) AccessState {
	if sub == nil {
		return AccessNone
	}
	if sub.Status == subscriptions.StatusActive && now.Before(sub.EndsAt) {
		return AccessActive
	}
	return AccessExpired
}
