package subscriptions

import (
	"time"

	"marketplace-payments/internal/domain/plans"
)

const (
	StatusActive  = "active"
	StatusExpired = "expired"
)

// Subscription is what a completed payment activates. PaymentID is unique so
// a payment can activate at most one subscription.
type Subscription struct {
	ID        string      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string      `gorm:"not null;index:idx_subscriptions_user_status" json:"user_id"`
	PlanID    *uint       `json:"plan_id,omitempty"`
	Plan      *plans.Plan `json:"plan,omitempty"`
	PaymentID string      `gorm:"type:uuid;not null;uniqueIndex:idx_subscriptions_payment_id" json:"payment_id"`
	Status    string      `gorm:"type:varchar(20);not null;index:idx_subscriptions_user_status" json:"status"`
	StartsAt  time.Time   `gorm:"not null" json:"starts_at"`
	EndsAt    time.Time   `gorm:"not null" json:"ends_at"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
