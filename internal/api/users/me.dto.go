package users

import (
	"time"

	"github.com/shopspring/decimal"
)

type MeResponse struct {
	User    UserDTO    `json:"user"`
	Billing BillingDTO `json:"billing"`
	Access  AccessDTO  `json:"access"`
}

/* ---------- USER ---------- */

type UserDTO struct {
	ID    string  `json:"id"`
	Email *string `json:"email"`
	Role  string  `json:"role"`
}

/* ---------- BILLING ---------- */

type BillingDTO struct {
	Plan         *PlanDTO         `json:"plan"`
	Subscription *SubscriptionDTO `json:"subscription"`
}

type PlanDTO struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	Tier         string          `json:"tier"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	DurationDays int             `json:"duration_days"`
}

type SubscriptionDTO struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	PaymentID string    `json:"payment_id"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
}

/* ---------- ACCESS ---------- */

type AccessDTO struct {
	State        string     `json:"state"`
	Tier         string     `json:"tier"`
	ActiveUntil  *time.Time `json:"active_until"`
	Capabilities []string   `json:"capabilities"`
}
