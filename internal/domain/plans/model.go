package plans

import (
	"time"

	"github.com/shopspring/decimal"
)

type Plan struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"not null" json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Currency      string          `gorm:"type:varchar(3);not null;default:'BRL'" json:"currency"`
	DurationDays  int             `gorm:"not null;default:30" json:"duration_days"`
	Tier          string          `gorm:"column:tier" json:"tier"` // "basic" | "featured" | "premium"
	Active        bool            `gorm:"not null;default:true;index" json:"active"`
	StripePriceID *string         `gorm:"column:stripe_price_id;uniqueIndex:idx_plans_stripe_price_id" json:"stripe_price_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Duration is how long a purchase of this plan keeps a listing active.
func (p *Plan) Duration(fallback time.Duration) time.Duration {
	if p == nil || p.DurationDays <= 0 {
		return fallback
	}
	return time.Duration(p.DurationDays) * 24 * time.Hour
}
