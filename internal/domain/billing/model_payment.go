package billing

import (
	"time"

	"marketplace-payments/internal/domain/plans"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Method is the gateway a payment goes through. It is also the tag of
// PaymentDetails.
type Method string

const (
	MethodMercadoPago Method = "mercadopago"
	MethodStripe      Method = "stripe"
)

func (m Method) Valid() bool {
	return m == MethodMercadoPago || m == MethodStripe
}

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
)

type Payment struct {
	ID               string                             `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           string                             `gorm:"not null;index" json:"user_id"`
	PlanID           *uint                              `json:"plan_id,omitempty"`
	Plan             *plans.Plan                        `json:"plan,omitempty"`
	Amount           decimal.Decimal                    `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentMethod    Method                             `gorm:"type:varchar(20);not null" json:"payment_method"`
	PreferenceID     string                             `gorm:"not null;uniqueIndex:idx_payments_preference_id" json:"preference_id"`
	GatewayPaymentID *string                            `gorm:"index" json:"gateway_payment_id,omitempty"`
	Status           string                             `gorm:"type:varchar(40);not null;index" json:"status"`
	PaymentDetails   datatypes.JSONType[PaymentDetails] `gorm:"type:jsonb" json:"payment_details"`
	ActivatedAt      *time.Time                         `json:"activated_at,omitempty"`
	CreatedAt        time.Time                          `json:"created_at"`
	UpdatedAt        time.Time                          `json:"updated_at"`
}

// NewPendingPayment builds the record written right after the gateway
// accepted a preference.
func NewPendingPayment(method Method, userID string, planID *uint, pref *Preference, item LineItem) *Payment {
	return &Payment{
		ID:             uuid.NewString(),
		UserID:         userID,
		PlanID:         planID,
		Amount:         item.Total(),
		PaymentMethod:  method,
		PreferenceID:   pref.ID,
		Status:         StatusPending,
		PaymentDetails: datatypes.NewJSONType(NewPaymentDetails(method, pref.ID, item)),
	}
}
