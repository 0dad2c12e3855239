package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

type LineItem struct {
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Currency  string          `json:"currency"`
	// StripePriceID is a catalog price on the Stripe account; when set, Stripe
	// charges it instead of UnitPrice.
	StripePriceID string `json:"stripe_price_id,omitempty"`
}

func (i LineItem) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PaymentDetails is the payment_details column. Gateway selects which of the
// gateway snapshots is meaningful; the other stays nil.
type PaymentDetails struct {
	Gateway      Method     `json:"gateway"`
	PreferenceID string     `json:"preference_id"`
	Items        []LineItem `json:"items"`

	MercadoPago *MercadoPagoPayment `json:"mercadopago,omitempty"`
	Stripe      *StripeSession      `json:"stripe,omitempty"`

	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// MercadoPagoPayment is the last-seen Mercado Pago payment object.
type MercadoPagoPayment struct {
	ID                int64           `json:"id"`
	Status            string          `json:"status"`
	StatusDetail      string          `json:"status_detail,omitempty"`
	ExternalReference string          `json:"external_reference,omitempty"`
	PreferenceID      string          `json:"preference_id,omitempty"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	CurrencyID        string          `json:"currency_id,omitempty"`
	PaymentMethodID   string          `json:"payment_method_id,omitempty"`
	PaymentTypeID     string          `json:"payment_type_id,omitempty"`
	DateApproved      *string         `json:"date_approved,omitempty"`
	DateLastUpdated   string          `json:"date_last_updated,omitempty"`
}

// StripeSession is the last-seen Stripe Checkout session.
type StripeSession struct {
	ID                string `json:"id"`
	PaymentIntent     string `json:"payment_intent,omitempty"`
	Status            string `json:"status"`
	PaymentStatus     string `json:"payment_status"`
	ClientReferenceID string `json:"client_reference_id,omitempty"`
	AmountTotal       int64  `json:"amount_total"`
	Currency          string `json:"currency,omitempty"`
}

func NewPaymentDetails(method Method, preferenceID string, items ...LineItem) PaymentDetails {
	return PaymentDetails{
		Gateway:      method,
		PreferenceID: preferenceID,
		Items:        items,
	}
}

// WithGatewayPayment returns a copy carrying the fetched gateway snapshot and
// the time it was seen.
func (d PaymentDetails) WithGatewayPayment(gp *GatewayPayment, at time.Time) PaymentDetails {
	if d.Gateway == "" {
		d.Gateway = gp.Method
	}
	if d.PreferenceID == "" {
		d.PreferenceID = gp.PreferenceID
	}
	switch d.Gateway {
	case MethodMercadoPago:
		if gp.MercadoPago != nil {
			snapshot := *gp.MercadoPago
			d.MercadoPago = &snapshot
		}
	case MethodStripe:
		if gp.Stripe != nil {
			snapshot := *gp.Stripe
			d.Stripe = &snapshot
		}
	}
	ts := at.UTC()
	d.LastUpdated = &ts
	return d
}
