package billing

import "github.com/shopspring/decimal"

// Credentials authenticate calls to one gateway. WebhookSecret is optional
// for Mercado Pago and required for Stripe webhooks.
type Credentials struct {
	AccessToken   string
	PublicKey     string
	WebhookSecret string
}

type BackURLs struct {
	Success string
	Failure string
	Pending string
}

type PreferenceRequest struct {
	Item              LineItem
	ExternalReference string
	BackURLs          BackURLs
	NotificationURL   string
}

type Preference struct {
	ID          string
	CheckoutURL string
}

// ValidPaymentID reports whether id is safe to look up at a gateway: letters,
// digits, '-' and '_' only.
func ValidPaymentID(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// GatewayPayment is the authoritative payment state fetched from a gateway.
type GatewayPayment struct {
	Method            Method
	ID                string
	Status            string
	ExternalReference string
	PreferenceID      string
	Amount            decimal.Decimal

	MercadoPago *MercadoPagoPayment
	Stripe      *StripeSession
}
