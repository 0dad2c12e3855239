package stripe

import (
	stripego "github.com/stripe/stripe-go/v75"
)

// GatewayStatus normalizes a Checkout session into the Mercado-Pago-style
// vocabulary the reconciliation uses ("approved", "rejected", ...).
func GatewayStatus(s *stripego.CheckoutSession) string {
	if s == nil {
		return ""
	}
	if s.Status == stripego.CheckoutSessionStatusExpired {
		return "expired"
	}
	switch s.PaymentStatus {
	case stripego.CheckoutSessionPaymentStatusPaid, stripego.CheckoutSessionPaymentStatusNoPaymentRequired:
		return "approved"
	}
	// unpaid: look at the intent for async payment methods
	if s.PaymentIntent != nil {
		switch s.PaymentIntent.Status {
		case stripego.PaymentIntentStatusCanceled, stripego.PaymentIntentStatusRequiresPaymentMethod:
			if s.Status == stripego.CheckoutSessionStatusComplete {
				return "rejected"
			}
		case stripego.PaymentIntentStatusProcessing:
			return "in_process"
		}
	}
	return "pending"
}
