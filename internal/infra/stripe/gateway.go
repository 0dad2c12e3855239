package stripe

import (
	"context"
	"errors"
	"strings"

	"marketplace-payments/internal/domain/billing"

	"github.com/shopspring/decimal"
	stripego "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
)

// Gateway maps the preference flow onto Stripe Checkout: a checkout session
// is the preference, and its id doubles as the payment id.
type Gateway struct {
	backends *stripego.Backends
}

// NewGateway builds a gateway. A nil backends uses Stripe's default API.
func NewGateway(backends *stripego.Backends) *Gateway {
	return &Gateway{backends: backends}
}

func (g *Gateway) Method() billing.Method { return billing.MethodStripe }

func (g *Gateway) api(creds billing.Credentials) *client.API {
	return client.New(creds.AccessToken, g.backends)
}

func (g *Gateway) CreatePreference(ctx context.Context, creds billing.Credentials, req billing.PreferenceRequest) (*billing.Preference, error) {
	params := &stripego.CheckoutSessionParams{
		Mode:              stripego.String(string(stripego.CheckoutSessionModePayment)),
		SuccessURL:        stripego.String(req.BackURLs.Success),
		CancelURL:         stripego.String(req.BackURLs.Failure),
		ClientReferenceID: stripego.String(req.ExternalReference),
		LineItems:         []*stripego.CheckoutSessionLineItemParams{lineItem(req.Item)},
	}
	params.Context = ctx
	params.AddMetadata("user_id", req.ExternalReference)

	s, err := g.api(creds).CheckoutSessions.New(params)
	if err != nil {
		return nil, gatewayError(err)
	}

	return &billing.Preference{ID: s.ID, CheckoutURL: s.URL}, nil
}

func lineItem(item billing.LineItem) *stripego.CheckoutSessionLineItemParams {
	li := &stripego.CheckoutSessionLineItemParams{Quantity: stripego.Int64(int64(item.Quantity))}
	if item.StripePriceID != "" {
		li.Price = stripego.String(item.StripePriceID)
		return li
	}
	li.PriceData = &stripego.CheckoutSessionLineItemPriceDataParams{
		Currency:   stripego.String(strings.ToLower(item.Currency)),
		UnitAmount: stripego.Int64(minorUnits(item.UnitPrice)),
		ProductData: &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripego.String(item.Title),
		},
	}
	return li
}

func (g *Gateway) GetPayment(ctx context.Context, creds billing.Credentials, sessionID string) (*billing.GatewayPayment, error) {
	params := &stripego.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")

	s, err := g.api(creds).CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, gatewayError(err)
	}

	snapshot := &billing.StripeSession{
		ID:                s.ID,
		Status:            string(s.Status),
		PaymentStatus:     string(s.PaymentStatus),
		ClientReferenceID: s.ClientReferenceID,
		AmountTotal:       s.AmountTotal,
		Currency:          string(s.Currency),
	}
	if s.PaymentIntent != nil {
		snapshot.PaymentIntent = s.PaymentIntent.ID
	}

	ref := s.ClientReferenceID
	if ref == "" && s.Metadata != nil {
		ref = s.Metadata["user_id"]
	}

	return &billing.GatewayPayment{
		Method:            billing.MethodStripe,
		ID:                s.ID,
		Status:            GatewayStatus(s),
		ExternalReference: ref,
		PreferenceID:      s.ID,
		Amount:            decimal.New(s.AmountTotal, -2),
		Stripe:            snapshot,
	}, nil
}

func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func gatewayError(err error) error {
	var se *stripego.Error
	if errors.As(err, &se) {
		return &billing.GatewayError{
			Gateway:    billing.MethodStripe,
			StatusCode: se.HTTPStatusCode,
			Message:    se.Msg,
			Err:        err,
		}
	}
	return &billing.GatewayError{Gateway: billing.MethodStripe, Message: err.Error(), Err: err}
}
