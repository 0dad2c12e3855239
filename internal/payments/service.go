package payments

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"marketplace-payments/internal/domain/billing"
	"marketplace-payments/internal/domain/plans"

	"github.com/shopspring/decimal"
)

type Config struct {
	Currency        string
	SuccessURL      string
	FailureURL      string
	PendingURL      string
	NotificationURL string
}

// Service runs both halves of the checkout flow: creating gateway
// preferences and reconciling gateway notifications.
type Service struct {
	gateways map[billing.Method]Gateway
	creds    CredentialsProvider
	store    Store
	cfg      Config
	now      func() time.Time
}

func NewService(store Store, creds CredentialsProvider, cfg Config, gateways ...Gateway) *Service {
	byMethod := make(map[billing.Method]Gateway, len(gateways))
	for _, g := range gateways {
		byMethod[g.Method()] = g
	}
	if cfg.Currency == "" {
		cfg.Currency = "BRL"
	}
	return &Service{gateways: byMethod, creds: creds, store: store, cfg: cfg, now: time.Now}
}

type CheckoutRequest struct {
	Method   billing.Method
	Title    string
	Price    decimal.Decimal
	Quantity int
	UserID   string
	PlanID   *uint
}

type CheckoutResult struct {
	PreferenceID string
	PublicKey    string
	CheckoutURL  string
	// PaymentID is empty when the pending record could not be stored.
	PaymentID string
}

func (r CheckoutRequest) validate() error {
	switch {
	case strings.TrimSpace(r.Title) == "":
		return fmt.Errorf("%w: title is required", billing.ErrInvalidRequest)
	case !r.Price.IsPositive():
		return fmt.Errorf("%w: price must be positive", billing.ErrInvalidRequest)
	case r.Quantity < 1:
		return fmt.Errorf("%w: quantity must be at least 1", billing.ErrInvalidRequest)
	case strings.TrimSpace(r.UserID) == "":
		return fmt.Errorf("%w: user_id is required", billing.ErrInvalidRequest)
	}
	return nil
}

func (s *Service) gateway(method billing.Method) (Gateway, error) {
	g, ok := s.gateways[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", billing.ErrUnsupportedGateway, method)
	}
	return g, nil
}

// planItem prices a plan purchase from the catalog; the client's title and
// price are ignored.
func planItem(plan *plans.Plan, quantity int, fallbackCurrency string) billing.LineItem {
	currency := plan.Currency
	if currency == "" {
		currency = fallbackCurrency
	}
	item := billing.LineItem{
		Title:     plan.Name,
		Quantity:  quantity,
		UnitPrice: plan.Price,
		Currency:  currency,
	}
	if plan.StripePriceID != nil {
		item.StripePriceID = *plan.StripePriceID
	}
	return item
}

// CreatePreference asks the gateway for a preference and records a pending
// payment for it. Failing to record the payment does not fail the call: the
// preference already exists and the user can still pay.
func (s *Service) CreatePreference(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	gw, err := s.gateway(req.Method)
	if err != nil {
		return nil, err
	}

	item := billing.LineItem{
		Title:     req.Title,
		Quantity:  req.Quantity,
		UnitPrice: req.Price,
		Currency:  s.cfg.Currency,
	}
	if req.PlanID != nil {
		plan, err := s.store.FindActivePlan(ctx, *req.PlanID)
		if err != nil {
			return nil, err
		}
		item = planItem(plan, req.Quantity, s.cfg.Currency)
	}

	creds, err := s.creds.Get(ctx, req.Method)
	if err != nil {
		return nil, err
	}
	pref, err := gw.CreatePreference(ctx, creds, billing.PreferenceRequest{
		Item:              item,
		ExternalReference: req.UserID,
		BackURLs: billing.BackURLs{
			Success: s.cfg.SuccessURL,
			Failure: s.cfg.FailureURL,
			Pending: s.cfg.PendingURL,
		},
		NotificationURL: s.cfg.NotificationURL,
	})
	if err != nil {
		log.Printf("layer=service component=payments method=CreatePreference gateway=%s user_id=%s err=%v", req.Method, req.UserID, err)
		return nil, err
	}

	result := &CheckoutResult{
		PreferenceID: pref.ID,
		PublicKey:    creds.PublicKey,
		CheckoutURL:  pref.CheckoutURL,
	}

	payment := billing.NewPendingPayment(req.Method, req.UserID, req.PlanID, pref, item)
	if err := s.store.Create(ctx, payment); err != nil {
		log.Printf("layer=service component=payments method=CreatePreference preference_id=%s err=%v", pref.ID, err)
		return result, nil
	}
	result.PaymentID = payment.ID

	return result, nil
}

// HandleNotification re-fetches paymentID from the gateway and reconciles the
// stored payment against it. The notification itself is only a trigger.
func (s *Service) HandleNotification(ctx context.Context, method billing.Method, paymentID string) (*Outcome, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, billing.ErrMissingPaymentID
	}
	if !billing.ValidPaymentID(paymentID) {
		return nil, fmt.Errorf("%w: %q", billing.ErrInvalidPaymentID, paymentID)
	}
	gw, err := s.gateway(method)
	if err != nil {
		return nil, err
	}

	creds, err := s.creds.Get(ctx, method)
	if err != nil {
		return nil, err
	}

	gp, err := gw.GetPayment(ctx, creds, paymentID)
	if err != nil {
		return nil, err
	}
	if gp.PreferenceID == "" {
		return nil, fmt.Errorf("%w: gateway payment %s carries no preference", billing.ErrPaymentNotFound, paymentID)
	}

	out, err := s.store.Reconcile(ctx, gp.PreferenceID, gp, s.now())
	if err != nil {
		log.Printf("layer=service component=payments method=HandleNotification gateway=%s payment_id=%s preference_id=%s err=%v", method, paymentID, gp.PreferenceID, err)
		return nil, err
	}

	if out.Reconciliation.Status == billing.StatusUnderpaid {
		log.Printf("layer=service component=payments method=HandleNotification gateway=%s payment_id=%s preference_id=%s underpaid amount=%s expected=%s",
			method, paymentID, gp.PreferenceID, gp.Amount, out.Payment.Amount)
	}
	log.Printf("layer=service component=payments method=HandleNotification gateway=%s payment_id=%s preference_id=%s status=%s->%s activated=%t",
		method, paymentID, gp.PreferenceID, out.Reconciliation.PreviousStatus, out.Reconciliation.Status, out.Activated)
	return out, nil
}
