package stripewebhooks

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"marketplace-payments/internal/api/respond"
	"marketplace-payments/internal/domain/billing"
	"marketplace-payments/internal/payments"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
)

type NotificationHandler interface {
	HandleNotification(ctx context.Context, method billing.Method, paymentID string) (*payments.Outcome, error)
}

type CredentialsProvider interface {
	Get(ctx context.Context, method billing.Method) (billing.Credentials, error)
}

type EventRecorder interface {
	Received(ctx context.Context, method billing.Method, eventType, externalID string, payload []byte) string
	Finished(ctx context.Context, eventID string, status billing.WebhookEventStatus, procErr error)
}

type Handler struct {
	svc    NotificationHandler
	creds  CredentialsProvider
	events EventRecorder
}

func NewHandler(svc NotificationHandler, creds CredentialsProvider, events EventRecorder) *Handler {
	return &Handler{svc: svc, creds: creds, events: events}
}

// Checkout session events that can change the state of a one-off payment.
var sessionEvents = map[string]bool{
	"checkout.session.completed":               true,
	"checkout.session.async_payment_succeeded": true,
	"checkout.session.async_payment_failed":    true,
	"checkout.session.expired":                 true,
}

func (h *Handler) StripeWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	creds, err := h.creds.Get(ctx, billing.MethodStripe)
	if err != nil {
		respond.Error(c, err)
		return
	}
	if creds.WebhookSecret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "STRIPE_WEBHOOK_SECRET not configured"})
		return
	}

	payload, err := readStripeBody(c, 65536)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		creds.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		log.Printf("layer=handler component=stripewebhook method=StripeWebhook signature err=%v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	if !sessionEvents[string(event.Type)] {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil || session.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse session"})
		return
	}

	eventID := h.recordReceived(ctx, string(event.Type), session.ID, payload)

	out, err := h.svc.HandleNotification(ctx, billing.MethodStripe, session.ID)
	if err != nil {
		log.Printf("layer=handler component=stripewebhook method=StripeWebhook event=%s session=%s err=%v", event.Type, session.ID, err)
		h.recordFinished(ctx, eventID, billing.WebhookEventFailed, err)
		respond.Error(c, err)
		return
	}

	log.Printf("layer=handler component=stripewebhook method=StripeWebhook event=%s session=%s status=%s activated=%t",
		event.Type, session.ID, out.Payment.Status, out.Activated)
	h.recordFinished(ctx, eventID, billing.WebhookEventProcessed, nil)
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

func (h *Handler) recordReceived(ctx context.Context, eventType, externalID string, payload []byte) string {
	if h.events == nil {
		return ""
	}
	return h.events.Received(ctx, billing.MethodStripe, eventType, externalID, payload)
}

func (h *Handler) recordFinished(ctx context.Context, eventID string, status billing.WebhookEventStatus, procErr error) {
	if h.events == nil {
		return
	}
	h.events.Finished(ctx, eventID, status, procErr)
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
