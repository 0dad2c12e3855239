package mpwebhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"marketplace-payments/internal/api/respond"
	"marketplace-payments/internal/domain/billing"
	"marketplace-payments/internal/payments"

	"github.com/gin-gonic/gin"
)

const maxBodyBytes = int64(65536)

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
	if events == nil {
		events = discardEvents{}
	}
	return &Handler{svc: svc, creds: creds, events: events}
}

// notificationID accepts both `"id": "123"` and `"id": 123`.
type notificationID string

func (n *notificationID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = notificationID(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = notificationID(num.String())
	return nil
}

type notification struct {
	Type   string `json:"type"`
	Topic  string `json:"topic"`
	Action string `json:"action"`
	Data   struct {
		ID notificationID `json:"id"`
	} `json:"data"`
}

// HandlePaymentWebhook reconciles a Mercado Pago payment notification.
// The notified id is only used to ask the gateway for the payment; the
// stored record is matched by the preference id the gateway returns.
func (h *Handler) HandlePaymentWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}

	var n notification
	if err := json.Unmarshal(raw, &n); err != nil {
		log.Printf("layer=handler component=mpwebhook method=HandlePaymentWebhook decode err=%v", err)
	}

	paymentID := strings.TrimSpace(string(n.Data.ID))
	if paymentID == "" {
		paymentID = strings.TrimSpace(c.Query("data.id"))
	}
	if paymentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No payment ID found in notification"})
		return
	}
	if !billing.ValidPaymentID(paymentID) {
		log.Printf("layer=handler component=mpwebhook method=HandlePaymentWebhook rejected data_id=%q", paymentID)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID in notification"})
		return
	}

	eventType := firstNonEmpty(n.Type, n.Topic, c.Query("type"), c.Query("topic"))
	eventID := h.events.Received(ctx, billing.MethodMercadoPago, eventType, paymentID, raw)

	if eventType != "" && !strings.EqualFold(eventType, "payment") {
		log.Printf("layer=handler component=mpwebhook method=HandlePaymentWebhook ignored type=%s data_id=%s", eventType, paymentID)
		h.events.Finished(ctx, eventID, billing.WebhookEventIgnored, nil)
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	creds, err := h.creds.Get(ctx, billing.MethodMercadoPago)
	if err != nil {
		h.fail(c, eventID, err)
		return
	}

	if creds.WebhookSecret != "" {
		if err := VerifySignature(creds.WebhookSecret, c.GetHeader("x-signature"), c.GetHeader("x-request-id"), paymentID); err != nil {
			h.fail(c, eventID, err)
			return
		}
	}

	out, err := h.svc.HandleNotification(ctx, billing.MethodMercadoPago, paymentID)
	if err != nil {
		h.fail(c, eventID, err)
		return
	}

	log.Printf("layer=handler component=mpwebhook method=HandlePaymentWebhook data_id=%s preference_id=%s status=%s activated=%t",
		paymentID, out.Payment.PreferenceID, out.Payment.Status, out.Activated)
	h.events.Finished(ctx, eventID, billing.WebhookEventProcessed, nil)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) fail(c *gin.Context, eventID string, err error) {
	log.Printf("layer=handler component=mpwebhook method=HandlePaymentWebhook event_id=%s err=%v", eventID, err)
	h.events.Finished(c.Request.Context(), eventID, billing.WebhookEventFailed, err)
	respond.Error(c, err)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

type discardEvents struct{}

func (discardEvents) Received(context.Context, billing.Method, string, string, []byte) string {
	return ""
}

func (discardEvents) Finished(context.Context, string, billing.WebhookEventStatus, error) {}
