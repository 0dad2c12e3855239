package stripewebhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketplace-payments/internal/domain/billing"
	"marketplace-payments/internal/payments"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type notificationMock struct{ mock.Mock }

func (m *notificationMock) HandleNotification(ctx context.Context, method billing.Method, paymentID string) (*payments.Outcome, error) {
	args := m.Called(ctx, method, paymentID)
	o, _ := args.Get(0).(*payments.Outcome)
	return o, args.Error(1)
}

type credsMock struct{ mock.Mock }

func (m *credsMock) Get(ctx context.Context, method billing.Method) (billing.Credentials, error) {
	args := m.Called(ctx, method)
	c, _ := args.Get(0).(billing.Credentials)
	return c, args.Error(1)
}

const secret = "whsec_test"

var stripeCreds = billing.Credentials{AccessToken: "sk_test", PublicKey: "pk_test", WebhookSecret: secret}

func init() {
	gin.SetMode(gin.TestMode)
}

func signedHeader(payload []byte, key string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(fmt.Sprintf("%d.", ts)))
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(eventType, sessionID string) []byte {
	return []byte(fmt.Sprintf(`{"id":"evt_1","object":"event","type":%q,"api_version":"2023-10-16","data":{"object":{"id":%q,"object":"checkout.session","payment_status":"paid","status":"complete"}}}`, eventType, sessionID))
}

func post(h *Handler, payload []byte, signature string) *httptest.ResponseRecorder {
	r := gin.New()
	r.POST("/stripe-webhook", h.StripeWebhook)

	req := httptest.NewRequest(http.MethodPost, "/stripe-webhook", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestStripeWebhook_SessionEventsReconcile(t *testing.T) {
	for _, eventType := range []string{
		"checkout.session.completed",
		"checkout.session.async_payment_succeeded",
		"checkout.session.async_payment_failed",
		"checkout.session.expired",
	} {
		t.Run(eventType, func(t *testing.T) {
			svc := new(notificationMock)
			creds := new(credsMock)
			creds.On("Get", mock.Anything, billing.MethodStripe).Return(stripeCreds, nil)
			svc.On("HandleNotification", mock.Anything, billing.MethodStripe, "cs_test_1").Return(&payments.Outcome{
				Payment: &billing.Payment{PreferenceID: "cs_test_1", Status: billing.StatusCompleted},
			}, nil)

			payload := eventPayload(eventType, "cs_test_1")
			rr := post(NewHandler(svc, creds, nil), payload, signedHeader(payload, secret))

			require.Equal(t, http.StatusOK, rr.Code)
			require.JSONEq(t, `{"status":"received"}`, rr.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestStripeWebhook_IgnoresOtherEvents(t *testing.T) {
	svc := new(notificationMock)
	creds := new(credsMock)
	creds.On("Get", mock.Anything, billing.MethodStripe).Return(stripeCreds, nil)

	payload := []byte(`{"id":"evt_2","object":"event","type":"customer.created","data":{"object":{"id":"cus_1","object":"customer"}}}`)
	rr := post(NewHandler(svc, creds, nil), payload, signedHeader(payload, secret))

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ignored"}`, rr.Body.String())
	svc.AssertNotCalled(t, "HandleNotification", mock.Anything, mock.Anything, mock.Anything)
}

func TestStripeWebhook_BadSignature(t *testing.T) {
	svc := new(notificationMock)
	creds := new(credsMock)
	creds.On("Get", mock.Anything, billing.MethodStripe).Return(stripeCreds, nil)

	payload := eventPayload("checkout.session.completed", "cs_test_1")
	rr := post(NewHandler(svc, creds, nil), payload, signedHeader(payload, "whsec_other"))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "HandleNotification", mock.Anything, mock.Anything, mock.Anything)
}

func TestStripeWebhook_MissingSecret(t *testing.T) {
	svc := new(notificationMock)
	creds := new(credsMock)
	creds.On("Get", mock.Anything, billing.MethodStripe).Return(billing.Credentials{AccessToken: "sk_test", PublicKey: "pk_test"}, nil)

	payload := eventPayload("checkout.session.completed", "cs_test_1")
	rr := post(NewHandler(svc, creds, nil), payload, signedHeader(payload, secret))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestStripeWebhook_ReconcileFailureAsksForRedelivery(t *testing.T) {
	svc := new(notificationMock)
	creds := new(credsMock)
	creds.On("Get", mock.Anything, billing.MethodStripe).Return(stripeCreds, nil)
	svc.On("HandleNotification", mock.Anything, billing.MethodStripe, "cs_test_1").Return(nil, billing.ErrPaymentNotFound)

	payload := eventPayload("checkout.session.completed", "cs_test_1")
	rr := post(NewHandler(svc, creds, nil), payload, signedHeader(payload, secret))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
}
