package mpwebhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

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

type recordedEvent struct {
	eventType  string
	externalID string
	status     billing.WebhookEventStatus
	err        error
}

type eventsFake struct {
	events []*recordedEvent
}

func (f *eventsFake) Received(_ context.Context, _ billing.Method, eventType, externalID string, _ []byte) string {
	f.events = append(f.events, &recordedEvent{eventType: eventType, externalID: externalID, status: billing.WebhookEventReceived})
	return "evt-1"
}

func (f *eventsFake) Finished(_ context.Context, eventID string, status billing.WebhookEventStatus, procErr error) {
	if eventID != "evt-1" || len(f.events) == 0 {
		return
	}
	last := f.events[len(f.events)-1]
	last.status = status
	last.err = procErr
}

func init() {
	gin.SetMode(gin.TestMode)
}

var mpCreds = billing.Credentials{AccessToken: "APP_USR-token", PublicKey: "APP_USR-public"}

func completedOutcome() *payments.Outcome {
	return &payments.Outcome{
		Payment:        &billing.Payment{PreferenceID: "pref-123", Status: billing.StatusCompleted},
		Reconciliation: billing.Reconciliation{PreviousStatus: billing.StatusPending, Status: billing.StatusCompleted, Activate: true},
		Activated:      true,
	}
}

func post(h *Handler, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	r := gin.New()
	r.POST("/payment-webhook", h.HandlePaymentWebhook)

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestHandlePaymentWebhook_ApprovedPayment(t *testing.T) {
	svc := new(notificationMock)
	creds := new(credsMock)
	events := &eventsFake{}

	creds.On("Get", mock.Anything, billing.MethodMercadoPago).Return(mpCreds, nil)
	svc.On("HandleNotification", mock.Anything, billing.MethodMercadoPago, "pay-999").Return(completedOutcome(), nil)

	rr := post(NewHandler(svc, creds, events), "/payment-webhook", `{"type":"payment","data":{"id":"pay-999"}}`, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, true, decode(t, rr)["success"])
	require.Len(t, events.events, 1)
	require.Equal(t, "pay-999", events.events[0].externalID)
	require.Equal(t, billing.WebhookEventProcessed, events.events[0].status)
	svc.AssertExpectations(t)
}

func TestHandlePaymentWebhook_NumericID(t *testing.T) {
	svc := new(notificationMock)
	creds := new(credsMock)

	creds.On("Get", mock.Anything, billing.MethodMercadoPago).Return(mpCreds, nil)
	svc.On("HandleNotification", mock.Anything, billing.MethodMercadoPago, "1234567890").Return(completedOutcome(), nil)

	rr := post(NewHandler(svc, creds, nil), "/payment-webhook", `{"action":"payment.updated","data":{"id":1234567890}}`, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestHandlePaymentWebhook_QueryID(t *testing.T) {
	svc := new(notificationMock)
	creds := new(credsMock)

	creds.On("Get", mock.Anything, billing.MethodMercadoPago).Return(mpCreds, nil)
	svc.On("HandleNotification", mock.Anything, billing.MethodMercadoPago, "555").Return(completedOutcome(), nil)

	rr := post(NewHandler(svc, creds, nil), "/payment-webhook?type=payment&data.id=555", "", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestHandlePaymentWebhook_MissingID(t *testing.T) {
	for _, body := range []string{`{}`, ``, `{"type":"payment","data":{}}`, `not json`} {
		t.Run(body, func(t *testing.T) {
			svc := new(notificationMock)
			creds := new(credsMock)
			events := &eventsFake{}

			rr := post(NewHandler(svc, creds, events), "/payment-webhook", body, nil)

			require.Equal(t, http.StatusBadRequest, rr.Code)
			require.Equal(t, "No payment ID found in notification", decode(t, rr)["error"])
			require.Empty(t, events.events)
			creds.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
			svc.AssertNotCalled(t, "HandleNotification", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandlePaymentWebhook_RejectsUnsafeID(t *testing.T) {
	for _, body := range []string{
		`{"type":"payment","data":{"id":"../../merchant_orders/42"}}`,
		`{"type":"payment","data":{"id":"1?access_token=x"}}`,
		`{"type":"payment","data":{"id":"1#frag"}}`,
		`{"type":"payment","data":{"id":"1%2F2"}}`,
	} {
		t.Run(body, func(t *testing.T) {
			svc := new(notificationMock)
			creds := new(credsMock)
			events := &eventsFake{}

			rr := post(NewHandler(svc, creds, events), "/payment-webhook", body, nil)

			require.Equal(t, http.StatusBadRequest, rr.Code)
			require.Equal(t, "Invalid payment ID in notification", decode(t, rr)["error"])
			require.Empty(t, events.events)
			creds.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
			svc.AssertNotCalled(t, "HandleNotification", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandlePaymentWebhook_IgnoresOtherTopics(t *testing.T) {
	svc := new(notificationMock)
	creds := new(credsMock)
	events := &eventsFake{}

	rr := post(NewHandler(svc, creds, events), "/payment-webhook", `{"type":"merchant_order","data":{"id":"mo-1"}}`, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, events.events, 1)
	require.Equal(t, billing.WebhookEventIgnored, events.events[0].status)
	svc.AssertNotCalled(t, "HandleNotification", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandlePaymentWebhook_Failures(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(svc *notificationMock, creds *credsMock)
		wantStatus int
		wantError  string
	}{
		{
			name: "credentials missing",
			setup: func(svc *notificationMock, creds *credsMock) {
				creds.On("Get", mock.Anything, billing.MethodMercadoPago).Return(billing.Credentials{}, billing.ErrConfiguration)
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "not configured",
		},
		{
			name: "gateway lookup fails",
			setup: func(svc *notificationMock, creds *credsMock) {
				creds.On("Get", mock.Anything, billing.MethodMercadoPago).Return(mpCreds, nil)
				svc.On("HandleNotification", mock.Anything, billing.MethodMercadoPago, "pay-999").
					Return(nil, &billing.GatewayError{Gateway: billing.MethodMercadoPago, StatusCode: 404, Message: "Payment not found"})
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Payment not found",
		},
		{
			name: "no stored payment for preference",
			setup: func(svc *notificationMock, creds *credsMock) {
				creds.On("Get", mock.Anything, billing.MethodMercadoPago).Return(mpCreds, nil)
				svc.On("HandleNotification", mock.Anything, billing.MethodMercadoPago, "pay-999").Return(nil, billing.ErrPaymentNotFound)
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "payment not found",
		},
		{
			name: "store write fails",
			setup: func(svc *notificationMock, creds *credsMock) {
				creds.On("Get", mock.Anything, billing.MethodMercadoPago).Return(mpCreds, nil)
				svc.On("HandleNotification", mock.Anything, billing.MethodMercadoPago, "pay-999").
					Return(nil, &billing.PersistenceError{Op: "reconcile payment", Err: errors.New("connection reset")})
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(notificationMock)
			creds := new(credsMock)
			events := &eventsFake{}
			tt.setup(svc, creds)

			rr := post(NewHandler(svc, creds, events), "/payment-webhook", `{"type":"payment","data":{"id":"pay-999"}}`, nil)

			require.Equal(t, tt.wantStatus, rr.Code)
			require.Contains(t, decode(t, rr)["error"], tt.wantError)
			require.Len(t, events.events, 1)
			require.Equal(t, billing.WebhookEventFailed, events.events[0].status)
			require.Error(t, events.events[0].err)
		})
	}
}

func TestHandlePaymentWebhook_Signature(t *testing.T) {
	secretCreds := mpCreds
	secretCreds.WebhookSecret = "whsec"

	good := "ts=1700000000,v1=" + Sign("whsec", Manifest("pay-999", "req-1", "1700000000"))

	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
	}{
		{name: "valid", headers: map[string]string{"x-signature": good, "x-request-id": "req-1"}, wantStatus: http.StatusOK},
		{name: "wrong request id", headers: map[string]string{"x-signature": good, "x-request-id": "req-2"}, wantStatus: http.StatusUnauthorized},
		{name: "missing header", headers: nil, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(notificationMock)
			creds := new(credsMock)
			creds.On("Get", mock.Anything, billing.MethodMercadoPago).Return(secretCreds, nil)
			svc.On("HandleNotification", mock.Anything, billing.MethodMercadoPago, "pay-999").Return(completedOutcome(), nil).Maybe()

			rr := post(NewHandler(svc, creds, nil), "/payment-webhook", `{"type":"payment","data":{"id":"pay-999"}}`, tt.headers)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus != http.StatusOK {
				svc.AssertNotCalled(t, "HandleNotification", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestHandlePaymentWebhook_OversizedBody(t *testing.T) {
	svc := new(notificationMock)
	creds := new(credsMock)

	body := `{"data":{"id":"pay-999"},"pad":"` + strings.Repeat("x", int(maxBodyBytes)) + `"}`
	rr := post(NewHandler(svc, creds, nil), "/payment-webhook", body, nil)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "HandleNotification", mock.Anything, mock.Anything, mock.Anything)
}
