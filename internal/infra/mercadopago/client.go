package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marketplace-payments/internal/domain/billing"

	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "https://api.mercadopago.com"

// Client talks to the Mercado Pago REST API. Credentials are passed per call
// so a rotated access token is picked up without rebuilding the client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (c *Client) Method() billing.Method { return billing.MethodMercadoPago }

type preferenceItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type backURLs struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
	Pending string `json:"pending,omitempty"`
}

type preferenceRequest struct {
	Items             []preferenceItem `json:"items"`
	BackURLs          backURLs         `json:"back_urls"`
	AutoReturn        string           `json:"auto_return,omitempty"`
	ExternalReference string           `json:"external_reference"`
	NotificationURL   string           `json:"notification_url,omitempty"`
}

type preferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type paymentResponse struct {
	ID                int64           `json:"id"`
	Status            string          `json:"status"`
	StatusDetail      string          `json:"status_detail"`
	ExternalReference string          `json:"external_reference"`
	PreferenceID      string          `json:"preference_id"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	CurrencyID        string          `json:"currency_id"`
	PaymentMethodID   string          `json:"payment_method_id"`
	PaymentTypeID     string          `json:"payment_type_id"`
	DateApproved      *string         `json:"date_approved"`
	DateLastUpdated   string          `json:"date_last_updated"`
	Order             struct {
		ID int64 `json:"id"`
	} `json:"order"`
	Metadata map[string]any `json:"metadata"`
}

type merchantOrderResponse struct {
	ID           int64  `json:"id"`
	PreferenceID string `json:"preference_id"`
}

type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) CreatePreference(ctx context.Context, creds billing.Credentials, req billing.PreferenceRequest) (*billing.Preference, error) {
	body := preferenceRequest{
		Items: []preferenceItem{{
			Title:      req.Item.Title,
			Quantity:   req.Item.Quantity,
			UnitPrice:  req.Item.UnitPrice.InexactFloat64(),
			CurrencyID: req.Item.Currency,
		}},
		BackURLs: backURLs{
			Success: req.BackURLs.Success,
			Failure: req.BackURLs.Failure,
			Pending: req.BackURLs.Pending,
		},
		ExternalReference: req.ExternalReference,
		NotificationURL:   req.NotificationURL,
	}
	if req.BackURLs.Success != "" {
		body.AutoReturn = "approved"
	}

	var out preferenceResponse
	if err := c.do(ctx, creds, http.MethodPost, "/checkout/preferences", body, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, &billing.GatewayError{Gateway: billing.MethodMercadoPago, Message: "preference created without id"}
	}

	return &billing.Preference{ID: out.ID, CheckoutURL: out.InitPoint}, nil
}

func (c *Client) GetPayment(ctx context.Context, creds billing.Credentials, paymentID string) (*billing.GatewayPayment, error) {
	var p paymentResponse
	if err := c.do(ctx, creds, http.MethodGet, "/v1/payments/"+url.PathEscape(paymentID), nil, &p); err != nil {
		return nil, err
	}

	preferenceID := p.PreferenceID
	if preferenceID == "" {
		if v, ok := p.Metadata["preference_id"].(string); ok {
			preferenceID = v
		}
	}
	// Payments made through Checkout Pro carry the preference on their
	// merchant order rather than on the payment itself.
	if preferenceID == "" && p.Order.ID != 0 {
		var mo merchantOrderResponse
		path := "/merchant_orders/" + strconv.FormatInt(p.Order.ID, 10)
		if err := c.do(ctx, creds, http.MethodGet, path, nil, &mo); err != nil {
			return nil, err
		}
		preferenceID = mo.PreferenceID
	}

	id := strconv.FormatInt(p.ID, 10)
	if p.ID == 0 {
		id = paymentID
	}

	return &billing.GatewayPayment{
		Method:            billing.MethodMercadoPago,
		ID:                id,
		Status:            p.Status,
		ExternalReference: p.ExternalReference,
		PreferenceID:      preferenceID,
		Amount:            p.TransactionAmount,
		MercadoPago: &billing.MercadoPagoPayment{
			ID:                p.ID,
			Status:            p.Status,
			StatusDetail:      p.StatusDetail,
			ExternalReference: p.ExternalReference,
			PreferenceID:      preferenceID,
			TransactionAmount: p.TransactionAmount,
			CurrencyID:        p.CurrencyID,
			PaymentMethodID:   p.PaymentMethodID,
			PaymentTypeID:     p.PaymentTypeID,
			DateApproved:      p.DateApproved,
			DateLastUpdated:   p.DateLastUpdated,
		},
	}, nil
}

func (c *Client) do(ctx context.Context, creds billing.Credentials, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &billing.GatewayError{Gateway: billing.MethodMercadoPago, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &billing.GatewayError{Gateway: billing.MethodMercadoPago, StatusCode: resp.StatusCode, Message: err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &billing.GatewayError{
			Gateway:    billing.MethodMercadoPago,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw, resp.Status),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &billing.GatewayError{Gateway: billing.MethodMercadoPago, StatusCode: resp.StatusCode, Message: "malformed response: " + err.Error(), Err: err}
	}
	return nil
}

func errorMessage(raw []byte, fallback string) string {
	var e apiError
	if err := json.Unmarshal(raw, &e); err == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	if s := strings.TrimSpace(string(raw)); s != "" {
		return s
	}
	return fallback
}
