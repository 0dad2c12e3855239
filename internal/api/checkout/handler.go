package checkout

import (
	"context"
	"net/http"
	"strings"

	"marketplace-payments/internal/api/respond"
	"marketplace-payments/internal/domain/billing"
	"marketplace-payments/internal/payments"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PreferenceCreator interface {
	CreatePreference(ctx context.Context, req payments.CheckoutRequest) (*payments.CheckoutResult, error)
}

type Handler struct {
	svc PreferenceCreator
}

func NewHandler(svc PreferenceCreator) *Handler {
	return &Handler{svc: svc}
}

type createPreferenceRequest struct {
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	UserID   string          `json:"user_id"`
	PlanID   *uint           `json:"plan_id"`
	Gateway  string          `json:"gateway"`
}

// CreatePreference starts a checkout for a plan purchase.
func (h *Handler) CreatePreference(c *gin.Context) {
	var body createPreferenceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	method := billing.MethodMercadoPago
	if g := strings.TrimSpace(body.Gateway); g != "" {
		method = billing.Method(strings.ToLower(g))
	}

	res, err := h.svc.CreatePreference(c.Request.Context(), payments.CheckoutRequest{
		Method:   method,
		Title:    body.Title,
		Price:    body.Price,
		Quantity: body.Quantity,
		UserID:   body.UserID,
		PlanID:   body.PlanID,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}

	resp := gin.H{
		"preferenceId": res.PreferenceID,
		"publicKey":    res.PublicKey,
	}
	if res.CheckoutURL != "" {
		resp["checkoutUrl"] = res.CheckoutURL
	}
	c.JSON(http.StatusOK, resp)
}
