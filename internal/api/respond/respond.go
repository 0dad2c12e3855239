package respond

import (
	"errors"
	"net/http"

	"marketplace-payments/internal/domain/billing"

	"github.com/gin-gonic/gin"
)

// StatusFor maps the payment error taxonomy onto HTTP status codes. Gateway,
// configuration and persistence failures all answer 500.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, billing.ErrInvalidRequest),
		errors.Is(err, billing.ErrUnsupportedGateway),
		errors.Is(err, billing.ErrMissingPaymentID),
		errors.Is(err, billing.ErrInvalidPaymentID):
		return http.StatusBadRequest
	case errors.Is(err, billing.ErrInvalidSignature):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func Error(c *gin.Context, err error) {
	c.JSON(StatusFor(err), gin.H{"error": err.Error()})
}
