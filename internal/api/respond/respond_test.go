package respond

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"marketplace-payments/internal/domain/billing"

	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: price must be positive", billing.ErrInvalidRequest), http.StatusBadRequest},
		{billing.ErrUnsupportedGateway, http.StatusBadRequest},
		{billing.ErrMissingPaymentID, http.StatusBadRequest},
		{billing.ErrInvalidSignature, http.StatusUnauthorized},
		{fmt.Errorf("%w: stripe", billing.ErrConfiguration), http.StatusInternalServerError},
		{&billing.GatewayError{Gateway: billing.MethodMercadoPago, StatusCode: 400, Message: "bad"}, http.StatusInternalServerError},
		{&billing.PersistenceError{Op: "reconcile payment", Err: errors.New("deadlock")}, http.StatusInternalServerError},
		{billing.ErrPaymentNotFound, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			require.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}
