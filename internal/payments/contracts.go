package payments

import (
	"context"
	"time"

	"marketplace-payments/internal/domain/billing"
	"marketplace-payments/internal/domain/plans"
)

type Gateway interface {
	Method() billing.Method
	CreatePreference(ctx context.Context, creds billing.Credentials, req billing.PreferenceRequest) (*billing.Preference, error)
	GetPayment(ctx context.Context, creds billing.Credentials, paymentID string) (*billing.GatewayPayment, error)
}

type CredentialsProvider interface {
	Get(ctx context.Context, method billing.Method) (billing.Credentials, error)
}

type Store interface {
	// FindActivePlan returns billing.ErrInvalidRequest when id is not an
	// active plan.
	FindActivePlan(ctx context.Context, id uint) (*plans.Plan, error)
	Create(ctx context.Context, p *billing.Payment) error
	// Reconcile applies gp to the payment created for preferenceID and runs
	// activation when the payment becomes completed, atomically.
	Reconcile(ctx context.Context, preferenceID string, gp *billing.GatewayPayment, at time.Time) (*Outcome, error)
}

type Archiver interface {
	Put(ctx context.Context, key string, body []byte) error
}

type Outcome struct {
	Payment        *billing.Payment
	Reconciliation billing.Reconciliation
	// Activated reports whether this call created the subscription.
	Activated bool
}
