package payments

import (
	"context"
	"time"

	"marketplace-payments/internal/domain/billing"
	"marketplace-payments/internal/domain/plans"

	"github.com/stretchr/testify/mock"
)

type gatewayMock struct {
	mock.Mock
	method billing.Method
}

func (m *gatewayMock) Method() billing.Method { return m.method }

func (m *gatewayMock) CreatePreference(ctx context.Context, creds billing.Credentials, req billing.PreferenceRequest) (*billing.Preference, error) {
	args := m.Called(ctx, creds, req)
	p, _ := args.Get(0).(*billing.Preference)
	return p, args.Error(1)
}

func (m *gatewayMock) GetPayment(ctx context.Context, creds billing.Credentials, paymentID string) (*billing.GatewayPayment, error) {
	args := m.Called(ctx, creds, paymentID)
	p, _ := args.Get(0).(*billing.GatewayPayment)
	return p, args.Error(1)
}

type credsMock struct{ mock.Mock }

func (m *credsMock) Get(ctx context.Context, method billing.Method) (billing.Credentials, error) {
	args := m.Called(ctx, method)
	c, _ := args.Get(0).(billing.Credentials)
	return c, args.Error(1)
}

type storeMock struct{ mock.Mock }

func (m *storeMock) FindActivePlan(ctx context.Context, id uint) (*plans.Plan, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*plans.Plan)
	return p, args.Error(1)
}

func (m *storeMock) Create(ctx context.Context, p *billing.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *storeMock) Reconcile(ctx context.Context, preferenceID string, gp *billing.GatewayPayment, at time.Time) (*Outcome, error) {
	args := m.Called(ctx, preferenceID, gp, at)
	o, _ := args.Get(0).(*Outcome)
	return o, args.Error(1)
}
