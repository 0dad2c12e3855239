package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-payments/internal/domain/billing"
	"marketplace-payments/internal/domain/plans"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the gorm-backed Store. Reconcile holds a row lock on the
// payment for the whole update, so concurrent redeliveries of the same
// notification are applied one after the other.
type Repository struct {
	db        *gorm.DB
	activator *Activator
}

func NewRepository(db *gorm.DB, activator *Activator) *Repository {
	return &Repository{db: db, activator: activator}
}

func (r *Repository) FindActivePlan(ctx context.Context, id uint) (*plans.Plan, error) {
	var plan plans.Plan
	err := r.db.WithContext(ctx).Where("id = ? AND active = ?", id, true).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: plan %d is not available", billing.ErrInvalidRequest, id)
		}
		return nil, &billing.PersistenceError{Op: "load plan", Err: err}
	}
	return &plan, nil
}

func (r *Repository) Create(ctx context.Context, p *billing.Payment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		return &billing.PersistenceError{Op: "create payment", Err: err}
	}
	return nil
}

func (r *Repository) FindByPreferenceID(ctx context.Context, preferenceID string) (*billing.Payment, error) {
	var p billing.Payment
	if err := r.db.WithContext(ctx).Where("preference_id = ?", preferenceID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Reconcile(ctx context.Context, preferenceID string, gp *billing.GatewayPayment, at time.Time) (*Outcome, error) {
	var out Outcome

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p billing.Payment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("preference_id = ?", preferenceID).
			First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: preference %s", billing.ErrPaymentNotFound, preferenceID)
			}
			return err
		}

		rec := billing.Reconcile(&p, gp, at)

		activated := false
		if rec.Activate {
			created, err := r.activator.Activate(tx, &p, at)
			if err != nil {
				return fmt.Errorf("activate payment %s: %w", p.ID, err)
			}
			activated = created
			activatedAt := at
			p.ActivatedAt = &activatedAt
		}

		if err := tx.Model(&billing.Payment{}).
			Where("id = ?", p.ID).
			Updates(map[string]interface{}{
				"status":             p.Status,
				"gateway_payment_id": p.GatewayPaymentID,
				"payment_details":    p.PaymentDetails,
				"activated_at":       p.ActivatedAt,
				"updated_at":         at,
			}).Error; err != nil {
			return err
		}

		out = Outcome{Payment: &p, Reconciliation: rec, Activated: activated}
		return nil
	})
	if err != nil {
		if errors.Is(err, billing.ErrPaymentNotFound) {
			return nil, err
		}
		return nil, &billing.PersistenceError{Op: "reconcile payment", Err: err}
	}

	return &out, nil
}
