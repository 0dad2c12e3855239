package payments

import (
	"errors"
	"time"

	"marketplace-payments/internal/domain/billing"
	"marketplace-payments/internal/domain/plans"
	"marketplace-payments/internal/domain/subscriptions"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Activator turns a completed payment into an active subscription.
type Activator struct {
	defaultDuration time.Duration
}

func NewActivator(defaultDuration time.Duration) *Activator {
	if defaultDuration <= 0 {
		defaultDuration = 30 * 24 * time.Hour
	}
	return &Activator{defaultDuration: defaultDuration}
}

// Activate creates the subscription paid for by p inside tx. It returns false
// when a subscription for this payment already exists. A still-running
// subscription of the same user and plan is extended rather than overlapped.
func (a *Activator) Activate(tx *gorm.DB, p *billing.Payment, at time.Time) (bool, error) {
	duration := a.defaultDuration
	if p.PlanID != nil {
		var plan plans.Plan
		err := tx.First(&plan, *p.PlanID).Error
		switch {
		case err == nil:
			duration = plan.Duration(a.defaultDuration)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return false, err
		}
	}

	startsAt := at
	var current subscriptions.Subscription
	q := tx.Where("user_id = ? AND status = ? AND ends_at > ?", p.UserID, subscriptions.StatusActive, at)
	if p.PlanID != nil {
		q = q.Where("plan_id = ?", *p.PlanID)
	} else {
		q = q.Where("plan_id IS NULL")
	}
	err := q.Order("ends_at DESC").First(&current).Error
	switch {
	case err == nil:
		startsAt = current.EndsAt
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, err
	}

	sub := subscriptions.Subscription{
		ID:        uuid.NewString(),
		UserID:    p.UserID,
		PlanID:    p.PlanID,
		PaymentID: p.ID,
		Status:    subscriptions.StatusActive,
		StartsAt:  startsAt,
		EndsAt:    startsAt.Add(duration),
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_id"}},
		DoNothing: true,
	}).Omit(clause.Associations).Create(&sub)
	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected == 1, nil
}
