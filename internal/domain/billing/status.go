package billing

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Gateway-native statuses that may follow an approval.
const (
	StatusRefunded    = "refunded"
	StatusChargedBack = "charged_back"
	// StatusUnderpaid is an approval for less than the stored amount.
	StatusUnderpaid = "underpaid"
)

// MapGatewayStatus maps the gateway's status to the stored one: approved
// becomes completed, anything else is kept as reported.
func MapGatewayStatus(gatewayStatus string) string {
	s := strings.ToLower(strings.TrimSpace(gatewayStatus))
	if s == "approved" {
		return StatusCompleted
	}
	return s
}

// NextStatus applies a reported status to the current one. Statuses only move
// forward: a completed payment can only become refunded or charged back, and
// those are final.
func NextStatus(current, reported string) string {
	if reported == "" {
		return current
	}
	switch current {
	case StatusRefunded, StatusChargedBack:
		return current
	case StatusCompleted:
		if reported == StatusRefunded || reported == StatusChargedBack {
			return reported
		}
		return current
	}
	return reported
}

type Reconciliation struct {
	PreviousStatus string
	Status         string
	// Activate is true only for the update that first moves the payment into
	// completed.
	Activate bool
}

func (r Reconciliation) Changed() bool { return r.PreviousStatus != r.Status }

// Reconcile applies a fetched gateway payment to p in place.
func Reconcile(p *Payment, gp *GatewayPayment, at time.Time) Reconciliation {
	prev := p.Status
	reported := MapGatewayStatus(gp.Status)
	if reported == StatusCompleted && gp.Amount.LessThan(p.Amount) {
		reported = StatusUnderpaid
	}
	next := NextStatus(prev, reported)

	p.Status = next
	if gp.ID != "" {
		id := gp.ID
		p.GatewayPaymentID = &id
	}
	p.PaymentDetails = datatypes.NewJSONType(p.PaymentDetails.Data().WithGatewayPayment(gp, at))

	return Reconciliation{
		PreviousStatus: prev,
		Status:         next,
		Activate:       next == StatusCompleted && prev != StatusCompleted && p.ActivatedAt == nil,
	}
}
