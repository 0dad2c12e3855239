package users

import (
	"errors"
	"net/http"
	"time"

	"marketplace-payments/internal/domain/access"
	"marketplace-payments/internal/domain/plans"
	"marketplace-payments/internal/domain/subscriptions"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	db  *gorm.DB
	now func() time.Time
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db, now: time.Now}
}

// GetCurrentUser returns the caller's best running subscription (or the latest
// one when none is running) and what it grants.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	now := h.now()
	db := h.db.WithContext(c.Request.Context())

	var running []subscriptions.Subscription
	if err := db.Preload("Plan").
		Where("user_id = ? AND status = ? AND starts_at <= ? AND ends_at > ?", userID, subscriptions.StatusActive, now, now).
		Find(&running).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}

	sub := bestSubscription(running)
	if sub == nil {
		var latest subscriptions.Subscription
		err := db.Preload("Plan").
			Where("user_id = ?", userID).
			Order("ends_at DESC").
			First(&latest).Error
		switch {
		case err == nil:
			sub = &latest
		case !errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
			return
		}
	}

	c.JSON(http.StatusOK, buildMeResponse(now, c, sub))
}

// bestSubscription picks the highest tier among running subscriptions, the
// one running longest on a tie.
func bestSubscription(running []subscriptions.Subscription) *subscriptions.Subscription {
	var best *subscriptions.Subscription
	for i := range running {
		s := &running[i]
		if best == nil {
			best = s
			continue
		}
		rank, bestRank := plans.TierRank(plans.PlanTier(s.Plan)), plans.TierRank(plans.PlanTier(best.Plan))
		if rank > bestRank || (rank == bestRank && s.EndsAt.After(best.EndsAt)) {
			best = s
		}
	}
	return best
}

func buildMeResponse(now time.Time, c *gin.Context, sub *subscriptions.Subscription) MeResponse {
	policy := access.ComputePolicy(now, sub)

	resp := MeResponse{
		User: UserDTO{
			ID:    c.GetString("user_id"),
			Email: stringPtrIfNotEmpty(c.GetString("email")),
			Role:  c.GetString("role"),
		},
		Access: AccessDTO{
			State:        string(policy.State),
			Tier:         policy.Tier,
			ActiveUntil:  policy.ActiveUntil,
			Capabilities: policy.Capabilities,
		},
	}

	if sub != nil {
		resp.Billing.Subscription = &SubscriptionDTO{
			ID:        sub.ID,
			Status:    string(policy.State),
			PaymentID: sub.PaymentID,
			StartsAt:  sub.StartsAt,
			EndsAt:    sub.EndsAt,
		}
		resp.Billing.Plan = buildPlanDTO(sub.Plan)
	}
	return resp
}

func buildPlanDTO(p *plans.Plan) *PlanDTO {
	if p == nil {
		return nil
	}
	return &PlanDTO{
		ID:           p.ID,
		Name:         p.Name,
		Tier:         plans.PlanTier(p),
		Price:        p.Price,
		Currency:     p.Currency,
		DurationDays: p.DurationDays,
	}
}

func stringPtrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
