package admin

import (
	"net/http"
	"time"

	"marketplace-payments/internal/domain/billing"
	"marketplace-payments/internal/domain/subscriptions"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AdminPayment struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	PlanName         *string         `json:"plan_name,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentMethod    billing.Method  `json:"payment_method"`
	PreferenceID     string          `json:"preference_id"`
	GatewayPaymentID *string         `json:"gateway_payment_id,omitempty"`
	Status           string          `json:"status"`
	ActivatedAt      *time.Time      `json:"activated_at,omitempty"`
	CreatedAt        string          `json:"created_at"`
}

type AdminStats struct {
	TotalRevenue        decimal.Decimal  `json:"total_revenue"`
	RecentRevenue       decimal.Decimal  `json:"recent_revenue"`
	PaymentsPerStatus   map[string]int64 `json:"payments_per_status"`
	ActiveSubscriptions int64            `json:"active_subscriptions"`
}

type Handler struct {
	db  *gorm.DB
	now func() time.Time
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db, now: time.Now}
}

func (h *Handler) ListAllPayments(c *gin.Context) {
	var payments []billing.Payment
	err := h.db.WithContext(c.Request.Context()).Preload("Plan").Order("created_at DESC").Find(&payments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	result := make([]AdminPayment, 0, len(payments))
	for _, p := range payments {
		result = append(result, toAdminPayment(p))
	}

	c.JSON(http.StatusOK, result)
}

func toAdminPayment(p billing.Payment) AdminPayment {
	var planName *string
	if p.Plan != nil {
		planName = &p.Plan.Name
	}
	return AdminPayment{
		ID:               p.ID,
		UserID:           p.UserID,
		PlanName:         planName,
		Amount:           p.Amount,
		PaymentMethod:    p.PaymentMethod,
		PreferenceID:     p.PreferenceID,
		GatewayPaymentID: p.GatewayPaymentID,
		Status:           p.Status,
		ActivatedAt:      p.ActivatedAt,
		CreatedAt:        p.CreatedAt.Format("2006-01-02 15:04"),
	}
}

func (h *Handler) GetAdminStats(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())
	now := h.now()
	stats := AdminStats{PaymentsPerStatus: map[string]int64{}}

	if err := db.Model(&billing.Payment{}).
		Where("status = ?", billing.StatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&stats.TotalRevenue); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	thirtyDaysAgo := now.AddDate(0, 0, -30)
	if err := db.Model(&billing.Payment{}).
		Where("status = ? AND created_at >= ?", billing.StatusCompleted, thirtyDaysAgo).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&stats.RecentRevenue); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := db.Model(&billing.Payment{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}
	for _, sc := range counts {
		stats.PaymentsPerStatus[sc.Status] = sc.Count
	}

	if err := db.Model(&subscriptions.Subscription{}).
		Where("status = ? AND ends_at > ?", subscriptions.StatusActive, now).
		Count(&stats.ActiveSubscriptions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
