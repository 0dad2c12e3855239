package billing

import (
	"net/http"

	"marketplace-payments/internal/domain/billing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PaymentsHandler struct {
	db *gorm.DB
}

func NewPaymentsHandler(db *gorm.DB) *PaymentsHandler {
	return &PaymentsHandler{db: db}
}

// GetPaymentHistory lists the caller's payments, newest first.
func (h *PaymentsHandler) GetPaymentHistory(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payments := []billing.Payment{}
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Plan").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	c.JSON(http.StatusOK, payments)
}
