package plans

import (
	"net/http"

	"marketplace-payments/internal/domain/plans"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// PlanView is a plan as shown in the catalog; Tier is always resolved.
type PlanView struct {
	plans.Plan
	Tier string `json:"tier"`
}

func NewPlanView(p plans.Plan) PlanView {
	return PlanView{Plan: p, Tier: plans.PlanTier(&p)}
}

func (h *Handler) ListPlans(c *gin.Context) {
	var rows []plans.Plan
	if err := h.db.WithContext(c.Request.Context()).
		Where("active = ?", true).
		Order("price ASC").
		Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load plans"})
		return
	}

	views := make([]PlanView, 0, len(rows))
	for _, p := range rows {
		views = append(views, NewPlanView(p))
	}
	c.JSON(http.StatusOK, views)
}
