package routes

import (
	adminapi "marketplace-payments/internal/api/admin"
	billingapi "marketplace-payments/internal/api/billing"
	"marketplace-payments/internal/api/checkout"
	"marketplace-payments/internal/api/mpwebhook"
	plansapi "marketplace-payments/internal/api/plans"
	stripewebhooks "marketplace-payments/internal/api/stripewebhook"
	"marketplace-payments/internal/api/users"
	"marketplace-payments/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Checkout    *checkout.Handler
	MercadoPago *mpwebhook.Handler
	Stripe      *stripewebhooks.Handler
	Plans       *plansapi.Handler
	Payments    *billingapi.PaymentsHandler
	Admin       *adminapi.Handler
	Users       *users.Handler
}

func RegisterRoutes(r *gin.Engine, jwtSecret string, h Handlers) {
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Webhook bodies are signed; they must reach the handlers untouched.
	r.POST("/payment-webhook", h.MercadoPago.HandlePaymentWebhook)
	r.POST("/stripe-webhook", h.Stripe.StripeWebhook)

	public := r.Group("/")
	public.GET("/plans", h.Plans.ListPlans)
	public.POST("/create-preference", middleware.SanitizeAndCleanInputMiddleware(), h.Checkout.CreatePreference)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(jwtSecret))
	auth.GET("/me", h.Users.GetCurrentUser)
	auth.GET("/payments", h.Payments.GetPaymentHistory)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtSecret), middleware.RequireRole("admin"))
	admin.GET("/payments", h.Admin.ListAllPayments)
	admin.GET("/stats", h.Admin.GetAdminStats)
}
