package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"marketplace-payments/config"
	"marketplace-payments/database"
	adminapi "marketplace-payments/internal/api/admin"
	billingapi "marketplace-payments/internal/api/billing"
	"marketplace-payments/internal/api/checkout"
	"marketplace-payments/internal/api/mpwebhook"
	plansapi "marketplace-payments/internal/api/plans"
	stripewebhooks "marketplace-payments/internal/api/stripewebhook"
	"marketplace-payments/internal/api/users"
	routes "marketplace-payments/internal/app/http"
	"marketplace-payments/internal/infra/archive"
	"marketplace-payments/internal/infra/credentials"
	"marketplace-payments/internal/infra/mercadopago"
	"marketplace-payments/internal/infra/stripe"
	"marketplace-payments/internal/payments"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "marketplace-payments",
		Short: "Checkout and payment webhook API for the classifieds marketplace",
		RunE:  runServe,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (default)",
		RunE:  runServe,
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadEnv()
			db, err := database.Open(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			return database.Migrate(db)
		},
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	cfg := config.LoadEnv()

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	creds := credentials.NewProvider(cfg.CredentialsTTL,
		credentials.NewSettingsSource(db),
		credentials.StaticSource(cfg.GatewaySettings),
	)

	repo := payments.NewRepository(db, payments.NewActivator(cfg.DefaultPlanDuration))
	svc := payments.NewService(repo, creds, payments.Config{
		Currency:        cfg.Currency,
		SuccessURL:      cfg.AppURL + "/payment/success",
		FailureURL:      cfg.AppURL + "/payment/failure",
		PendingURL:      cfg.AppURL + "/payment/pending",
		NotificationURL: cfg.PublicAPIURL + "/payment-webhook",
	},
		mercadopago.NewClient(cfg.MercadoPagoBaseURL, nil),
		stripe.NewGateway(nil),
	)

	var archiver payments.Archiver
	if cfg.WebhookArchiveBucket != "" {
		a, err := archive.NewS3ArchiveFromEnv(context.Background(), cfg.AWSRegion, cfg.WebhookArchiveBucket)
		if err != nil {
			return fmt.Errorf("webhook archive: %w", err)
		}
		archiver = a
	}
	events := payments.NewEventLog(db, archiver)

	r := gin.Default()
	routes.RegisterRoutes(r, cfg.JWTSecret, routes.Handlers{
		Checkout:    checkout.NewHandler(svc),
		MercadoPago: mpwebhook.NewHandler(svc, creds, events),
		Stripe:      stripewebhooks.NewHandler(svc, creds, events),
		Plans:       plansapi.NewHandler(db),
		Payments:    billingapi.NewPaymentsHandler(db),
		Admin:       adminapi.NewHandler(db),
		Users:       users.NewHandler(db),
	})

	log.Printf("layer=main component=server port=%s", cfg.Port)
	return r.Run(":" + cfg.Port)
}
