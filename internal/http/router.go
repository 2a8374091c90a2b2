package http

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pazarnet.com/app/internal/http/handlers"
	"pazarnet.com/app/internal/http/middleware"
	"pazarnet.com/app/internal/mailer"
	"pazarnet.com/app/internal/modules/ops"
	"pazarnet.com/app/internal/modules/orders"
	"pazarnet.com/app/internal/modules/payments"
	"pazarnet.com/app/internal/modules/settlement"
	"pazarnet.com/app/internal/modules/shipments"
	"pazarnet.com/app/internal/storage"
)

// NewRouter builds the full HTTP surface: services wired from env, JSON API
// under /api, webhook + cron endpoints outside the company-scoped group.
func NewRouter(logger *slog.Logger, db *gorm.DB) *gin.Engine {
	r := gin.New()
	// ErrorHandler renders whatever Fail recorded, so it wraps Recovery.
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.ErrorHandler(logger))
	r.Use(middleware.Recovery(logger))

	// Payment providers. Direct her zaman var; escrow opsiyonel.
	direct := payments.NewMockProvider(
		envOr("DIRECT_PROVIDER_NAME", "ODEL"),
		os.Getenv("DIRECT_PROVIDER_SECRET"),
		false,
	)
	var escrow payments.Provider
	providers := map[string]payments.Provider{direct.Name(): direct}
	if secret := os.Getenv("ESCROW_PROVIDER_SECRET"); secret != "" {
		e := payments.NewMockProvider(envOr("ESCROW_PROVIDER_NAME", "IYZICO"), secret, true)
		escrow = e
		providers[e.Name()] = e
	}

	labels, err := storage.FromEnv(context.Background())
	if err != nil {
		log.Fatalf("label storage init failed: %v", err)
	}
	logger.Info("label storage ready", "driver", labels.Driver)

	var mail mailer.Service
	if os.Getenv("SMTP_HOST") != "" {
		mail = mailer.NewSMTPMailer(mailer.SMTPConfigFromEnv())
	} else {
		mail = &mailer.Mock{}
	}
	notifier := ops.NewNotifierFromEnv(mail)

	orderRepo := orders.NewRepo(db)

	paySvc := payments.NewService(db, direct, escrow)
	paySvc.SetLogger(logger)
	webhookSvc := payments.NewWebhookService(db)
	webhookSvc.SetLogger(logger)

	carriers := shipments.NewRegistry(
		shipments.NewManualCarrier(),
		shipments.NewMockCarrier(labels.Storage),
	)
	shipSvc := shipments.NewService(db, carriers)
	shipSvc.SetLogger(logger)
	trackSvc := shipments.NewTrackingService(db)
	trackSvc.SetLogger(logger)

	releaseSvc := settlement.NewReleaseService(db, providers, notifier)
	releaseSvc.SetLogger(logger)
	confirmSvc := settlement.NewConfirmService(db, releaseSvc)
	confirmSvc.SetLogger(logger)
	reconciler := settlement.NewReconciler(db, releaseSvc)
	reconciler.SetLogger(logger)

	orderH := handlers.NewOrderHandler(orderRepo)
	payH := handlers.NewPaymentHandler(paySvc)
	webhookH := handlers.NewWebhookHandler(logger, providers, webhookSvc)
	shipH := handlers.NewShipmentHandler(shipSvc, trackSvc, shipments.NewRepo(db))
	settleH := handlers.NewSettlementHandler(confirmSvc, releaseSvc, db)
	cronH := handlers.NewCronHandler(os.Getenv("CRON_SECRET"), reconciler)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/webhooks/:provider", webhookH.Handle)
	r.GET("/cron/payout-reconciliation", cronH.PayoutReconciliation)

	api := r.Group("/api", middleware.RequireCompany())
	{
		api.GET("/orders", orderH.List)
		api.GET("/orders/:id", orderH.Get)
		api.POST("/orders/:id/pay", payH.Initiate)
		api.POST("/orders/:id/shipments", shipH.Initiate)
		api.GET("/orders/:id/shipments", shipH.ListByOrder)
		api.POST("/shipments/:id/transit", shipH.MarkInTransit)
		api.POST("/shipments/:id/delivered", shipH.MarkDelivered)
		api.POST("/orders/:id/confirm-delivery", settleH.ConfirmDelivery)
		api.GET("/network/earnings", settleH.Earnings)
		api.POST("/admin/payouts/:orderId/retry", settleH.RetryPayout)
	}

	return r
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
