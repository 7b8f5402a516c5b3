package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DJCodeOne/freshwax-sub005/api/controllers"
	webhookcontrollers "github.com/DJCodeOne/freshwax-sub005/api/controllers/webhooks"
	"github.com/DJCodeOne/freshwax-sub005/api/middleware"
	"github.com/DJCodeOne/freshwax-sub005/internal/ledger"
	"github.com/DJCodeOne/freshwax-sub005/internal/payouts"
	"github.com/DJCodeOne/freshwax-sub005/internal/reversal"
	"github.com/DJCodeOne/freshwax-sub005/internal/sellers"
	paymentwebhooks "github.com/DJCodeOne/freshwax-sub005/internal/webhooks/payments"
	"github.com/DJCodeOne/freshwax-sub005/pkg/config"
	"github.com/DJCodeOne/freshwax-sub005/pkg/db"
	"github.com/DJCodeOne/freshwax-sub005/pkg/logger"
	"github.com/DJCodeOne/freshwax-sub005/pkg/processor"
	"github.com/DJCodeOne/freshwax-sub005/pkg/redis"
)

// Params collects the wired services the router exposes over HTTP.
type Params struct {
	Config          *config.Config
	Logger          *logger.Logger
	DBPinger        db.Pinger
	RedisPinger     redis.Pinger
	ProcessorClient *processor.Client
	WebhookService  paymentwebhooks.Service
	LedgerService   ledger.Service
	LedgerRepo      ledger.Repository
	PayoutQueue     payouts.Service
	SellerRepo      sellers.Repository
	ReversalRepo    reversal.Repository
	MetricsHandler  http.Handler
}

// NewRouter assembles the API surface.
func NewRouter(p Params) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, p.DBPinger, p.RedisPinger))
	})

	metricsHandler := p.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/payments", webhookcontrollers.PaymentsWebhook(p.WebhookService, p.ProcessorClient, p.Logger))
	})

	r.Route("/api/v1/ledger", func(r chi.Router) {
		r.Get("/{year}/{month}", controllers.LedgerMonth(p.LedgerService, p.Logger))
	})

	r.Route("/api/v1/sellers/{sellerID}", func(r chi.Router) {
		r.Get("/ledger", controllers.SellerLedger(p.LedgerService, p.Logger))
		r.Get("/payouts/queue", controllers.SellerPayoutQueue(p.PayoutQueue, p.Logger))
		r.Get("/payouts/history", controllers.SellerPayoutHistory(p.PayoutQueue, p.Logger))
	})

	r.Route("/api/v1/orders/{orderID}", func(r chi.Router) {
		r.Get("/ledger", controllers.OrderLedger(p.LedgerRepo, p.Logger))
		r.Get("/payouts", controllers.OrderPayouts(p.PayoutQueue, p.Logger))
		r.Get("/disputes", controllers.OrderDisputes(p.ReversalRepo, p.Logger))
		r.Get("/refunds", controllers.OrderRefunds(p.ReversalRepo, p.Logger))
	})

	r.Route("/api/internal/v1", func(r chi.Router) {
		r.Post("/payouts/{payoutID}/retry", controllers.RetryPayout(p.PayoutQueue, p.Logger))
		r.Post("/sellers/{sellerID}/account-activated", controllers.SellerAccountActivated(p.SellerRepo, p.PayoutQueue, p.Logger))
	})

	return r
}
