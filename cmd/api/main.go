package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/DJCodeOne/freshwax-sub005/api/routes"
	"github.com/DJCodeOne/freshwax-sub005/internal/ledger"
	"github.com/DJCodeOne/freshwax-sub005/internal/payouts"
	"github.com/DJCodeOne/freshwax-sub005/internal/reversal"
	"github.com/DJCodeOne/freshwax-sub005/internal/sellers"
	"github.com/DJCodeOne/freshwax-sub005/internal/settlement"
	paymentwebhooks "github.com/DJCodeOne/freshwax-sub005/internal/webhooks/payments"
	"github.com/DJCodeOne/freshwax-sub005/pkg/config"
	"github.com/DJCodeOne/freshwax-sub005/pkg/db"
	"github.com/DJCodeOne/freshwax-sub005/pkg/logger"
	"github.com/DJCodeOne/freshwax-sub005/pkg/metrics"
	"github.com/DJCodeOne/freshwax-sub005/pkg/migrate"
	"github.com/DJCodeOne/freshwax-sub005/pkg/processor"
	"github.com/DJCodeOne/freshwax-sub005/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	processorClient, err := processor.NewClient(context.Background(), cfg.Processor, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create processor client", err)
		os.Exit(1)
	}

	sellerRepo := sellers.NewRepository(dbClient.DB())
	ledgerRepo := ledger.NewRepository(dbClient.DB())
	payoutRepo := payouts.NewRepository(dbClient.DB())
	reversalRepo := reversal.NewRepository(dbClient.DB())

	resolver, err := sellers.NewResolver(sellerRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create seller resolver", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledgerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	payoutQueue, err := payouts.NewService(dbClient, payoutRepo, sellerRepo, ledgerRepo, processorClient, cfg.Payouts, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payout service", err)
		os.Exit(1)
	}

	settlementService, err := settlement.NewService(dbClient, resolver, ledgerService, payoutRepo, sellerRepo, cfg.Fees, cfg.Payouts, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement service", err)
		os.Exit(1)
	}

	reversalService, err := reversal.NewService(dbClient, reversalRepo, payoutRepo, payoutQueue, sellerRepo, processorClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create reversal service", err)
		os.Exit(1)
	}

	webhookGuard, err := paymentwebhooks.NewIdempotencyGuard(redisClient, cfg.Payouts.IdempotencyTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create idempotency guard", err)
		os.Exit(1)
	}

	webhookMetrics := metrics.NewWebhookMetrics(prometheus.DefaultRegisterer)
	webhookService, err := paymentwebhooks.NewService(
		reversalRepo,
		settlementService,
		reversalService,
		payoutQueue,
		webhookGuard,
		webhookMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:          cfg,
			Logger:          logg,
			DBPinger:        dbClient,
			RedisPinger:     redisClient,
			ProcessorClient: processorClient,
			WebhookService:  webhookService,
			LedgerService:   ledgerService,
			LedgerRepo:      ledgerRepo,
			PayoutQueue:     payoutQueue,
			SellerRepo:      sellerRepo,
			ReversalRepo:    reversalRepo,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
