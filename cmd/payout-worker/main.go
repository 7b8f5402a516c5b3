package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/DJCodeOne/freshwax-sub005/internal/cron"
	"github.com/DJCodeOne/freshwax-sub005/internal/ledger"
	"github.com/DJCodeOne/freshwax-sub005/internal/payouts"
	"github.com/DJCodeOne/freshwax-sub005/internal/sellers"
	"github.com/DJCodeOne/freshwax-sub005/pkg/config"
	"github.com/DJCodeOne/freshwax-sub005/pkg/db"
	"github.com/DJCodeOne/freshwax-sub005/pkg/logger"
	"github.com/DJCodeOne/freshwax-sub005/pkg/metrics"
	"github.com/DJCodeOne/freshwax-sub005/pkg/migrate"
	"github.com/DJCodeOne/freshwax-sub005/pkg/processor"
	"github.com/DJCodeOne/freshwax-sub005/pkg/redis"
)

const lockName = "payout-worker"

func main() {
	logg := logger.New(logger.Options{ServiceName: "payout-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "payout-worker"

	logg = logger.New(logger.Options{
		ServiceName: "payout-worker",
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

	payoutQueue, err := payouts.NewService(dbClient, payoutRepo, sellerRepo, ledgerRepo, processorClient, cfg.Payouts, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payout service", err)
		os.Exit(1)
	}

	sweepMetrics := metrics.NewSweepMetrics(prometheus.DefaultRegisterer)

	reconcileJob, err := cron.NewPayoutReconcileJob(payoutQueue, sellerRepo, sweepMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create reconcile job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockKey(cfg.App.Env)), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create sweep lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(reconcileJob),
		Lock:     lock,
		Metrics:  sweepMetrics,
		Interval: cfg.Payouts.SweepInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sweep scheduler", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting payout worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "payout worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "payout worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("%s:%s", lockName, env)
}
