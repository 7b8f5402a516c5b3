package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/DJCodeOne/freshwax-sub005/internal/payouts"
	"github.com/DJCodeOne/freshwax-sub005/internal/sellers"
	"github.com/DJCodeOne/freshwax-sub005/pkg/logger"
	"github.com/DJCodeOne/freshwax-sub005/pkg/metrics"
)

const payoutReconcileJobName = "payout_reconcile"

// maxSellersPerCycle caps how many sellers one cycle visits so a backlog
// cannot keep the lock held indefinitely.
const maxSellersPerCycle = 200

// PayoutReconcileJob re-attempts payouts parked while their seller had no
// active sub-account. Activation webhooks can be missed; the sweep catches
// whatever they dropped.
type PayoutReconcileJob struct {
	queue   payouts.Service
	sellers sellers.Repository
	metrics *metrics.SweepMetrics
	logg    *logger.Logger
}

// NewPayoutReconcileJob builds the reconcile job.
func NewPayoutReconcileJob(queue payouts.Service, sellerRepo sellers.Repository, sweepMetrics *metrics.SweepMetrics, logg *logger.Logger) (*PayoutReconcileJob, error) {
	if queue == nil {
		return nil, fmt.Errorf("payout queue required")
	}
	if sellerRepo == nil {
		return nil, fmt.Errorf("seller repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &PayoutReconcileJob{
		queue:   queue,
		sellers: sellerRepo,
		metrics: sweepMetrics,
		logg:    logg,
	}, nil
}

// Name implements Job.
func (j *PayoutReconcileJob) Name() string {
	return payoutReconcileJobName
}

// Run implements Job.
func (j *PayoutReconcileJob) Run(ctx context.Context) error {
	sellerIDs, err := j.queue.SellersAwaitingAccount(ctx, maxSellersPerCycle)
	if err != nil {
		return fmt.Errorf("list sellers awaiting account: %w", err)
	}

	var errs error
	totalCompleted := 0
	for _, sellerID := range sellerIDs {
		scoped := j.logg.WithSellerID(ctx, sellerID.String())

		seller, err := j.sellers.FindSeller(scoped, sellerID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("load seller %s: %w", sellerID, err))
			continue
		}
		if !seller.CanReceiveTransfers() {
			continue
		}

		completed, err := j.queue.ProcessSellerQueue(scoped, sellerID)
		totalCompleted += completed
		if err != nil {
			j.metrics.AddFailed(payoutReconcileJobName, 1)
			errs = multierr.Append(errs, err)
		}
	}

	j.metrics.AddCompleted(payoutReconcileJobName, totalCompleted)
	if totalCompleted > 0 {
		j.logg.Info(j.logg.WithField(ctx, "transfers_completed", totalCompleted),
			"reconcile sweep released parked payouts")
	}
	return errs
}
