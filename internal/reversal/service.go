package reversal

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/DJCodeOne/freshwax-sub005/internal/payouts"
	"github.com/DJCodeOne/freshwax-sub005/internal/sellers"
	"github.com/DJCodeOne/freshwax-sub005/pkg/db"
	"github.com/DJCodeOne/freshwax-sub005/pkg/logger"
	"github.com/DJCodeOne/freshwax-sub005/pkg/processor"
)

// fullRefundThreshold treats a cumulative refund at or above this fraction of
// the order total as a full refund, absorbing processor fee rounding.
var fullRefundThreshold = decimal.NewFromFloat(0.99)

// DisputeOpenedInput carries the fields of a dispute.created event the
// engine acts on.
type DisputeOpenedInput struct {
	DisputeID string
	ChargeID  string
	Amount    decimal.Decimal
	Reason    string
}

// DisputeClosedInput carries the resolution of a dispute.
type DisputeClosedInput struct {
	DisputeID string
	Outcome   string
}

// RefundInput carries a refund.created event. CumulativeAmount is the
// processor's refunded-to-date total for the charge, not a delta.
type RefundInput struct {
	RefundID         string
	ChargeID         string
	CumulativeAmount decimal.Decimal
	Reason           string
}

// Service claws funds back from sellers when a charge is disputed or
// refunded, and restores them when a dispute is won.
type Service interface {
	DisputeOpened(ctx context.Context, input DisputeOpenedInput) error
	DisputeClosed(ctx context.Context, input DisputeClosedInput) error
	RefundReceived(ctx context.Context, input RefundInput) error
}

type service struct {
	db        *db.Client
	repo      Repository
	payouts   payouts.Repository
	queue     payouts.Service
	sellers   sellers.Repository
	transfers processor.Transfers
	logger    *logger.Logger
}

// NewService wires the reversal engine and validates its dependencies.
func NewService(
	dbClient *db.Client,
	repo Repository,
	payoutRepo payouts.Repository,
	queue payouts.Service,
	sellerRepo sellers.Repository,
	transfers processor.Transfers,
	logg *logger.Logger,
) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("reversal service requires a db client")
	}
	if repo == nil {
		return nil, fmt.Errorf("reversal service requires a repository")
	}
	if payoutRepo == nil {
		return nil, fmt.Errorf("reversal service requires a payout repository")
	}
	if queue == nil {
		return nil, fmt.Errorf("reversal service requires the payout queue")
	}
	if sellerRepo == nil {
		return nil, fmt.Errorf("reversal service requires a seller repository")
	}
	if transfers == nil {
		return nil, fmt.Errorf("reversal service requires a transfer client")
	}
	if logg == nil {
		return nil, fmt.Errorf("reversal service requires a logger")
	}
	return &service{
		db:        dbClient,
		repo:      repo,
		payouts:   payoutRepo,
		queue:     queue,
		sellers:   sellerRepo,
		transfers: transfers,
		logger:    logg,
	}, nil
}
