package payouts

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/DJCodeOne/freshwax-sub005/internal/ledger"
	"github.com/DJCodeOne/freshwax-sub005/internal/sellers"
	"github.com/DJCodeOne/freshwax-sub005/pkg/config"
	"github.com/DJCodeOne/freshwax-sub005/pkg/db"
	"github.com/DJCodeOne/freshwax-sub005/pkg/db/models"
	"github.com/DJCodeOne/freshwax-sub005/pkg/enums"
	"github.com/DJCodeOne/freshwax-sub005/pkg/errors"
	"github.com/DJCodeOne/freshwax-sub005/pkg/logger"
	"github.com/DJCodeOne/freshwax-sub005/pkg/processor"
)

// claimable is the set of states a payout may be picked up from for a
// transfer attempt. A payout leaves the set the moment a sweep claims it.
var claimable = []enums.PendingPayoutStatus{
	enums.PendingPayoutStatusPending,
	enums.PendingPayoutStatusAwaitingAccount,
	enums.PendingPayoutStatusRetryPending,
}

// adjustable is the set of states a refund may cancel or shrink. In-flight
// and completed payouts are handled by the reversal engine instead.
var adjustable = []enums.PendingPayoutStatus{
	enums.PendingPayoutStatusPending,
	enums.PendingPayoutStatusAwaitingAccount,
	enums.PendingPayoutStatusRetryPending,
}

// Service owns the payout queue: enqueueing obligations at settlement time,
// executing transfers against the processor, and absorbing refunds.
type Service interface {
	Enqueue(ctx context.Context, payout *models.PendingPayout) error
	// ProcessOrderPayouts attempts a transfer for every claimable payout on
	// the order. Per-seller failures are isolated and aggregated.
	ProcessOrderPayouts(ctx context.Context, orderID uuid.UUID) error
	// ProcessSellerQueue drains a seller's parked payouts, at most
	// SweepBatchSize per call. Returns how many transfers completed.
	ProcessSellerQueue(ctx context.Context, sellerID uuid.UUID) (int, error)
	// Retry re-attempts a single payout that previously failed. Only
	// retry_pending payouts are eligible.
	Retry(ctx context.Context, pendingPayoutID uuid.UUID) error
	// AdjustForRefund cancels or shrinks the order's queued payouts to absorb
	// a refund, oldest first. Returns the amount absorbed.
	AdjustForRefund(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
	// SellersAwaitingAccount lists sellers with parked payouts, for the
	// reconcile sweep.
	SellersAwaitingAccount(ctx context.Context, limit int) ([]uuid.UUID, error)
	SellerQueue(ctx context.Context, sellerID uuid.UUID) ([]models.PendingPayout, error)
	SellerHistory(ctx context.Context, sellerID uuid.UUID, limit int) ([]models.Payout, error)
	OrderPayouts(ctx context.Context, orderID uuid.UUID) ([]models.Payout, error)
}

type service struct {
	db        *db.Client
	repo      Repository
	sellers   sellers.Repository
	ledger    ledger.Repository
	transfers processor.Transfers
	cfg       config.PayoutsConfig
	logger    *logger.Logger
}

// NewService wires the payout service and validates its dependencies.
func NewService(
	dbClient *db.Client,
	repo Repository,
	sellerRepo sellers.Repository,
	ledgerRepo ledger.Repository,
	transfers processor.Transfers,
	cfg config.PayoutsConfig,
	logg *logger.Logger,
) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("payouts service requires a db client")
	}
	if repo == nil {
		return nil, fmt.Errorf("payouts service requires a repository")
	}
	if sellerRepo == nil {
		return nil, fmt.Errorf("payouts service requires a seller repository")
	}
	if ledgerRepo == nil {
		return nil, fmt.Errorf("payouts service requires a ledger repository")
	}
	if transfers == nil {
		return nil, fmt.Errorf("payouts service requires a transfer client")
	}
	if logg == nil {
		return nil, fmt.Errorf("payouts service requires a logger")
	}
	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = 25
	}
	return &service{
		db:        dbClient,
		repo:      repo,
		sellers:   sellerRepo,
		ledger:    ledgerRepo,
		transfers: transfers,
		cfg:       cfg,
		logger:    logg,
	}, nil
}

func (s *service) Enqueue(ctx context.Context, payout *models.PendingPayout) error {
	if payout == nil {
		return errors.New(errors.CodeValidation, "pending payout is required")
	}
	if payout.SellerID == uuid.Nil {
		return errors.New(errors.CodeValidation, "pending payout requires a seller id")
	}
	if payout.OrderID == uuid.Nil {
		return errors.New(errors.CodeValidation, "pending payout requires an order id")
	}
	if !payout.Amount.IsPositive() {
		return errors.New(errors.CodeValidation, "pending payout amount must be positive")
	}
	if payout.Currency == "" {
		payout.Currency = s.cfg.Currency
	}
	if payout.Status == "" {
		payout.Status = enums.PendingPayoutStatusPending
	}
	return s.repo.CreatePending(ctx, payout)
}

func (s *service) ProcessOrderPayouts(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return errors.New(errors.CodeValidation, "order id is required")
	}
	pendings, err := s.repo.ListPendingByOrder(ctx, orderID, claimable)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "list order payouts")
	}

	var errs error
	for i := range pendings {
		if _, err := s.attemptTransfer(ctx, &pendings[i]); err != nil {
			scoped := s.logger.WithSellerID(ctx, pendings[i].SellerID.String())
			s.logger.Error(scoped, "payout transfer attempt failed", err)
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (s *service) ProcessSellerQueue(ctx context.Context, sellerID uuid.UUID) (int, error) {
	if sellerID == uuid.Nil {
		return 0, errors.New(errors.CodeValidation, "seller id is required")
	}
	parked := []enums.PendingPayoutStatus{enums.PendingPayoutStatusAwaitingAccount}
	pendings, err := s.repo.ListPendingBySeller(ctx, sellerID, parked, s.cfg.SweepBatchSize)
	if err != nil {
		return 0, errors.Wrap(errors.CodeInternal, err, "list seller payout queue")
	}

	completed := 0
	var errs error
	for i := range pendings {
		ok, err := s.attemptTransfer(ctx, &pendings[i])
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if ok {
			completed++
		}
	}
	return completed, errs
}

func (s *service) Retry(ctx context.Context, pendingPayoutID uuid.UUID) error {
	pending, err := s.repo.FindPending(ctx, pendingPayoutID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(errors.CodeNotFound, "pending payout not found")
		}
		return errors.Wrap(errors.CodeInternal, err, "load pending payout")
	}
	if pending.Status != enums.PendingPayoutStatusRetryPending {
		return errors.New(errors.CodeStateConflict,
			fmt.Sprintf("payout in state %q cannot be retried", pending.Status))
	}
	_, err = s.attemptTransfer(ctx, pending)
	return err
}

// attemptTransfer claims the payout, makes exactly one transfer attempt, and
// records the outcome. Returns true only when the transfer completed.
func (s *service) attemptTransfer(ctx context.Context, pending *models.PendingPayout) (bool, error) {
	ctx = s.logger.WithFields(ctx, map[string]any{
		"pending_payout_id": pending.ID.String(),
		"seller_id":         pending.SellerID.String(),
		"order_id":          pending.OrderID.String(),
	})

	claimed, err := s.repo.TransitionPending(ctx, pending.ID, claimable, enums.PendingPayoutStatusProcessing)
	if err != nil {
		return false, errors.Wrap(errors.CodeInternal, err, "claim pending payout")
	}
	if !claimed {
		// Another sweep got there first, or the payout was cancelled.
		s.logger.Info(ctx, "payout claim lost, skipping")
		return false, nil
	}

	seller, err := s.sellers.FindSeller(ctx, pending.SellerID)
	if err != nil {
		s.park(ctx, pending.ID, enums.PendingPayoutStatusRetryPending, "seller lookup failed")
		return false, errors.Wrap(errors.CodeInternal, err, "load seller for payout")
	}
	if !seller.CanReceiveTransfers() {
		if err := s.repo.UpdatePending(ctx, pending.ID, map[string]any{
			"status":         enums.PendingPayoutStatusAwaitingAccount,
			"failure_reason": nil,
		}); err != nil {
			return false, errors.Wrap(errors.CodeInternal, err, "park payout awaiting account")
		}
		s.logger.Info(ctx, "payout parked until seller account activates")
		return false, nil
	}

	transfer, err := s.transfers.CreateTransfer(ctx, processor.TransferParams{
		Destination:   *seller.SubAccountID,
		Amount:        pending.Amount,
		Currency:      pending.Currency,
		TransferGroup: pending.TransferGroup,
	})
	if err != nil {
		s.park(ctx, pending.ID, enums.PendingPayoutStatusRetryPending, err.Error())
		return false, errors.Wrap(errors.CodeDependency, err, "processor transfer failed")
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sellerRepo := s.sellers.WithTx(tx)
		ledgerRepo := s.ledger.WithTx(tx)

		payout := &models.Payout{
			SellerID:        pending.SellerID,
			OrderID:         pending.OrderID,
			PendingPayoutID: &pending.ID,
			TransferID:      transfer.ID,
			TransferGroup:   pending.TransferGroup,
			Amount:          pending.Amount,
			Currency:        pending.Currency,
			Status:          enums.PayoutStatusCompleted,
		}
		if err := repo.CreatePayout(ctx, payout); err != nil {
			return fmt.Errorf("record payout: %w", err)
		}
		if err := repo.UpdatePending(ctx, pending.ID, map[string]any{
			"status":         enums.PendingPayoutStatusCompleted,
			"failure_reason": nil,
		}); err != nil {
			return fmt.Errorf("complete pending payout: %w", err)
		}
		if err := sellerRepo.AddEarnings(ctx, pending.SellerID, pending.Amount); err != nil {
			return fmt.Errorf("credit seller earnings: %w", err)
		}
		if err := sellerRepo.AddPendingBalance(ctx, pending.SellerID, pending.Amount.Neg()); err != nil {
			return fmt.Errorf("release seller pending balance: %w", err)
		}
		if err := ledgerRepo.MarkPaid(ctx, pending.OrderID, pending.SellerID); err != nil {
			return fmt.Errorf("mark ledger paid: %w", err)
		}
		return nil
	})
	if err != nil {
		// The transfer went out but the local records did not commit. Keep
		// the payout visible for the reconcile sweep rather than retrying a
		// transfer that already happened.
		s.park(ctx, pending.ID, enums.PendingPayoutStatusRetryPending,
			fmt.Sprintf("transfer %s issued but not recorded: %v", transfer.ID, err))
		return false, errors.Wrap(errors.CodeInternal, err, "record completed transfer")
	}

	s.logger.Info(s.logger.WithField(ctx, "transfer_id", transfer.ID), "payout transfer completed")
	return true, nil
}

func (s *service) park(ctx context.Context, id uuid.UUID, status enums.PendingPayoutStatus, reason string) {
	if err := s.repo.UpdatePending(ctx, id, map[string]any{
		"status":         status,
		"failure_reason": reason,
	}); err != nil {
		s.logger.Error(ctx, "failed to park payout after error", err)
	}
}

func (s *service) AdjustForRefund(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if orderID == uuid.Nil {
		return decimal.Zero, errors.New(errors.CodeValidation, "order id is required")
	}
	if !amount.IsPositive() {
		return decimal.Zero, errors.New(errors.CodeValidation, "refund adjustment must be positive")
	}

	absorbed := decimal.Zero
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sellerRepo := s.sellers.WithTx(tx)

		pendings, err := repo.ListPendingByOrder(ctx, orderID, adjustable)
		if err != nil {
			return fmt.Errorf("list adjustable payouts: %w", err)
		}

		remaining := amount
		for i := range pendings {
			if !remaining.IsPositive() {
				break
			}
			pending := pendings[i]
			take := decimal.Min(remaining, pending.Amount)

			updates := map[string]any{}
			if pending.OriginalAmount == nil {
				// First adjustment; later refunds must not clobber the audit
				// trail with an already-shrunk amount.
				updates["original_amount"] = pending.Amount
			}
			if take.GreaterThanOrEqual(pending.Amount) {
				updates["status"] = enums.PendingPayoutStatusCancelled
				updates["amount"] = decimal.Zero
			} else {
				updates["amount"] = pending.Amount.Sub(take)
			}
			if err := repo.UpdatePending(ctx, pending.ID, updates); err != nil {
				return fmt.Errorf("shrink pending payout: %w", err)
			}
			if err := sellerRepo.AddPendingBalance(ctx, pending.SellerID, take.Neg()); err != nil {
				return fmt.Errorf("release refunded balance: %w", err)
			}

			remaining = remaining.Sub(take)
			absorbed = absorbed.Add(take)
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, errors.Wrap(errors.CodeInternal, err, "adjust payouts for refund")
	}

	if absorbed.IsPositive() {
		ctx = s.logger.WithOrderID(ctx, orderID.String())
		s.logger.Info(s.logger.WithField(ctx, "absorbed", absorbed.String()),
			"refund absorbed by queued payouts")
	}
	return absorbed, nil
}

func (s *service) SellersAwaitingAccount(ctx context.Context, limit int) ([]uuid.UUID, error) {
	return s.repo.SellerIDsWithStatus(ctx, enums.PendingPayoutStatusAwaitingAccount, limit)
}

func (s *service) SellerQueue(ctx context.Context, sellerID uuid.UUID) ([]models.PendingPayout, error) {
	if sellerID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "seller id is required")
	}
	return s.repo.ListPendingBySeller(ctx, sellerID, nil, 0)
}

func (s *service) SellerHistory(ctx context.Context, sellerID uuid.UUID, limit int) ([]models.Payout, error) {
	if sellerID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "seller id is required")
	}
	return s.repo.ListPayoutsBySeller(ctx, sellerID, limit)
}

func (s *service) OrderPayouts(ctx context.Context, orderID uuid.UUID) ([]models.Payout, error) {
	if orderID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "order id is required")
	}
	return s.repo.ListPayoutsByOrder(ctx, orderID)
}
