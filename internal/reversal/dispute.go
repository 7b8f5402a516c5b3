package reversal

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/DJCodeOne/freshwax-sub005/pkg/db/models"
	"github.com/DJCodeOne/freshwax-sub005/pkg/enums"
	"github.com/DJCodeOne/freshwax-sub005/pkg/errors"
	"github.com/DJCodeOne/freshwax-sub005/pkg/processor"
	"github.com/DJCodeOne/freshwax-sub005/pkg/types"
)

func processorTransferParams(seller *models.Seller, payout *models.Payout, amount decimal.Decimal) processor.TransferParams {
	return processor.TransferParams{
		Destination:   *seller.SubAccountID,
		Amount:        amount,
		Currency:      payout.Currency,
		TransferGroup: payout.TransferGroup,
	}
}

// DisputeOpened reverses every completed transfer on the disputed charge's
// order, pulling the money back while the dispute is contested. Reversal
// failures are isolated per transfer; whatever was recovered is recorded.
func (s *service) DisputeOpened(ctx context.Context, input DisputeOpenedInput) error {
	if input.DisputeID == "" {
		return errors.New(errors.CodeValidation, "dispute id is required")
	}
	if input.ChargeID == "" {
		return errors.New(errors.CodeValidation, "charge id is required")
	}

	ctx = s.logger.WithChargeID(ctx, input.ChargeID)
	ctx = s.logger.WithField(ctx, "dispute_id", input.DisputeID)

	if existing, err := s.repo.FindDisputeByDisputeID(ctx, input.DisputeID); err == nil && existing != nil {
		s.logger.Info(ctx, "dispute already recorded, skipping")
		return nil
	} else if err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(errors.CodeInternal, err, "look up dispute")
	}

	order, err := s.repo.FindOrderByChargeID(ctx, input.ChargeID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(errors.CodeNotFound, "no order for disputed charge")
		}
		return errors.Wrap(errors.CodeInternal, err, "look up disputed order")
	}
	ctx = s.logger.WithOrderID(ctx, order.ID.String())

	completed, err := s.payouts.ListPayoutsByOrder(ctx, order.ID)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "list order payouts")
	}

	var reversed types.TransferReversals
	var errs error
	for _, payout := range completed {
		remaining := payout.RemainingReversible()
		if !remaining.IsPositive() {
			continue
		}
		if err := s.reversePayout(ctx, payout, remaining); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		reversed = append(reversed, types.TransferReversal{
			TransferID: payout.TransferID,
			SellerID:   payout.SellerID,
			Amount:     remaining,
		})
	}

	dispute := &models.Dispute{
		DisputeID:         input.DisputeID,
		ChargeID:          input.ChargeID,
		OrderID:           order.ID,
		Amount:            input.Amount,
		Reason:            input.Reason,
		Status:            enums.DisputeStatusOpen,
		TransfersReversed: reversed,
		AmountRecovered:   reversed.Total(),
	}
	if err := s.repo.CreateDispute(ctx, dispute); err != nil {
		errs = multierr.Append(errs, errors.Wrap(errors.CodeInternal, err, "record dispute"))
		return errs
	}

	s.logger.Info(s.logger.WithField(ctx, "amount_recovered", dispute.AmountRecovered.String()),
		"dispute opened, transfers reversed")
	return errs
}

// DisputeClosed resolves a previously opened dispute. A win restores the
// reversed funds to sellers; a loss books the platform's net impact.
func (s *service) DisputeClosed(ctx context.Context, input DisputeClosedInput) error {
	if input.DisputeID == "" {
		return errors.New(errors.CodeValidation, "dispute id is required")
	}
	outcome, err := enums.ParseDisputeOutcome(input.Outcome)
	if err != nil {
		return errors.Wrap(errors.CodeValidation, err, "parse dispute outcome")
	}

	ctx = s.logger.WithField(ctx, "dispute_id", input.DisputeID)

	dispute, err := s.repo.FindDisputeByDisputeID(ctx, input.DisputeID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(errors.CodeNotFound, "dispute not found")
		}
		return errors.Wrap(errors.CodeInternal, err, "look up dispute")
	}
	if dispute.Status == enums.DisputeStatusResolved {
		s.logger.Info(ctx, "dispute already resolved, skipping")
		return nil
	}

	updates := map[string]any{
		"status":  enums.DisputeStatusResolved,
		"outcome": outcome,
	}

	var errs error
	switch outcome {
	case enums.DisputeOutcomeLost:
		netImpact := dispute.Amount.Sub(dispute.AmountRecovered)
		if netImpact.IsNegative() {
			netImpact = decimal.Zero
		}
		updates["net_impact"] = netImpact

	case enums.DisputeOutcomeWon:
		errs = s.restoreReversedFunds(ctx, dispute)
	}

	if err := s.repo.UpdateDispute(ctx, dispute.ID, updates); err != nil {
		errs = multierr.Append(errs, errors.Wrap(errors.CodeInternal, err, "resolve dispute"))
	}
	return errs
}

// restoreReversedFunds pays sellers back after a won dispute. Sellers whose
// sub-account can take a transfer are paid immediately; the rest get a
// parked payout the reconcile sweep will pick up.
func (s *service) restoreReversedFunds(ctx context.Context, dispute *models.Dispute) error {
	var errs error
	for _, reversal := range dispute.TransfersReversed {
		scoped := s.logger.WithSellerID(ctx, reversal.SellerID.String())

		seller, err := s.sellers.FindSeller(scoped, reversal.SellerID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("load seller %s: %w", reversal.SellerID, err))
			continue
		}

		payout, err := s.payouts.FindPayoutByTransferID(scoped, reversal.TransferID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("load payout for transfer %s: %w", reversal.TransferID, err))
			continue
		}

		if !seller.CanReceiveTransfers() {
			if err := s.parkRestoredPayout(scoped, seller, payout, reversal.Amount); err != nil {
				errs = multierr.Append(errs, err)
			}
			continue
		}

		if err := s.reissueTransfer(scoped, seller, payout, reversal.Amount); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (s *service) parkRestoredPayout(ctx context.Context, seller *models.Seller, payout *models.Payout, amount decimal.Decimal) error {
	pending := &models.PendingPayout{
		SellerID:      seller.ID,
		SellerKind:    seller.Kind,
		SellerName:    seller.Name,
		SellerEmail:   seller.Email,
		OrderID:       payout.OrderID,
		TransferGroup: payout.TransferGroup,
		Amount:        amount,
		Currency:      payout.Currency,
		Status:        enums.PendingPayoutStatusAwaitingAccount,
	}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.payouts.WithTx(tx).CreatePending(ctx, pending); err != nil {
			return fmt.Errorf("queue restored payout: %w", err)
		}
		if err := s.sellers.WithTx(tx).AddPendingBalance(ctx, seller.ID, amount); err != nil {
			return fmt.Errorf("credit pending balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "restored payout parked until seller account activates")
	return nil
}

func (s *service) reissueTransfer(ctx context.Context, seller *models.Seller, payout *models.Payout, amount decimal.Decimal) error {
	transfer, err := s.transfers.CreateTransfer(ctx, processorTransferParams(seller, payout, amount))
	if err != nil {
		return fmt.Errorf("re-transfer to seller %s: %w", seller.ID, err)
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.payouts.WithTx(tx)
		if err := repo.CreatePayout(ctx, &models.Payout{
			SellerID:      seller.ID,
			OrderID:       payout.OrderID,
			TransferID:    transfer.ID,
			TransferGroup: payout.TransferGroup,
			Amount:        amount,
			Currency:      payout.Currency,
			Status:        enums.PayoutStatusCompleted,
		}); err != nil {
			return fmt.Errorf("record restored payout: %w", err)
		}
		if err := s.sellers.WithTx(tx).AddEarnings(ctx, seller.ID, amount); err != nil {
			return fmt.Errorf("restore seller earnings: %w", err)
		}
		return nil
	})
}

// reversePayout pulls amount back from one transfer and books it against
// the payout record and the seller's lifetime earnings.
func (s *service) reversePayout(ctx context.Context, payout models.Payout, amount decimal.Decimal) error {
	reverseAmount := amount
	if _, err := s.transfers.ReverseTransfer(ctx, payout.TransferID, &reverseAmount); err != nil {
		return fmt.Errorf("reverse transfer %s: %w", payout.TransferID, err)
	}

	newReversed := payout.ReversedAmount.Add(amount)
	status := enums.PayoutStatusPartiallyReversed
	if newReversed.GreaterThanOrEqual(payout.Amount) {
		status = enums.PayoutStatusReversed
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.payouts.WithTx(tx).UpdatePayout(ctx, payout.ID, map[string]any{
			"reversed_amount": newReversed,
			"status":          status,
		}); err != nil {
			return fmt.Errorf("record reversal on payout: %w", err)
		}
		if err := s.sellers.WithTx(tx).AddEarnings(ctx, payout.SellerID, amount.Neg()); err != nil {
			return fmt.Errorf("debit seller earnings: %w", err)
		}
		return nil
	})
}
