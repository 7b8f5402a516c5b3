package reversal

import (
	"context"
	stderrors "errors"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/DJCodeOne/freshwax-sub005/pkg/db/models"
	"github.com/DJCodeOne/freshwax-sub005/pkg/enums"
	"github.com/DJCodeOne/freshwax-sub005/pkg/errors"
	"github.com/DJCodeOne/freshwax-sub005/pkg/types"
)

// RefundReceived claws back a refund from sellers. The processor reports the
// charge's cumulative refunded total; the engine works out the incremental
// delta since the last event, so replays and out-of-order deliveries settle
// to the same state.
func (s *service) RefundReceived(ctx context.Context, input RefundInput) error {
	if input.RefundID == "" {
		return errors.New(errors.CodeValidation, "refund id is required")
	}
	if input.ChargeID == "" {
		return errors.New(errors.CodeValidation, "charge id is required")
	}
	if input.CumulativeAmount.IsNegative() {
		return errors.New(errors.CodeValidation, "cumulative refund amount cannot be negative")
	}

	ctx = s.logger.WithChargeID(ctx, input.ChargeID)
	ctx = s.logger.WithField(ctx, "refund_id", input.RefundID)

	if existing, err := s.repo.FindRefundByRefundID(ctx, input.RefundID); err == nil && existing != nil {
		s.logger.Info(ctx, "refund already recorded, skipping")
		return nil
	} else if err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(errors.CodeInternal, err, "look up refund")
	}

	order, err := s.repo.FindOrderByChargeID(ctx, input.ChargeID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(errors.CodeNotFound, "no order for refunded charge")
		}
		return errors.Wrap(errors.CodeInternal, err, "look up refunded order")
	}
	ctx = s.logger.WithOrderID(ctx, order.ID.String())

	delta := input.CumulativeAmount.Sub(order.CumulativeRefunded)
	if !delta.IsPositive() {
		s.logger.Info(ctx, "refund carries no new amount, skipping")
		return nil
	}

	full := isFullRefund(input.CumulativeAmount, order.Total)

	reversed, errs := s.clawBack(ctx, order, delta, full)

	refund := &models.Refund{
		RefundID:          input.RefundID,
		ChargeID:          input.ChargeID,
		OrderID:           order.ID,
		Amount:            delta,
		CumulativeAmount:  input.CumulativeAmount,
		Full:              full,
		Reason:            input.Reason,
		TransfersReversed: reversed,
	}

	refundStatus := enums.RefundStatusPartial
	if full {
		refundStatus = enums.RefundStatusFull
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateRefund(ctx, refund); err != nil {
			return err
		}
		return repo.UpdateOrder(ctx, order.ID, map[string]any{
			"cumulative_refunded": input.CumulativeAmount,
			"refund_status":       refundStatus,
		})
	})
	if err != nil {
		errs = multierr.Append(errs, errors.Wrap(errors.CodeInternal, err, "record refund"))
		return errs
	}

	s.logger.Info(s.logger.WithField(ctx, "refund_delta", delta.String()), "refund settled")
	return errs
}

// clawBack recovers the refund delta from the order's payouts. Completed
// transfers are reversed in proportion to their share of the order; whatever
// the transfers do not cover is absorbed by the queued payouts, which are
// cancelled or shrunk before the money ever moves.
func (s *service) clawBack(ctx context.Context, order *models.Order, delta decimal.Decimal, full bool) (types.TransferReversals, error) {
	completed, err := s.payouts.ListPayoutsByOrder(ctx, order.ID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "list order payouts")
	}

	reversible := make([]models.Payout, 0, len(completed))
	for _, payout := range completed {
		if payout.RemainingReversible().IsPositive() {
			reversible = append(reversible, payout)
		}
	}

	fraction := decimal.NewFromInt(1)
	if !full && order.Total.IsPositive() {
		fraction = delta.Div(order.Total)
	}

	var reversed types.TransferReversals
	var errs error
	remainingDelta := delta
	for _, payout := range reversible {
		if !remainingDelta.IsPositive() {
			break
		}

		amount := payout.Amount.Mul(fraction).Round(2)
		if full {
			amount = payout.RemainingReversible()
		}
		amount = decimal.Min(amount, payout.RemainingReversible(), remainingDelta)
		if !amount.IsPositive() {
			continue
		}

		if err := s.reversePayout(ctx, payout, amount); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		reversed = append(reversed, types.TransferReversal{
			TransferID: payout.TransferID,
			SellerID:   payout.SellerID,
			Amount:     amount,
		})
		remainingDelta = remainingDelta.Sub(amount)
	}

	if remainingDelta.IsPositive() {
		if _, err := s.queue.AdjustForRefund(ctx, order.ID, remainingDelta); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return reversed, errs
}

func isFullRefund(cumulative, total decimal.Decimal) bool {
	if !total.IsPositive() {
		return false
	}
	return cumulative.Div(total).GreaterThanOrEqual(fullRefundThreshold)
}
