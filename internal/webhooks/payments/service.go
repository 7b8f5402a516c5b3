package payments

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/DJCodeOne/freshwax-sub005/internal/payouts"
	"github.com/DJCodeOne/freshwax-sub005/internal/reversal"
	"github.com/DJCodeOne/freshwax-sub005/internal/settlement"
	"github.com/DJCodeOne/freshwax-sub005/pkg/db/models"
	"github.com/DJCodeOne/freshwax-sub005/pkg/enums"
	"github.com/DJCodeOne/freshwax-sub005/pkg/errors"
	"github.com/DJCodeOne/freshwax-sub005/pkg/logger"
	"github.com/DJCodeOne/freshwax-sub005/pkg/metrics"
)

// OrderSource looks up orders for payment.completed events.
type OrderSource interface {
	FindOrderByChargeID(ctx context.Context, chargeID string) (*models.Order, error)
}

// Service routes verified processor events to the settlement and reversal
// engines. Unknown event types are acknowledged and dropped.
type Service interface {
	HandleEvent(ctx context.Context, event Event) error
}

type service struct {
	orders     OrderSource
	settlement settlement.Service
	reversals  reversal.Service
	queue      payouts.Service
	guard      *IdempotencyGuard
	validate   *validator.Validate
	metrics    *metrics.WebhookMetrics
	logger     *logger.Logger
}

// NewService wires the webhook event router and validates its dependencies.
func NewService(
	orders OrderSource,
	settlementSvc settlement.Service,
	reversalSvc reversal.Service,
	queue payouts.Service,
	guard *IdempotencyGuard,
	webhookMetrics *metrics.WebhookMetrics,
	logg *logger.Logger,
) (Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("webhook service requires an order source")
	}
	if settlementSvc == nil {
		return nil, fmt.Errorf("webhook service requires the settlement service")
	}
	if reversalSvc == nil {
		return nil, fmt.Errorf("webhook service requires the reversal service")
	}
	if queue == nil {
		return nil, fmt.Errorf("webhook service requires the payout queue")
	}
	if guard == nil {
		return nil, fmt.Errorf("webhook service requires an idempotency guard")
	}
	if logg == nil {
		return nil, fmt.Errorf("webhook service requires a logger")
	}
	return &service{
		orders:     orders,
		settlement: settlementSvc,
		reversals:  reversalSvc,
		queue:      queue,
		guard:      guard,
		validate:   validator.New(),
		metrics:    webhookMetrics,
		logger:     logg,
	}, nil
}

func (s *service) HandleEvent(ctx context.Context, event Event) error {
	if err := s.validate.Struct(event); err != nil {
		return errors.Wrap(errors.CodeValidation, err, "invalid webhook event")
	}

	ctx = s.logger.WithFields(ctx, map[string]any{
		"event_id":   event.ID,
		"event_type": event.Type,
	})

	eventType, err := enums.ParsePaymentEventType(event.Type)
	if err != nil {
		s.logger.Info(ctx, "ignoring unhandled event type")
		return nil
	}
	s.metrics.IncReceived(event.Type)

	claimed, err := s.guard.Claim(ctx, event.ID)
	if err != nil {
		s.metrics.IncFailed(event.Type)
		return errors.Wrap(errors.CodeDependency, err, "webhook idempotency check")
	}
	if !claimed {
		s.metrics.IncReplayed()
		s.logger.Info(ctx, "duplicate event delivery, skipping")
		return nil
	}

	settled, err := s.dispatch(ctx, eventType, event)
	if err != nil {
		s.metrics.IncFailed(event.Type)
		if settled {
			// Settlement writes landed before the failure. Releasing the claim
			// would let the redelivery append a second ledger entry and payout
			// for the sellers that succeeded, so the claim stays and the failed
			// sellers are left to the operator retry surface.
			s.logger.Error(ctx, "event partially settled, keeping idempotency claim", err)
			return err
		}
		s.guard.Release(ctx, event.ID)
		return err
	}
	return nil
}

// dispatch routes the event to its handler. The returned bool reports whether
// settlement writes were committed; the reversal handlers converge on
// redelivery so they never need to hold the claim on failure.
func (s *service) dispatch(ctx context.Context, eventType enums.PaymentEventType, event Event) (bool, error) {
	switch eventType {
	case enums.PaymentEventPaymentCompleted:
		return s.handlePaymentCompleted(ctx, event)
	case enums.PaymentEventDisputeCreated:
		return false, s.handleDisputeCreated(ctx, event)
	case enums.PaymentEventDisputeClosed:
		return false, s.handleDisputeClosed(ctx, event)
	case enums.PaymentEventRefundCreated:
		return false, s.handleRefundCreated(ctx, event)
	default:
		return false, nil
	}
}

func (s *service) handlePaymentCompleted(ctx context.Context, event Event) (bool, error) {
	var data PaymentCompletedData
	if err := s.decode(event, &data); err != nil {
		return false, err
	}

	order, err := s.orders.FindOrderByChargeID(ctx, data.ChargeID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return false, errors.New(errors.CodeNotFound, "no order for completed charge")
		}
		return false, errors.Wrap(errors.CodeInternal, err, "look up order for charge")
	}

	result, err := s.settlement.RecordSale(ctx, order)
	settled := result != nil && (len(result.LedgerEntryIDs) > 0 || len(result.PendingPayoutIDs) > 0)
	if err != nil {
		// Partial settlement still queued some payouts; attempt those and
		// surface the combined failure.
		if result != nil && len(result.PendingPayoutIDs) > 0 {
			err = multierr.Append(err, s.queue.ProcessOrderPayouts(ctx, order.ID))
		}
		return settled, err
	}
	return true, s.queue.ProcessOrderPayouts(ctx, order.ID)
}

func (s *service) handleDisputeCreated(ctx context.Context, event Event) error {
	var data DisputeCreatedData
	if err := s.decode(event, &data); err != nil {
		return err
	}
	return s.reversals.DisputeOpened(ctx, reversal.DisputeOpenedInput{
		DisputeID: data.DisputeID,
		ChargeID:  data.ChargeID,
		Amount:    data.Amount,
		Reason:    data.Reason,
	})
}

func (s *service) handleDisputeClosed(ctx context.Context, event Event) error {
	var data DisputeClosedData
	if err := s.decode(event, &data); err != nil {
		return err
	}
	return s.reversals.DisputeClosed(ctx, reversal.DisputeClosedInput{
		DisputeID: data.DisputeID,
		Outcome:   data.Outcome,
	})
}

func (s *service) handleRefundCreated(ctx context.Context, event Event) error {
	var data RefundCreatedData
	if err := s.decode(event, &data); err != nil {
		return err
	}
	return s.reversals.RefundReceived(ctx, reversal.RefundInput{
		RefundID:         data.RefundID,
		ChargeID:         data.ChargeID,
		CumulativeAmount: data.Amount,
		Reason:           data.Reason,
	})
}

func (s *service) decode(event Event, out any) error {
	if err := json.Unmarshal(event.Data, out); err != nil {
		return errors.Wrap(errors.CodeValidation, err, "decode event payload")
	}
	if err := s.validate.Struct(out); err != nil {
		return errors.Wrap(errors.CodeValidation, err, "invalid event payload")
	}
	return nil
}
