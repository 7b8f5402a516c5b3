package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/DJCodeOne/freshwax-sub005/internal/fees"
	"github.com/DJCodeOne/freshwax-sub005/internal/ledger"
	"github.com/DJCodeOne/freshwax-sub005/internal/payouts"
	"github.com/DJCodeOne/freshwax-sub005/internal/sellers"
	"github.com/DJCodeOne/freshwax-sub005/pkg/config"
	"github.com/DJCodeOne/freshwax-sub005/pkg/db"
	"github.com/DJCodeOne/freshwax-sub005/pkg/db/models"
	"github.com/DJCodeOne/freshwax-sub005/pkg/enums"
	"github.com/DJCodeOne/freshwax-sub005/pkg/errors"
	"github.com/DJCodeOne/freshwax-sub005/pkg/logger"
)

// Result summarises what a settlement run wrote.
type Result struct {
	LedgerEntryIDs   []uuid.UUID
	PendingPayoutIDs []uuid.UUID
	UnresolvedItems  int
}

// Service turns a paid order into per-seller ledger entries and queued
// payouts. Each seller is settled in its own transaction so one seller's
// failure never blocks the others. Writes are at-least-once; callers
// deduplicate upstream by charge.
type Service interface {
	RecordSale(ctx context.Context, order *models.Order) (*Result, error)
}

type service struct {
	db       *db.Client
	resolver sellers.Resolver
	ledger   ledger.Service
	payouts  payouts.Repository
	sellers  sellers.Repository
	rates    fees.Rates
	currency string
	logger   *logger.Logger
}

// NewService wires the settlement recorder and validates its dependencies.
func NewService(
	dbClient *db.Client,
	resolver sellers.Resolver,
	ledgerSvc ledger.Service,
	payoutRepo payouts.Repository,
	sellerRepo sellers.Repository,
	feesCfg config.FeesConfig,
	payoutsCfg config.PayoutsConfig,
	logg *logger.Logger,
) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("settlement service requires a db client")
	}
	if resolver == nil {
		return nil, fmt.Errorf("settlement service requires a seller resolver")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("settlement service requires the ledger service")
	}
	if payoutRepo == nil {
		return nil, fmt.Errorf("settlement service requires a payout repository")
	}
	if sellerRepo == nil {
		return nil, fmt.Errorf("settlement service requires a seller repository")
	}
	if logg == nil {
		return nil, fmt.Errorf("settlement service requires a logger")
	}
	return &service{
		db:       dbClient,
		resolver: resolver,
		ledger:   ledgerSvc,
		payouts:  payoutRepo,
		sellers:  sellerRepo,
		rates:    fees.RatesFromConfig(feesCfg),
		currency: payoutsCfg.Currency,
		logger:   logg,
	}, nil
}

// sellerGroup accumulates one seller's slice of the order.
type sellerGroup struct {
	seller *models.Seller
	totals fees.SellerItems
	items  []models.OrderLineItem
}

func (s *service) RecordSale(ctx context.Context, order *models.Order) (*Result, error) {
	if order == nil {
		return nil, errors.New(errors.CodeValidation, "order is required")
	}
	if order.ChargeID == "" {
		return nil, errors.New(errors.CodeValidation, "order charge id is required")
	}
	if len(order.Items) == 0 {
		return nil, errors.New(errors.CodeValidation, "order has no line items")
	}

	ctx = s.logger.WithOrderID(ctx, order.ID.String())
	ctx = s.logger.WithChargeID(ctx, order.ChargeID)

	groups, unresolved := s.groupBySeller(ctx, order)

	result := &Result{UnresolvedItems: len(unresolved)}

	if len(groups) == 0 {
		s.logger.Warn(ctx, "no sellers resolved; entire order kept as platform revenue")
		entryID, err := s.recordPlatformEntry(ctx, order, unresolved)
		if err != nil {
			return nil, err
		}
		if entryID != uuid.Nil {
			result.LedgerEntryIDs = append(result.LedgerEntryIDs, entryID)
		}
		return result, nil
	}

	sellerItems := make([]fees.SellerItems, 0, len(groups))
	for _, group := range groups {
		sellerItems = append(sellerItems, group.totals)
	}
	processingFee := s.rates.OrderProcessingFee(order.Total)
	allocations := fees.Allocate(sellerItems, processingFee, s.rates)

	var errs error
	for _, alloc := range allocations {
		group := groups[alloc.SellerID]
		entryID, payoutID, err := s.settleSeller(ctx, order, group, alloc)
		if err != nil {
			scoped := s.logger.WithSellerID(ctx, alloc.SellerID.String())
			s.logger.Error(scoped, "seller settlement failed", err)
			errs = multierr.Append(errs, err)
			continue
		}
		result.LedgerEntryIDs = append(result.LedgerEntryIDs, entryID)
		if payoutID != uuid.Nil {
			result.PendingPayoutIDs = append(result.PendingPayoutIDs, payoutID)
		}
	}

	if len(unresolved) > 0 {
		entryID, err := s.recordPlatformEntry(ctx, order, unresolved)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else if entryID != uuid.Nil {
			result.LedgerEntryIDs = append(result.LedgerEntryIDs, entryID)
		}
	}

	return result, errs
}

func (s *service) groupBySeller(ctx context.Context, order *models.Order) (map[uuid.UUID]*sellerGroup, []models.OrderLineItem) {
	groups := make(map[uuid.UUID]*sellerGroup)
	var unresolved []models.OrderLineItem

	for _, item := range order.Items {
		seller := s.resolver.Resolve(ctx, item)
		if seller == nil {
			unresolved = append(unresolved, item)
			continue
		}

		group, ok := groups[seller.ID]
		if !ok {
			group = &sellerGroup{
				seller: seller,
				totals: fees.SellerItems{SellerID: seller.ID},
			}
			groups[seller.ID] = group
		}

		subtotal := item.Subtotal()
		if item.ItemType.IsMusic() {
			group.totals.MusicSubtotal = group.totals.MusicSubtotal.Add(subtotal)
		} else {
			group.totals.MerchSubtotal = group.totals.MerchSubtotal.Add(subtotal)
		}
		group.items = append(group.items, item)
	}

	// Shipping is paid through in full to the seller who ships; when nobody
	// is designated the platform keeps it.
	if order.ShippingAmount.IsPositive() && order.ShippingSellerID != nil {
		if group, ok := groups[*order.ShippingSellerID]; ok {
			group.totals.Shipping = order.ShippingAmount
		} else {
			s.logger.Warn(ctx, "shipping seller not among resolved sellers; platform keeps shipping")
		}
	}

	return groups, unresolved
}

// settleSeller writes one seller's ledger entry, payout queue row, and
// balance increment in a single transaction.
func (s *service) settleSeller(ctx context.Context, order *models.Order, group *sellerGroup, alloc fees.Allocation) (uuid.UUID, uuid.UUID, error) {
	entry := s.buildEntry(order, group.items)
	entry.SellerID = &group.seller.ID
	kind := group.seller.Kind
	entry.SellerKind = &kind
	entry.SellerName = group.seller.Name
	entry.SellerEmail = group.seller.Email
	entry.Subtotal = alloc.Subtotal
	entry.Shipping = alloc.Shipping
	entry.GrossTotal = alloc.Gross
	entry.ProcessorFee = alloc.ProcessingFeeShare
	entry.PlatformFee = alloc.PlatformFee
	entry.TotalFees = alloc.TotalFees
	entry.NetRevenue = alloc.Net
	entry.PayoutAmount = alloc.Net

	var payoutID uuid.UUID
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.ledger.WithTx(tx).Record(ctx, entry); err != nil {
			return fmt.Errorf("record ledger entry: %w", err)
		}

		if !alloc.Net.IsPositive() {
			// Fees exceeded the seller's takings; nothing to pay out.
			return nil
		}

		pending := &models.PendingPayout{
			SellerID:      group.seller.ID,
			SellerKind:    group.seller.Kind,
			SellerName:    group.seller.Name,
			SellerEmail:   group.seller.Email,
			OrderID:       order.ID,
			OrderNumber:   order.OrderNumber,
			TransferGroup: order.TransferGroup,
			Amount:        alloc.Net,
			Currency:      s.orderCurrency(order),
			Status:        enums.PendingPayoutStatusPending,
		}
		if alloc.Shipping.IsPositive() {
			shipping := alloc.Shipping
			pending.ShippingAmount = &shipping
		}
		if err := s.payouts.WithTx(tx).CreatePending(ctx, pending); err != nil {
			return fmt.Errorf("queue pending payout: %w", err)
		}
		payoutID = pending.ID

		if err := s.sellers.WithTx(tx).AddPendingBalance(ctx, group.seller.ID, alloc.Net); err != nil {
			return fmt.Errorf("credit pending balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.Wrap(errors.CodeInternal, err, "settle seller")
	}
	return entry.ID, payoutID, nil
}

// recordPlatformEntry books unattributable items as platform revenue so the
// order's money is still accounted for.
func (s *service) recordPlatformEntry(ctx context.Context, order *models.Order, items []models.OrderLineItem) (uuid.UUID, error) {
	if len(items) == 0 {
		return uuid.Nil, nil
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Subtotal())
	}
	subtotal = subtotal.Round(2)

	entry := s.buildEntry(order, items)
	entry.Subtotal = subtotal
	entry.GrossTotal = subtotal
	entry.ProcessorFee = decimal.Zero
	entry.PlatformFee = decimal.Zero
	entry.TotalFees = decimal.Zero
	entry.NetRevenue = subtotal
	entry.PayoutAmount = decimal.Zero
	entry.PayoutStatus = enums.LedgerPayoutStatusPaid

	if err := s.ledger.Record(ctx, entry); err != nil {
		return uuid.Nil, errors.Wrap(errors.CodeInternal, err, "record platform ledger entry")
	}
	return entry.ID, nil
}

func (s *service) buildEntry(order *models.Order, items []models.OrderLineItem) *models.LedgerEntry {
	soldAt := order.CreatedAt
	if soldAt.IsZero() {
		soldAt = time.Now().UTC()
	}

	summaries := make([]models.LedgerItemSummary, 0, len(items))
	itemCount := 0
	hasPhysical := false
	hasDigital := false
	for _, item := range items {
		summaries = append(summaries, models.LedgerItemSummary{
			Name:     item.Name,
			ItemType: item.ItemType,
			Qty:      item.Qty,
			Total:    item.Subtotal(),
		})
		itemCount += item.Qty
		if item.ItemType.IsPhysical() {
			hasPhysical = true
		} else {
			hasDigital = true
		}
	}

	return &models.LedgerEntry{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		SoldAt:        soldAt,
		Year:          soldAt.Year(),
		Month:         int(soldAt.Month()),
		Day:           soldAt.Day(),
		CustomerID:    order.CustomerID,
		CustomerEmail: order.CustomerEmail,
		PaymentMethod: order.PaymentMethod,
		ChargeID:      order.ChargeID,
		Currency:      s.orderCurrency(order),
		ItemCount:     itemCount,
		HasPhysical:   hasPhysical,
		HasDigital:    hasDigital,
		Items:         summaries,
		PayoutStatus:  enums.LedgerPayoutStatusPending,
	}
}

func (s *service) orderCurrency(order *models.Order) string {
	if order.Currency != "" {
		return order.Currency
	}
	return s.currency
}
