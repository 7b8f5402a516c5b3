package fees

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DJCodeOne/freshwax-sub005/pkg/config"
)

var hundred = decimal.NewFromInt(100)

// Rates is the platform's fee policy. Merchandise carries a higher platform
// rate than music and crate vinyl.
type Rates struct {
	ProcessorPercent     decimal.Decimal
	ProcessorFixed       decimal.Decimal
	PlatformMusicPercent decimal.Decimal
	PlatformMerchPercent decimal.Decimal
}

// RatesFromConfig converts the env-sourced fee policy into decimals.
func RatesFromConfig(cfg config.FeesConfig) Rates {
	return Rates{
		ProcessorPercent:     decimal.NewFromFloat(cfg.ProcessorPercent),
		ProcessorFixed:       decimal.NewFromFloat(cfg.ProcessorFixed),
		PlatformMusicPercent: decimal.NewFromFloat(cfg.PlatformMusicRate),
		PlatformMerchPercent: decimal.NewFromFloat(cfg.PlatformMerchRate),
	}
}

// OrderProcessingFee computes the once-per-order processor charge:
// a percentage of the amount paid plus a fixed fee.
func (r Rates) OrderProcessingFee(orderTotal decimal.Decimal) decimal.Decimal {
	return orderTotal.Mul(r.ProcessorPercent).Div(hundred).Add(r.ProcessorFixed).Round(2)
}

// SellerItems is one seller's slice of an order, split by fee class.
type SellerItems struct {
	SellerID      uuid.UUID
	MusicSubtotal decimal.Decimal
	MerchSubtotal decimal.Decimal
	// Shipping attributed to this seller, paid at 100% with no fee taken.
	Shipping decimal.Decimal
}

// Subtotal is the seller's pre-fee item total.
func (s SellerItems) Subtotal() decimal.Decimal {
	return s.MusicSubtotal.Add(s.MerchSubtotal)
}

// Allocation is the fee breakdown for one seller of an order.
type Allocation struct {
	SellerID           uuid.UUID
	Subtotal           decimal.Decimal
	Shipping           decimal.Decimal
	Gross              decimal.Decimal
	PlatformFee        decimal.Decimal
	ProcessingFeeShare decimal.Decimal
	TotalFees          decimal.Decimal
	Net                decimal.Decimal
}

// Allocate distributes the order's fees across its sellers.
//
// The processing fee is split equally across sellers regardless of each
// seller's share of the order value. That is deliberate business policy, not
// a simplification to revisit. The platform fee is a per-class percentage of
// the seller's own items. Every amount is rounded to 2 decimal places per
// seller; the platform absorbs any residual rounding difference.
func Allocate(groups []SellerItems, totalProcessingFee decimal.Decimal, rates Rates) []Allocation {
	if len(groups) == 0 {
		return nil
	}

	sellerCount := decimal.NewFromInt(int64(len(groups)))
	feeShare := totalProcessingFee.Div(sellerCount).Round(2)

	allocations := make([]Allocation, 0, len(groups))
	for _, group := range groups {
		platformFee := group.MusicSubtotal.Mul(rates.PlatformMusicPercent).Div(hundred).
			Add(group.MerchSubtotal.Mul(rates.PlatformMerchPercent).Div(hundred)).
			Round(2)

		subtotal := group.Subtotal().Round(2)
		shipping := group.Shipping.Round(2)
		totalFees := platformFee.Add(feeShare)
		net := subtotal.Sub(totalFees).Add(shipping).Round(2)

		allocations = append(allocations, Allocation{
			SellerID:           group.SellerID,
			Subtotal:           subtotal,
			Shipping:           shipping,
			Gross:              subtotal.Add(shipping),
			PlatformFee:        platformFee,
			ProcessingFeeShare: feeShare,
			TotalFees:          totalFees,
			Net:                net,
		})
	}
	return allocations
}
