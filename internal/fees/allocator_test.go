package fees

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func testRates() Rates {
	return Rates{
		ProcessorPercent:     decimal.NewFromFloat(1.4),
		ProcessorFixed:       decimal.NewFromFloat(0.20),
		PlatformMusicPercent: decimal.NewFromInt(1),
		PlatformMerchPercent: decimal.NewFromInt(5),
	}
}

func TestOrderProcessingFee(t *testing.T) {
	fee := testRates().OrderProcessingFee(decimal.NewFromInt(35))
	if !fee.Equal(decimal.NewFromFloat(0.69)) {
		t.Fatalf("expected 0.69, got %s", fee)
	}
}

func TestAllocate_TwoSellerSplit(t *testing.T) {
	artistID := uuid.New()
	supplierID := uuid.New()

	groups := []SellerItems{
		{
			SellerID:      artistID,
			MusicSubtotal: decimal.NewFromInt(10),
			Shipping:      decimal.NewFromInt(5),
		},
		{
			SellerID:      supplierID,
			MerchSubtotal: decimal.NewFromInt(20),
		},
	}

	allocations := Allocate(groups, decimal.NewFromFloat(1.20), testRates())
	if len(allocations) != 2 {
		t.Fatalf("expected 2 allocations, got %d", len(allocations))
	}

	artist := allocations[0]
	if artist.SellerID != artistID {
		t.Fatalf("unexpected seller order")
	}
	if !artist.ProcessingFeeShare.Equal(decimal.NewFromFloat(0.60)) {
		t.Fatalf("artist processing share: %s", artist.ProcessingFeeShare)
	}
	if !artist.PlatformFee.Equal(decimal.NewFromFloat(0.10)) {
		t.Fatalf("artist platform fee: %s", artist.PlatformFee)
	}
	// 10 - 0.70 fees + 5 shipping untouched by fees
	if !artist.Net.Equal(decimal.NewFromFloat(14.30)) {
		t.Fatalf("artist net: %s", artist.Net)
	}
	if !artist.Gross.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("artist gross: %s", artist.Gross)
	}

	supplier := allocations[1]
	if !supplier.ProcessingFeeShare.Equal(decimal.NewFromFloat(0.60)) {
		t.Fatalf("supplier processing share: %s", supplier.ProcessingFeeShare)
	}
	if !supplier.PlatformFee.Equal(decimal.NewFromFloat(1.00)) {
		t.Fatalf("supplier platform fee: %s", supplier.PlatformFee)
	}
	if !supplier.Net.Equal(decimal.NewFromFloat(18.40)) {
		t.Fatalf("supplier net: %s", supplier.Net)
	}
}

func TestAllocate_EqualSplitIgnoresValueShare(t *testing.T) {
	big := SellerItems{SellerID: uuid.New(), MusicSubtotal: decimal.NewFromInt(99)}
	small := SellerItems{SellerID: uuid.New(), MusicSubtotal: decimal.NewFromInt(1)}

	allocations := Allocate([]SellerItems{big, small}, decimal.NewFromInt(2), testRates())
	if !allocations[0].ProcessingFeeShare.Equal(allocations[1].ProcessingFeeShare) {
		t.Fatalf("processing fee shares differ: %s vs %s",
			allocations[0].ProcessingFeeShare, allocations[1].ProcessingFeeShare)
	}
	if !allocations[0].ProcessingFeeShare.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected share of 1.00, got %s", allocations[0].ProcessingFeeShare)
	}
}

func TestAllocate_RoundingResidualAbsorbedByPlatform(t *testing.T) {
	groups := []SellerItems{
		{SellerID: uuid.New(), MusicSubtotal: decimal.NewFromInt(10)},
		{SellerID: uuid.New(), MusicSubtotal: decimal.NewFromInt(10)},
		{SellerID: uuid.New(), MusicSubtotal: decimal.NewFromInt(10)},
	}

	allocations := Allocate(groups, decimal.NewFromInt(1), testRates())
	total := decimal.Zero
	for _, alloc := range allocations {
		if !alloc.ProcessingFeeShare.Equal(decimal.NewFromFloat(0.33)) {
			t.Fatalf("expected 0.33 per seller, got %s", alloc.ProcessingFeeShare)
		}
		total = total.Add(alloc.ProcessingFeeShare)
	}
	// 0.99 collected of the 1.00 charged; the platform eats the penny.
	if !total.Equal(decimal.NewFromFloat(0.99)) {
		t.Fatalf("expected collected total of 0.99, got %s", total)
	}
}

func TestAllocate_NegativeNetPossible(t *testing.T) {
	groups := []SellerItems{
		{SellerID: uuid.New(), MusicSubtotal: decimal.NewFromFloat(0.50)},
		{SellerID: uuid.New(), MusicSubtotal: decimal.NewFromInt(100)},
	}

	allocations := Allocate(groups, decimal.NewFromInt(2), testRates())
	if !allocations[0].Net.IsNegative() {
		t.Fatalf("expected negative net for tiny seller, got %s", allocations[0].Net)
	}
}

func TestAllocate_EmptyGroups(t *testing.T) {
	if allocations := Allocate(nil, decimal.NewFromInt(1), testRates()); allocations != nil {
		t.Fatalf("expected nil for empty groups, got %v", allocations)
	}
}
