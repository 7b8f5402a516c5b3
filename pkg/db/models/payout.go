package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DJCodeOne/freshwax-sub005/pkg/enums"
)

// Payout records one executed transfer to a seller's sub-account. Created
// only when the processor accepts the transfer; the reversal engine mutates
// Status and ReversedAmount afterwards.
type Payout struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID        uuid.UUID  `gorm:"column:seller_id;type:uuid;not null;index"`
	OrderID         uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	PendingPayoutID *uuid.UUID `gorm:"column:pending_payout_id;type:uuid"`

	TransferID    string `gorm:"column:transfer_id;not null;uniqueIndex"`
	TransferGroup string `gorm:"column:transfer_group;not null;index"`

	Amount         decimal.Decimal    `gorm:"column:amount;type:numeric(12,2);not null"`
	ReversedAmount decimal.Decimal    `gorm:"column:reversed_amount;type:numeric(12,2);not null;default:0"`
	Currency       string             `gorm:"column:currency;not null"`
	Status         enums.PayoutStatus `gorm:"column:status;not null;default:'completed'"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// RemainingReversible is the portion of the transfer not yet pulled back.
func (p Payout) RemainingReversible() decimal.Decimal {
	remaining := p.Amount.Sub(p.ReversedAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}
