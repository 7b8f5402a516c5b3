package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DJCodeOne/freshwax-sub005/pkg/enums"
)

// PendingPayout is a queued, not-yet-executed transfer obligation to a seller.
type PendingPayout struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID    uuid.UUID        `gorm:"column:seller_id;type:uuid;not null;index"`
	SellerKind  enums.SellerKind `gorm:"column:seller_kind;not null"`
	SellerName  string           `gorm:"column:seller_name;not null"`
	SellerEmail string           `gorm:"column:seller_email;not null"`
	OrderID     uuid.UUID        `gorm:"column:order_id;type:uuid;not null;index"`
	OrderNumber string           `gorm:"column:order_number;not null"`
	// TransferGroup tags the eventual transfer so disputes can find it later.
	TransferGroup string `gorm:"column:transfer_group;not null"`

	Amount decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	// OriginalAmount is set when a refund shrinks the payout, preserving the
	// pre-refund value for audit.
	OriginalAmount *decimal.Decimal `gorm:"column:original_amount;type:numeric(12,2)"`
	// ShippingAmount is the seller-shipped portion included in Amount,
	// paid at 100% with no fee deduction (artists only).
	ShippingAmount *decimal.Decimal `gorm:"column:shipping_amount;type:numeric(12,2)"`
	Currency       string           `gorm:"column:currency;not null"`

	Status        enums.PendingPayoutStatus `gorm:"column:status;not null;default:'pending'"`
	FailureReason *string                   `gorm:"column:failure_reason"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
