package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DJCodeOne/freshwax-sub005/pkg/enums"
)

// Seller is any party the platform owes money to: an artist, a merch
// supplier, or a crate seller. SubAccountActive flips when the seller
// finishes onboarding at the payment processor.
type Seller struct {
	ID               uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Kind             enums.SellerKind `gorm:"column:kind;not null"`
	Name             string           `gorm:"column:name;not null"`
	Email            string           `gorm:"column:email;not null"`
	SubAccountID     *string          `gorm:"column:sub_account_id;uniqueIndex"`
	SubAccountActive bool             `gorm:"column:sub_account_active;not null;default:false"`
	PendingBalance   decimal.Decimal  `gorm:"column:pending_balance;type:numeric(12,2);not null;default:0"`
	TotalEarnings    decimal.Decimal  `gorm:"column:total_earnings;type:numeric(12,2);not null;default:0"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// CanReceiveTransfers reports whether the seller has an active processor
// sub-account to receive funds.
func (s Seller) CanReceiveTransfers() bool {
	return s.SubAccountActive && s.SubAccountID != nil && *s.SubAccountID != ""
}
