package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DJCodeOne/freshwax-sub005/pkg/enums"
)

// LedgerItemSummary is a compact per-item snapshot embedded in a ledger entry.
type LedgerItemSummary struct {
	Name     string          `json:"name"`
	ItemType enums.ItemType  `json:"item_type"`
	Qty      int             `json:"qty"`
	Total    decimal.Decimal `json:"total"`
}

// LedgerEntry is one immutable per-seller accounting record for one order.
// Refunds and disputes never mutate it; they create their own records.
type LedgerEntry struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	OrderNumber string    `gorm:"column:order_number;not null"`

	// Denormalized date parts for year/month range queries on dashboards.
	SoldAt time.Time `gorm:"column:sold_at;not null"`
	Year   int       `gorm:"column:year;not null;index:idx_ledger_year_month"`
	Month  int       `gorm:"column:month;not null;index:idx_ledger_year_month"`
	Day    int       `gorm:"column:day;not null"`

	CustomerID    uuid.UUID `gorm:"column:customer_id;type:uuid;not null"`
	CustomerEmail string    `gorm:"column:customer_email;not null"`

	// Nil seller means no seller resolved; the platform keeps the revenue.
	SellerID    *uuid.UUID        `gorm:"column:seller_id;type:uuid;index"`
	SellerKind  *enums.SellerKind `gorm:"column:seller_kind"`
	SellerName  string            `gorm:"column:seller_name"`
	SellerEmail string            `gorm:"column:seller_email"`

	Subtotal     decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Shipping     decimal.Decimal `gorm:"column:shipping;type:numeric(12,2);not null;default:0"`
	GrossTotal   decimal.Decimal `gorm:"column:gross_total;type:numeric(12,2);not null"`
	ProcessorFee decimal.Decimal `gorm:"column:processor_fee;type:numeric(12,2);not null"`
	PlatformFee  decimal.Decimal `gorm:"column:platform_fee;type:numeric(12,2);not null"`
	TotalFees    decimal.Decimal `gorm:"column:total_fees;type:numeric(12,2);not null"`
	NetRevenue   decimal.Decimal `gorm:"column:net_revenue;type:numeric(12,2);not null"`
	PayoutAmount decimal.Decimal `gorm:"column:payout_amount;type:numeric(12,2);not null"`

	PayoutStatus  enums.LedgerPayoutStatus `gorm:"column:payout_status;not null;default:'pending'"`
	PaymentMethod string                   `gorm:"column:payment_method"`
	ChargeID      string                   `gorm:"column:charge_id;not null;index"`
	Currency      string                   `gorm:"column:currency;not null"`

	ItemCount   int                 `gorm:"column:item_count;not null"`
	HasPhysical bool                `gorm:"column:has_physical;not null;default:false"`
	HasDigital  bool                `gorm:"column:has_digital;not null;default:false"`
	Items       []LedgerItemSummary `gorm:"column:items;type:jsonb;serializer:json"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
