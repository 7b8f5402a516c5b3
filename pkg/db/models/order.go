package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DJCodeOne/freshwax-sub005/pkg/enums"
)

// Order is the customer-facing order created by the upstream checkout step.
// The settlement core reads it and only ever mutates the refund bookkeeping
// fields (refund_status, cumulative_refunded).
type Order struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber      string             `gorm:"column:order_number;not null;unique"`
	CustomerID       uuid.UUID          `gorm:"column:customer_id;type:uuid;not null"`
	CustomerEmail    string             `gorm:"column:customer_email;not null"`
	ShippingAmount   decimal.Decimal    `gorm:"column:shipping_amount;type:numeric(12,2);not null;default:0"`
	ShippingSellerID *uuid.UUID         `gorm:"column:shipping_seller_id;type:uuid"`
	Total            decimal.Decimal    `gorm:"column:total;type:numeric(12,2);not null"`
	Currency         string             `gorm:"column:currency;not null;default:'GBP'"`
	ChargeID         string             `gorm:"column:charge_id;not null;uniqueIndex"`
	TransferGroup    string             `gorm:"column:transfer_group;not null;index"`
	PaymentMethod    string             `gorm:"column:payment_method"`
	RefundStatus     enums.RefundStatus `gorm:"column:refund_status;not null;default:'none'"`
	// CumulativeRefunded mirrors the processor's refunded-to-date total so the
	// refund handler can compute incremental deltas without summing history.
	CumulativeRefunded decimal.Decimal `gorm:"column:cumulative_refunded;type:numeric(12,2);not null;default:0"`
	Items              []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderLineItem captures the snapshot of each item within an order.
// SourceID points at the release, merch product, or crate listing the item
// was bought from, interpreted by ItemType.
type OrderLineItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ItemType  enums.ItemType  `gorm:"column:item_type;not null"`
	SellerID  *uuid.UUID      `gorm:"column:seller_id;type:uuid"`
	SourceID  *uuid.UUID      `gorm:"column:source_id;type:uuid"`
	Name      string          `gorm:"column:name;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Qty       int             `gorm:"column:qty;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// Subtotal returns unit price times quantity.
func (i OrderLineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Qty)))
}
