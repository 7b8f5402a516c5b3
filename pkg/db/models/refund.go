package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DJCodeOne/freshwax-sub005/pkg/types"
)

// Refund is one append-only audit record per refund webhook. Amount is the
// incremental delta for that delivery, not the processor's cumulative total.
type Refund struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RefundID string    `gorm:"column:refund_id;not null;uniqueIndex"`
	ChargeID string    `gorm:"column:charge_id;not null;index"`
	OrderID  uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`

	Amount           decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	CumulativeAmount decimal.Decimal `gorm:"column:cumulative_amount;type:numeric(12,2);not null"`
	Full             bool            `gorm:"column:full;not null;default:false"`
	Reason           string          `gorm:"column:reason"`

	TransfersReversed types.TransferReversals `gorm:"column:transfers_reversed;type:jsonb;serializer:json"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
