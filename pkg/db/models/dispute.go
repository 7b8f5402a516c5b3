package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DJCodeOne/freshwax-sub005/pkg/enums"
	"github.com/DJCodeOne/freshwax-sub005/pkg/types"
)

// Dispute tracks a chargeback on one charge. Created on the first dispute
// event and updated (never duplicated) by subsequent events for the same
// charge.
type Dispute struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DisputeID string    `gorm:"column:dispute_id;not null;uniqueIndex"`
	ChargeID  string    `gorm:"column:charge_id;not null;index"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`

	Amount decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Reason string          `gorm:"column:reason"`

	Status  enums.DisputeStatus   `gorm:"column:status;not null;default:'open'"`
	Outcome *enums.DisputeOutcome `gorm:"column:outcome"`

	TransfersReversed types.TransferReversals `gorm:"column:transfers_reversed;type:jsonb;serializer:json"`
	AmountRecovered   decimal.Decimal         `gorm:"column:amount_recovered;type:numeric(12,2);not null;default:0"`
	// NetImpact is what the platform absorbed on a lost dispute:
	// dispute amount minus what was recovered from sellers.
	NetImpact *decimal.Decimal `gorm:"column:net_impact;type:numeric(12,2)"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
