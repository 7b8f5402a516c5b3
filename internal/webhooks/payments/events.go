package payments

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Event is the processor's webhook envelope. Data is decoded per event type.
type Event struct {
	ID        string          `json:"id" validate:"required"`
	Type      string          `json:"type" validate:"required"`
	CreatedAt int64           `json:"created_at"`
	Data      json.RawMessage `json:"data" validate:"required"`
}

// PaymentCompletedData signals a charge has settled and the order can be
// split across its sellers.
type PaymentCompletedData struct {
	ChargeID string `json:"charge_id" validate:"required"`
}

// DisputeCreatedData signals a customer opened a chargeback.
type DisputeCreatedData struct {
	DisputeID string          `json:"dispute_id" validate:"required"`
	ChargeID  string          `json:"charge_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
}

// DisputeClosedData signals the processor resolved a chargeback.
type DisputeClosedData struct {
	DisputeID string `json:"dispute_id" validate:"required"`
	Outcome   string `json:"outcome" validate:"required,oneof=won lost"`
}

// RefundCreatedData signals a refund. Amount is the charge's cumulative
// refunded total, not the increment for this event.
type RefundCreatedData struct {
	RefundID string          `json:"refund_id" validate:"required"`
	ChargeID string          `json:"charge_id" validate:"required"`
	Amount   decimal.Decimal `json:"amount"`
	Reason   string          `json:"reason"`
}
