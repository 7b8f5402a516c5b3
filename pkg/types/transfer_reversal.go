package types

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferReversal records one pulled-back transfer inside a dispute or
// refund document.
type TransferReversal struct {
	TransferID string          `json:"transfer_id"`
	SellerID   uuid.UUID       `json:"seller_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// TransferReversals is stored as a jsonb column.
type TransferReversals []TransferReversal

// Total sums the reversed amounts.
func (t TransferReversals) Total() decimal.Decimal {
	total := decimal.Zero
	for _, r := range t {
		total = total.Add(r.Amount)
	}
	return total
}
