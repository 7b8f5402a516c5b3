package processor

import "github.com/shopspring/decimal"

// Transfer is a movement of funds from the platform balance to a seller's
// sub-account, as reported by the processor.
type Transfer struct {
	ID             string          `json:"id"`
	Destination    string          `json:"destination"`
	Amount         decimal.Decimal `json:"amount"`
	AmountReversed decimal.Decimal `json:"amount_reversed"`
	Currency       string          `json:"currency"`
	TransferGroup  string          `json:"transfer_group"`
}

// Remaining is the portion of the transfer still reversible.
func (t Transfer) Remaining() decimal.Decimal {
	remaining := t.Amount.Sub(t.AmountReversed)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// Reversal is a pull-back of some or all of a previously issued transfer.
type Reversal struct {
	ID         string          `json:"id"`
	TransferID string          `json:"transfer_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// TransferParams are the inputs for issuing a new transfer.
type TransferParams struct {
	Destination   string          `json:"destination"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	TransferGroup string          `json:"transfer_group"`
}
