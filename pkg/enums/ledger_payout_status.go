package enums

import "fmt"

// LedgerPayoutStatus records whether a ledger entry's payout has been sent.
type LedgerPayoutStatus string

const (
	LedgerPayoutStatusPending LedgerPayoutStatus = "pending"
	LedgerPayoutStatusPaid    LedgerPayoutStatus = "paid"
)

var validLedgerPayoutStatuses = []LedgerPayoutStatus{
	LedgerPayoutStatusPending,
	LedgerPayoutStatusPaid,
}

// String implements fmt.Stringer.
func (s LedgerPayoutStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known LedgerPayoutStatus.
func (s LedgerPayoutStatus) IsValid() bool {
	for _, candidate := range validLedgerPayoutStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLedgerPayoutStatus converts raw input into a LedgerPayoutStatus.
func ParseLedgerPayoutStatus(value string) (LedgerPayoutStatus, error) {
	for _, candidate := range validLedgerPayoutStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger payout status %q", value)
}
