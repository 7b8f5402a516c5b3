package enums

import "fmt"

// PayoutStatus tracks a completed transfer and any later reversals.
type PayoutStatus string

const (
	PayoutStatusCompleted         PayoutStatus = "completed"
	PayoutStatusReversed          PayoutStatus = "reversed"
	PayoutStatusPartiallyReversed PayoutStatus = "partially_reversed"
)

var validPayoutStatuses = []PayoutStatus{
	PayoutStatusCompleted,
	PayoutStatusReversed,
	PayoutStatusPartiallyReversed,
}

// String implements fmt.Stringer.
func (s PayoutStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PayoutStatus.
func (s PayoutStatus) IsValid() bool {
	for _, candidate := range validPayoutStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePayoutStatus converts raw input into a PayoutStatus.
func ParsePayoutStatus(value string) (PayoutStatus, error) {
	for _, candidate := range validPayoutStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout status %q", value)
}
