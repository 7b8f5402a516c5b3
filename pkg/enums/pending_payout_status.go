package enums

import "fmt"

// PendingPayoutStatus tracks the lifecycle of a queued seller payout.
type PendingPayoutStatus string

const (
	PendingPayoutStatusPending         PendingPayoutStatus = "pending"
	PendingPayoutStatusAwaitingAccount PendingPayoutStatus = "awaiting_account"
	PendingPayoutStatusProcessing      PendingPayoutStatus = "processing"
	PendingPayoutStatusCompleted       PendingPayoutStatus = "completed"
	PendingPayoutStatusRetryPending    PendingPayoutStatus = "retry_pending"
	PendingPayoutStatusCancelled       PendingPayoutStatus = "cancelled"
)

var validPendingPayoutStatuses = []PendingPayoutStatus{
	PendingPayoutStatusPending,
	PendingPayoutStatusAwaitingAccount,
	PendingPayoutStatusProcessing,
	PendingPayoutStatusCompleted,
	PendingPayoutStatusRetryPending,
	PendingPayoutStatusCancelled,
}

// String implements fmt.Stringer.
func (s PendingPayoutStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PendingPayoutStatus.
func (s PendingPayoutStatus) IsValid() bool {
	for _, candidate := range validPendingPayoutStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTransferable reports whether a payout in this state may attempt a transfer.
func (s PendingPayoutStatus) IsTransferable() bool {
	switch s {
	case PendingPayoutStatusPending, PendingPayoutStatusAwaitingAccount, PendingPayoutStatusRetryPending:
		return true
	default:
		return false
	}
}

// ParsePendingPayoutStatus converts raw input into a PendingPayoutStatus.
func ParsePendingPayoutStatus(value string) (PendingPayoutStatus, error) {
	for _, candidate := range validPendingPayoutStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pending payout status %q", value)
}
