package enums

import "fmt"

// DisputeStatus tracks the lifecycle of a payment dispute.
type DisputeStatus string

const (
	DisputeStatusOpen     DisputeStatus = "open"
	DisputeStatusResolved DisputeStatus = "resolved"
)

var validDisputeStatuses = []DisputeStatus{
	DisputeStatusOpen,
	DisputeStatusResolved,
}

// String implements fmt.Stringer.
func (s DisputeStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DisputeStatus.
func (s DisputeStatus) IsValid() bool {
	for _, candidate := range validDisputeStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// DisputeOutcome records how the processor resolved a dispute.
type DisputeOutcome string

const (
	DisputeOutcomeWon  DisputeOutcome = "won"
	DisputeOutcomeLost DisputeOutcome = "lost"
)

var validDisputeOutcomes = []DisputeOutcome{
	DisputeOutcomeWon,
	DisputeOutcomeLost,
}

// String implements fmt.Stringer.
func (o DisputeOutcome) String() string {
	return string(o)
}

// IsValid reports whether the value is a known DisputeOutcome.
func (o DisputeOutcome) IsValid() bool {
	for _, candidate := range validDisputeOutcomes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseDisputeOutcome converts raw input into a DisputeOutcome.
func ParseDisputeOutcome(value string) (DisputeOutcome, error) {
	for _, candidate := range validDisputeOutcomes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dispute outcome %q", value)
}
