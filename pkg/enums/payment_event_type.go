package enums

import "fmt"

// PaymentEventType tags inbound processor webhook events.
type PaymentEventType string

const (
	PaymentEventPaymentCompleted PaymentEventType = "payment.completed"
	PaymentEventDisputeCreated   PaymentEventType = "dispute.created"
	PaymentEventDisputeClosed    PaymentEventType = "dispute.closed"
	PaymentEventRefundCreated    PaymentEventType = "refund.created"
)

var validPaymentEventTypes = []PaymentEventType{
	PaymentEventPaymentCompleted,
	PaymentEventDisputeCreated,
	PaymentEventDisputeClosed,
	PaymentEventRefundCreated,
}

// String implements fmt.Stringer.
func (t PaymentEventType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known PaymentEventType.
func (t PaymentEventType) IsValid() bool {
	for _, candidate := range validPaymentEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParsePaymentEventType converts raw input into a PaymentEventType.
func ParsePaymentEventType(value string) (PaymentEventType, error) {
	for _, candidate := range validPaymentEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment event type %q", value)
}
